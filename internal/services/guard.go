package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/recaptcha"
)

// RateLimitedError carries how long the client should wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// RetryAfterSeconds is the Retry-After header value, at least 1.
func (e *RateLimitedError) RetryAfterSeconds() int {
	if s := int(math.Ceil(e.RetryAfter.Seconds())); s > 0 {
		return s
	}
	return 1
}

// FormGuard gates public form submissions behind a per-IP rate limit and
// reCAPTCHA verification.
type FormGuard interface {
	Check(ctx context.Context, form, clientIP, token string) error
}

type formGuard struct {
	log      *logger.Logger
	limiter  redis.Limiter
	verifier recaptcha.Verifier
	settings SettingsService
	metrics  *observability.Metrics
}

func NewFormGuard(log *logger.Logger, limiter redis.Limiter, verifier recaptcha.Verifier, settings SettingsService, metrics *observability.Metrics) FormGuard {
	return &formGuard{
		log:      log.With("service", "FormGuard"),
		limiter:  limiter,
		verifier: verifier,
		settings: settings,
		metrics:  metrics,
	}
}

func (g *formGuard) Check(ctx context.Context, form, clientIP, token string) error {
	if g.limiter != nil && clientIP != "" {
		ok, retry, err := g.limiter.Allow(ctx, form+":"+clientIP)
		switch {
		case err != nil:
			// the limiter failing must not take the forms down
			g.log.Warn("Rate limiter unavailable", "form", form, "error", err)
		case !ok:
			g.log.Info("Form submission rate limited", "form", form, "client_ip", clientIP)
			g.metrics.IncFormRejected(form, "rate_limited")
			return apierr.New(http.StatusTooManyRequests, CodeRateLimited, &RateLimitedError{RetryAfter: retry})
		}
	}

	if g.verifier == nil {
		return nil
	}
	row, err := g.settings.Get(ctx)
	if err != nil {
		return err
	}
	if err := g.verifier.Verify(ctx, row.RecaptchaSecret, token, clientIP); err != nil {
		if errors.Is(err, recaptcha.ErrMissingToken) || errors.Is(err, recaptcha.ErrRejected) {
			g.metrics.IncFormRejected(form, "recaptcha_rejected")
			return apierr.BadRequest(CodeRecaptcha, "%v", err)
		}
		g.log.Warn("reCAPTCHA verification unavailable", "form", form, "error", err)
		g.metrics.IncFormRejected(form, "recaptcha_unavailable")
		return apierr.New(http.StatusServiceUnavailable, CodeRecaptcha, err)
	}
	return nil
}
