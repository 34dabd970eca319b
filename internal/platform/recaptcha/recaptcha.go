package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/marmora-backend/internal/platform/httpx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrMissingToken = errors.New("recaptcha: token required")
	ErrRejected     = errors.New("recaptcha: verification failed")
)

// Verifier checks a client token against the configured secret. An empty
// secret disables verification.
type Verifier interface {
	Verify(ctx context.Context, secret, token, remoteIP string) error
}

type Config struct {
	VerifyURL string
	MinScore  float64
	Timeout   time.Duration
}

type verifyResponse struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

type verifier struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) Verifier {
	if strings.TrimSpace(cfg.VerifyURL) == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = 0.5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &verifier{
		log:        log.With("client", "RecaptchaVerifier"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (v *verifier) Verify(ctx context.Context, secret, token, remoteIP string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha: request: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		if httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			v.log.Warn("reCAPTCHA verify unavailable", "status", resp.StatusCode)
		}
		return fmt.Errorf("recaptcha: http %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("recaptcha: decode: %w", err)
	}
	if !out.Success {
		v.log.Info("reCAPTCHA rejected", "error_codes", strings.Join(out.ErrorCodes, ","))
		return ErrRejected
	}
	// v2 responses carry no score
	if out.Score != nil && *out.Score < v.cfg.MinScore {
		v.log.Info("reCAPTCHA score below threshold", "score", *out.Score, "min", v.cfg.MinScore)
		return ErrRejected
	}
	return nil
}
