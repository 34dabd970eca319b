package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"strings"
	"time"

	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/recaptcha"
)

func TestFormGuard(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	if _, err := st.settings.Update(ctx, SettingsPatch{RecaptchaSecret: strPtr("server-secret")}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	cases := []struct {
		name       string
		limiter    *fakeLimiter
		verifyErr  error
		wantStatus int
		wantVerify int
		wantReason string
	}{
		{name: "allowed", limiter: &fakeLimiter{allow: true}, wantVerify: 1},
		{name: "rate limited", limiter: &fakeLimiter{allow: false, retry: 30 * time.Second}, wantStatus: http.StatusTooManyRequests, wantReason: "rate_limited"},
		{name: "limiter down fails open", limiter: &fakeLimiter{err: errors.New("redis: connection refused")}, wantVerify: 1},
		{name: "missing token", limiter: &fakeLimiter{allow: true}, verifyErr: recaptcha.ErrMissingToken, wantStatus: http.StatusBadRequest, wantVerify: 1, wantReason: "recaptcha_rejected"},
		{name: "rejected", limiter: &fakeLimiter{allow: true}, verifyErr: recaptcha.ErrRejected, wantStatus: http.StatusBadRequest, wantVerify: 1, wantReason: "recaptcha_rejected"},
		{name: "verifier unreachable", limiter: &fakeLimiter{allow: true}, verifyErr: fmt.Errorf("recaptcha: http 502"), wantStatus: http.StatusServiceUnavailable, wantVerify: 1, wantReason: "recaptcha_unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &fakeVerifier{err: tc.verifyErr}
			m := observability.NewMetrics()
			g := NewFormGuard(st.log, tc.limiter, v, st.settings, m)
			err := g.Check(ctx, "quote", "203.0.113.7", "tok")
			if tc.wantStatus == 0 {
				if err != nil {
					t.Fatalf("Check: %v", err)
				}
			} else {
				ae, ok := apierr.As(err)
				if !ok || ae.Status != tc.wantStatus {
					t.Fatalf("want status %d, got %v", tc.wantStatus, err)
				}
			}
			if v.calls != tc.wantVerify {
				t.Fatalf("verifier calls: got=%d want=%d", v.calls, tc.wantVerify)
			}
			if tc.wantVerify > 0 && (v.secret != "server-secret" || v.token != "tok") {
				t.Fatalf("verifier args: secret=%q token=%q", v.secret, v.token)
			}
			if len(tc.limiter.keys) != 1 || tc.limiter.keys[0] != "quote:203.0.113.7" {
				t.Fatalf("limiter key: %v", tc.limiter.keys)
			}
			out := metricsText(t, m)
			if tc.wantReason == "" {
				if strings.Contains(out, "marmora_form_rejections_total{") {
					t.Fatalf("unexpected rejection counted:\n%s", out)
				}
			} else if want := `marmora_form_rejections_total{form="quote",reason="` + tc.wantReason + `"} 1`; !strings.Contains(out, want) {
				t.Fatalf("missing %q in:\n%s", want, out)
			}
		})
	}
}

func TestFormGuardRateLimitCarriesRetryAfter(t *testing.T) {
	st := newTestStack(t)
	g := NewFormGuard(st.log, &fakeLimiter{retry: 42 * time.Second}, nil, st.settings, nil)
	err := g.Check(context.Background(), "contact", "198.51.100.1", "")
	var rl *RateLimitedError
	if !errors.As(err, &rl) || rl.RetryAfter != 42*time.Second {
		t.Fatalf("want RateLimitedError with 42s, got %v", err)
	}
}

func metricsText(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	return b.String()
}
