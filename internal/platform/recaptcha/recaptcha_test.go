package recaptcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

func newTestVerifier(t *testing.T, h http.HandlerFunc) Verifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(log, Config{VerifyURL: srv.URL, MinScore: 0.5})
}

func TestVerifySkippedWithoutSecret(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected")
	})
	if err := v.Verify(context.Background(), "", "", ""); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRequiresToken(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := v.Verify(context.Background(), "s3cret", " ", ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestVerifySendsFormAndAccepts(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("secret") != "s3cret" || r.PostForm.Get("response") != "tok" || r.PostForm.Get("remoteip") != "10.0.0.1" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"success":true,"score":0.9}`))
	})
	if err := v.Verify(context.Background(), "s3cret", "tok", "10.0.0.1"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	cases := map[string]string{
		"failure":   `{"success":false,"error-codes":["invalid-input-response"]}`,
		"low score": `{"success":true,"score":0.1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			if err := v.Verify(context.Background(), "s", "tok", ""); !errors.Is(err, ErrRejected) {
				t.Fatalf("expected ErrRejected, got %v", err)
			}
		})
	}
}

func TestVerifyHTTPError(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := v.Verify(context.Background(), "s", "tok", "")
	if err == nil || errors.Is(err, ErrRejected) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
