package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"smtp_password", "hunter2", "page", "home"})
	if len(out) != 4 {
		t.Fatalf("len: want=4 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want redacted got=%v", out[1])
	}
	if out[3] != "home" {
		t.Fatalf("page: want=home got=%v", out[3])
	}
}

func TestSanitizeHashesContactDetails(t *testing.T) {
	out := sanitizeKVs([]interface{}{"email", "buyer@example.com"})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("email: want hash got=%v", out[1])
	}
	again := sanitizeKVs([]interface{}{"email", "buyer@example.com"})
	if again[1] != got {
		t.Fatalf("hash not stable: %v vs %v", again[1], got)
	}
}

func TestSanitizeKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected: %v", out)
	}
}

func TestNewTestModeIsSilent(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("service", "x").Info("nothing to see", "k", "v")
}
