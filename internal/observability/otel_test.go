package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc ,broken, x=1,=y ")
	if len(got) != 2 || got["api-key"] != "abc" || got["x"] != "1" {
		t.Fatalf("unexpected headers: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestSampleRatio(t *testing.T) {
	for in, want := range map[float64]float64{0: 0.1, -1: 0.1, 0.25: 0.25, 3: 1} {
		if got := sampleRatio(in); got != want {
			t.Fatalf("sampleRatio(%v)=%v want %v", in, got, want)
		}
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	defer span.End()
	if ctx == nil {
		t.Fatalf("expected context")
	}
}
