package inquiry

import "testing"

func TestQuoteStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to QuoteStatus
		want     bool
	}{
		{QuoteStatusPending, QuoteStatusReviewed, true},
		{QuoteStatusPending, QuoteStatusQuoted, false},
		{QuoteStatusReviewed, QuoteStatusQuoted, true},
		{QuoteStatusQuoted, QuoteStatusAccepted, true},
		{QuoteStatusAccepted, QuoteStatusCompleted, true},
		{QuoteStatusQuoted, QuoteStatusCancelled, true},
		{QuoteStatusPending, QuoteStatusCancelled, true},
		{QuoteStatusCompleted, QuoteStatusCancelled, false},
		{QuoteStatusCancelled, QuoteStatusPending, false},
		{QuoteStatusReviewed, QuoteStatusPending, false},
		{QuoteStatusPending, QuoteStatusPending, false},
		{QuoteStatusPending, QuoteStatus("LOST"), false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: want=%v got=%v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestQuoteUnitValid(t *testing.T) {
	if !QuoteUnitSlab.Valid() || QuoteUnit("kg").Valid() {
		t.Fatalf("unexpected unit validity")
	}
}
