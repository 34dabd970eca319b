package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/domain/inquiry"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

func newQuoteService(t *testing.T, st *testStack, guard FormGuard, n Notifier) QuoteService {
	t.Helper()
	return NewQuoteService(st.db, st.log, repos.NewQuoteRequestRepo(st.db, st.log), repos.NewProductRepo(st.db, st.log), guard, n, st.settings)
}

func validQuoteInput(productID *uuid.UUID) QuoteInput {
	return QuoteInput{
		Items: []QuoteItemInput{
			{ProductID: productID, Quantity: 250, Unit: "M2", Finish: "honed"},
			{ProductName: "Black Galaxy", Quantity: 2, Unit: "container"},
		},
		ProjectType:        "Hotel lobby",
		DestinationCountry: "AE",
		FullName:           "Layla Haddad",
		Email:              "  Layla@Example.com ",
		Phone:              "+971 (4) 555-0101",
		Country:            "AE",
	}
}

func fieldCodes(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error, got %v", err)
	}
	out := map[string]string{}
	for _, f := range verr.Fields {
		out[f.Field] = f.Code
	}
	return out
}

func TestQuoteValidateStepOwnsItsFields(t *testing.T) {
	st := newTestStack(t)
	svc := newQuoteService(t, st, fakeGuard{}, nil)
	ctx := context.Background()

	// step 2 ignores an empty item list and contact fields
	err := svc.ValidateStep(ctx, 2, QuoteInput{ProjectType: "Villa"})
	codes := fieldCodes(t, err)
	if len(codes) != 1 || codes["destination_country"] != validation.CodeRequired {
		t.Fatalf("step 2 codes: %v", codes)
	}

	err = svc.ValidateStep(ctx, 1, QuoteInput{Items: []QuoteItemInput{{Quantity: 0, Unit: "kg"}}})
	codes = fieldCodes(t, err)
	want := map[string]string{
		"items.0.product_name": validation.CodeRequired,
		"items.0.quantity":     validation.CodePositive,
		"items.0.unit":         validation.CodeUnit,
	}
	for f, c := range want {
		if codes[f] != c {
			t.Fatalf("%s: got=%q want=%q (all=%v)", f, codes[f], c, codes)
		}
	}

	unknown := uuid.New()
	err = svc.ValidateStep(ctx, 1, QuoteInput{Items: []QuoteItemInput{{ProductID: &unknown, Quantity: 1, Unit: "slab"}}})
	if fieldCodes(t, err)["items.0.product_id"] != validation.CodeProductUnknown {
		t.Fatalf("unknown product not reported: %v", err)
	}

	err = svc.ValidateStep(ctx, 3, QuoteInput{FullName: "A", Email: "nope", Phone: "12", Country: "EG"})
	codes = fieldCodes(t, err)
	if codes["email"] == "" || codes["phone"] == "" || len(codes) != 2 {
		t.Fatalf("step 3 codes: %v", codes)
	}

	err = svc.ValidateStep(ctx, 4, QuoteInput{})
	if ae, ok := apierr.As(err); !ok || ae.Code != CodeInvalidStep {
		t.Fatalf("step 4: want %s, got %v", CodeInvalidStep, err)
	}
}

func TestQuoteSubmitStoresPendingRequest(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	prod := testutil.SeedProduct(t, ctx, st.db, "galala", nil, true, false)
	n := &fakeNotifier{}
	svc := newQuoteService(t, st, fakeGuard{}, n)

	q, err := svc.Submit(ctx, SubmitQuoteInput{QuoteInput: validQuoteInput(&prod.ID)}, SubmitMeta{Locale: i18n.Arabic, ClientIP: "203.0.113.9"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if q.Status != types.QuoteStatusPending || q.Locale != "ar" {
		t.Fatalf("status=%s locale=%s", q.Status, q.Locale)
	}
	if !regexp.MustCompile(`^Q-\d{6}-[2-9A-HJ-NP-Z]{6}$`).MatchString(q.Reference) {
		t.Fatalf("reference format: %q", q.Reference)
	}
	if q.Email != "layla@example.com" {
		t.Fatalf("email not normalized: %q", q.Email)
	}
	if q.Items[0].ProductName != "منتج galala" || q.Items[0].Unit != inquiry.QuoteUnitSquareMeter {
		t.Fatalf("first item: %+v", q.Items[0])
	}
	if len(n.quotes) != 1 || n.quotes[0].ID != q.ID {
		t.Fatalf("notifier not called")
	}

	stored, err := svc.Get(ctx, q.ID)
	if err != nil || stored.Reference != q.Reference || len(stored.Items) != 2 {
		t.Fatalf("Get: %+v err=%v", stored, err)
	}
}

func TestQuoteSubmitGuardAndValidation(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	n := &fakeNotifier{}

	blocked := apierr.New(http.StatusTooManyRequests, CodeRateLimited, &RateLimitedError{})
	svc := newQuoteService(t, st, fakeGuard{err: blocked}, n)
	if _, err := svc.Submit(ctx, SubmitQuoteInput{QuoteInput: validQuoteInput(nil)}, SubmitMeta{}); !errors.Is(err, blocked) {
		t.Fatalf("guard error not returned: %v", err)
	}

	svc = newQuoteService(t, st, fakeGuard{}, n)
	in := validQuoteInput(nil)
	in.Items[0].ProductName = "Travertine"
	in.Email = ""
	in.ProjectType = ""
	codes := fieldCodes(t, func() error { _, err := svc.Submit(ctx, SubmitQuoteInput{QuoteInput: in}, SubmitMeta{}); return err }())
	if codes["email"] == "" || codes["project_type"] == "" {
		t.Fatalf("want errors from steps 2 and 3, got %v", codes)
	}
	if len(n.quotes) != 0 {
		t.Fatalf("notifier called for rejected submissions")
	}
	page, _ := svc.List(ctx, QuoteListQuery{})
	if page.Total != 0 {
		t.Fatalf("rejected submissions stored: %d", page.Total)
	}
}

func TestQuoteStatusLifecycle(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	svc := newQuoteService(t, st, fakeGuard{}, nil)
	q := testutil.SeedQuote(t, ctx, st.db, "Q-260101-AAAAAA", types.QuoteStatusPending)

	_, err := svc.ChangeStatus(ctx, q.ID, QuoteStatusInput{Status: "accepted"})
	if ae, ok := apierr.As(err); !ok || ae.Status != 409 || ae.Code != CodeTransition {
		t.Fatalf("skip ahead: want 409 %s, got %v", CodeTransition, err)
	}

	steps := []types.QuoteStatus{types.QuoteStatusReviewed, types.QuoteStatusQuoted, types.QuoteStatusAccepted, types.QuoteStatusCompleted}
	for _, to := range steps {
		note := "moved to " + string(to)
		if _, err := svc.ChangeStatus(ctx, q.ID, QuoteStatusInput{Status: string(to), Note: &note}); err != nil {
			t.Fatalf("-> %s: %v", to, err)
		}
	}
	got, err := svc.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != types.QuoteStatusCompleted {
		t.Fatalf("status: %s", got.Status)
	}
	if len(got.History) != len(steps) {
		t.Fatalf("history rows: got=%d want=%d", len(got.History), len(steps))
	}
	if got.History[0].FromStatus != types.QuoteStatusPending || got.History[0].ToStatus != types.QuoteStatusReviewed {
		t.Fatalf("first history row: %+v", got.History[0])
	}

	_, err = svc.ChangeStatus(ctx, q.ID, QuoteStatusInput{Status: "CANCELLED"})
	if ae, ok := apierr.As(err); !ok || ae.Status != 409 {
		t.Fatalf("terminal status: want 409, got %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, uuid.New(), QuoteStatusInput{Status: "REVIEWED"}); err == nil {
		t.Fatalf("missing quote: want error")
	}
}

func TestQuoteListCountAndDelete(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	svc := newQuoteService(t, st, fakeGuard{}, nil)
	testutil.SeedQuote(t, ctx, st.db, "Q-1", types.QuoteStatusPending)
	testutil.SeedQuote(t, ctx, st.db, "Q-2", types.QuoteStatusPending)
	cancelled := testutil.SeedQuote(t, ctx, st.db, "Q-3", types.QuoteStatusCancelled)

	counts, err := svc.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[types.QuoteStatusPending] != 2 || counts[types.QuoteStatusCancelled] != 1 {
		t.Fatalf("counts: %v", counts)
	}

	page, err := svc.List(ctx, QuoteListQuery{Status: "pending"})
	if err != nil || page.Total != 2 {
		t.Fatalf("List pending: %+v err=%v", page, err)
	}
	if _, err := svc.List(ctx, QuoteListQuery{Status: "LOST"}); err == nil {
		t.Fatalf("unknown status filter: want error")
	}

	if err := svc.Delete(ctx, cancelled.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = svc.Delete(ctx, cancelled.ID)
	if ae, ok := apierr.As(err); !ok || ae.Status != 404 {
		t.Fatalf("second delete: want 404, got %v", err)
	}
}
