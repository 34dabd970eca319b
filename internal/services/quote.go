package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

// referenceAlphabet omits 0/O and 1/I so references survive being read aloud.
const referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type SubmitQuoteInput struct {
	QuoteInput
	RecaptchaToken string `json:"recaptcha_token"`
}

type SubmitMeta struct {
	Locale   i18n.Locale
	ClientIP string
}

type QuoteListQuery struct {
	Status string
	Query  string
	Page   Page
}

type QuoteStatusInput struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

type QuoteService interface {
	ValidateStep(ctx context.Context, step int, in QuoteInput) error
	Submit(ctx context.Context, in SubmitQuoteInput, meta SubmitMeta) (*types.QuoteRequest, error)

	List(ctx context.Context, q QuoteListQuery) (*PageResult[*types.QuoteRequest], error)
	Get(ctx context.Context, id uuid.UUID) (*types.QuoteRequest, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, in QuoteStatusInput) (*types.QuoteRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[types.QuoteStatus]int64, error)
}

type quoteService struct {
	db          *gorm.DB
	log         *logger.Logger
	quoteRepo   repos.QuoteRequestRepo
	productRepo repos.ProductRepo
	guard       FormGuard
	notifier    Notifier
	settings    SettingsService
	now         func() time.Time
}

func NewQuoteService(
	db *gorm.DB,
	log *logger.Logger,
	quoteRepo repos.QuoteRequestRepo,
	productRepo repos.ProductRepo,
	guard FormGuard,
	notifier Notifier,
	settings SettingsService,
) QuoteService {
	serviceLog := log.With("service", "QuoteService")
	return &quoteService{
		db:          db,
		log:         serviceLog,
		quoteRepo:   quoteRepo,
		productRepo: productRepo,
		guard:       guard,
		notifier:    notifier,
		settings:    settings,
		now:         time.Now,
	}
}

func (s *quoteService) ValidateStep(ctx context.Context, step int, in QuoteInput) error {
	if !ValidQuoteStep(step) {
		return apierr.BadRequest(CodeInvalidStep, "unknown step %d", step)
	}
	verr := ValidateQuoteStep(step, in)
	if step == 1 && verr.Empty() {
		if _, err := s.resolveProducts(dbctx.Context{Ctx: ctx}, in.Items, &verr); err != nil {
			return err
		}
	}
	return verr.Err()
}

// resolveProducts checks referenced products are published and returns them
// by id. Unknown ids are reported on verr.
func (s *quoteService) resolveProducts(dbc dbctx.Context, items []QuoteItemInput, verr *validation.Errors) (map[uuid.UUID]*types.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil && *it.ProductID != uuid.Nil {
			ids = append(ids, *it.ProductID)
		}
	}
	found := map[uuid.UUID]*types.Product{}
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := s.productRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range rows {
		if p.Published {
			found[p.ID] = p
		}
	}
	for i, it := range items {
		if it.ProductID == nil || *it.ProductID == uuid.Nil {
			continue
		}
		if _, ok := found[*it.ProductID]; !ok {
			verr.Add(fmt.Sprintf("items.%d.product_id", i), validation.CodeProductUnknown, nil)
		}
	}
	return found, nil
}

func (s *quoteService) Submit(ctx context.Context, in SubmitQuoteInput, meta SubmitMeta) (*types.QuoteRequest, error) {
	if err := s.guard.Check(ctx, "quote", meta.ClientIP, in.RecaptchaToken); err != nil {
		return nil, err
	}

	qi := in.QuoteInput
	qi.normalize()
	verr := ValidateQuote(qi)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	locale := meta.Locale.OrDefault(s.settings.DefaultLocale(ctx))
	dbc := dbctx.Context{Ctx: ctx}
	products, err := s.resolveProducts(dbc, qi.Items, &verr)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	items := make(datatypes.JSONSlice[types.QuoteItem], 0, len(qi.Items))
	for _, it := range qi.Items {
		name := it.ProductName
		if it.ProductID != nil {
			if p := products[*it.ProductID]; p != nil && name == "" {
				name = p.Name.Data().Get(locale.String(), i18n.DefaultLocale.String())
			}
		}
		items = append(items, types.QuoteItem{
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			Unit:        types.QuoteUnit(it.Unit),
			Finish:      it.Finish,
			Dimensions:  it.Dimensions,
		})
	}

	ref, err := s.newReference()
	if err != nil {
		return nil, err
	}
	q := &types.QuoteRequest{
		ID:                 uuid.New(),
		Reference:          ref,
		Status:             types.QuoteStatusPending,
		Locale:             locale.String(),
		Items:              items,
		ProjectType:        qi.ProjectType,
		DestinationCountry: qi.DestinationCountry,
		Timeline:           qi.Timeline,
		Notes:              qi.Notes,
		FullName:           qi.FullName,
		Email:              qi.Email,
		Phone:              qi.Phone,
		Company:            qi.Company,
		Country:            qi.Country,
		ClientIP:           meta.ClientIP,
	}
	if _, err := s.quoteRepo.Create(dbc, []*types.QuoteRequest{q}); err != nil {
		return nil, fmt.Errorf("create quote request: %w", err)
	}
	s.log.Info("Quote request received", "quote_id", q.ID, "reference", q.Reference, "locale", q.Locale)

	if s.notifier != nil {
		s.notifier.QuoteSubmitted(q)
	}
	return q, nil
}

// newReference returns e.g. "Q-260301-7KXQ2M".
func (s *quoteService) newReference() (string, error) {
	var b strings.Builder
	b.WriteString("Q-")
	b.WriteString(s.now().UTC().Format("060102"))
	b.WriteByte('-')
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *quoteService) List(ctx context.Context, q QuoteListQuery) (*PageResult[*types.QuoteRequest], error) {
	page := q.Page.Normalize()
	filter := repos.QuoteFilter{Query: strings.TrimSpace(q.Query), Limit: page.Limit, Offset: page.Offset}
	if st := strings.ToUpper(strings.TrimSpace(q.Status)); st != "" {
		if !types.QuoteStatus(st).Valid() {
			return nil, validation.Single("status", validation.CodeInvalid, nil)
		}
		filter.Status = types.QuoteStatus(st)
	}
	rows, total, err := s.quoteRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, fmt.Errorf("list quote requests: %w", err)
	}
	r := newPageResult(rows, total, page)
	return &r, nil
}

func (s *quoteService) Get(ctx context.Context, id uuid.UUID) (*types.QuoteRequest, error) {
	q, err := s.quoteRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load quote request: %w", err)
	}
	if q == nil {
		return nil, notFound("quote request")
	}
	return q, nil
}

// ChangeStatus applies one lifecycle transition and records it in the
// history. The update is conditional on the status read, so a concurrent
// change surfaces as a conflict instead of being overwritten.
func (s *quoteService) ChangeStatus(ctx context.Context, id uuid.UUID, in QuoteStatusInput) (*types.QuoteRequest, error) {
	to := types.QuoteStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if !to.Valid() {
		return nil, validation.Single("status", validation.CodeInvalid, nil)
	}
	var note *string
	if in.Note != nil {
		n := strings.TrimSpace(*in.Note)
		if validation.TooLong(n, maxNotes) {
			return nil, validation.Single("note", validation.CodeMaxLength, map[string]any{"Max": maxNotes})
		}
		note = &n
	}

	var out *types.QuoteRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		q, err := s.quoteRepo.GetByID(inner, id)
		if err != nil {
			return fmt.Errorf("load quote request: %w", err)
		}
		if q == nil {
			return notFound("quote request")
		}
		if !q.Status.CanTransitionTo(to) {
			return apierr.Conflict(CodeTransition, "cannot move quote from %s to %s", q.Status, to)
		}
		ok, err := s.quoteRepo.UpdateStatus(inner, id, q.Status, to, note)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !ok {
			return apierr.Conflict(CodeConflict, "quote request changed concurrently")
		}
		change := &types.QuoteStatusChange{
			QuoteRequestID: id,
			FromStatus:     q.Status,
			ToStatus:       to,
			ChangedBy:      requestAdminID(ctx),
		}
		if note != nil {
			change.Note = *note
		}
		if err := s.quoteRepo.AppendHistory(inner, change); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		out, err = s.quoteRepo.GetByID(inner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Quote status changed", "quote_id", id, "status", to)
	return out, nil
}

func (s *quoteService) Delete(ctx context.Context, id uuid.UUID) error {
	var ref string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		q, err := s.quoteRepo.GetByID(inner, id)
		if err != nil {
			return fmt.Errorf("load quote request: %w", err)
		}
		if q == nil {
			return notFound("quote request")
		}
		ref = q.Reference
		if err := s.quoteRepo.Delete(inner, id); err != nil {
			return fmt.Errorf("delete quote request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Quote request deleted", "quote_id", id, "reference", ref)
	return nil
}

func (s *quoteService) CountByStatus(ctx context.Context) (map[types.QuoteStatus]int64, error) {
	return s.quoteRepo.CountByStatus(dbctx.Context{Ctx: ctx})
}
