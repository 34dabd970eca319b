package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

const maxContactMessage = 5000

type ContactInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptcha_token"`
}

func (in *ContactInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
}

func ValidateContact(in ContactInput) validation.Errors {
	in.normalize()
	var v validation.Errors
	if v.Required("name", in.Name) {
		v.MaxLength("name", in.Name, 120)
	}
	if v.Email("email", in.Email) {
		v.MaxLength("email", in.Email, 254)
	}
	v.Phone("phone", in.Phone, false)
	v.MaxLength("subject", in.Subject, 200)
	if v.Required("message", in.Message) {
		v.MaxLength("message", in.Message, maxContactMessage)
	}
	return v
}

type ContactListQuery struct {
	UnreadOnly bool
	Page       Page
}

type ContactService interface {
	Submit(ctx context.Context, in ContactInput, meta SubmitMeta) (*types.ContactMessage, error)
	List(ctx context.Context, q ContactListQuery) (*PageResult[*types.ContactMessage], error)
	MarkRead(ctx context.Context, id uuid.UUID) (*types.ContactMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context) (int64, error)
}

type contactService struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.ContactMessageRepo
	guard    FormGuard
	notifier Notifier
	settings SettingsService
	now      func() time.Time
}

func NewContactService(db *gorm.DB, log *logger.Logger, repo repos.ContactMessageRepo, guard FormGuard, notifier Notifier, settings SettingsService) ContactService {
	serviceLog := log.With("service", "ContactService")
	return &contactService{
		db:       db,
		log:      serviceLog,
		repo:     repo,
		guard:    guard,
		notifier: notifier,
		settings: settings,
		now:      time.Now,
	}
}

func (s *contactService) Submit(ctx context.Context, in ContactInput, meta SubmitMeta) (*types.ContactMessage, error) {
	if err := s.guard.Check(ctx, "contact", meta.ClientIP, in.RecaptchaToken); err != nil {
		return nil, err
	}
	in.normalize()
	verr := ValidateContact(in)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	m := &types.ContactMessage{
		ID:       uuid.New(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Subject:  in.Subject,
		Message:  in.Message,
		Locale:   meta.Locale.OrDefault(s.settings.DefaultLocale(ctx)).String(),
		ClientIP: meta.ClientIP,
	}
	if _, err := s.repo.Create(dbctx.Context{Ctx: ctx}, []*types.ContactMessage{m}); err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}
	s.log.Info("Contact message received", "message_id", m.ID, "locale", m.Locale)
	if s.notifier != nil {
		s.notifier.ContactReceived(m)
	}
	return m, nil
}

func (s *contactService) List(ctx context.Context, q ContactListQuery) (*PageResult[*types.ContactMessage], error) {
	page := q.Page.Normalize()
	rows, total, err := s.repo.List(dbctx.Context{Ctx: ctx}, repos.ContactFilter{
		UnreadOnly: q.UnreadOnly,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	r := newPageResult(rows, total, page)
	return &r, nil
}

func (s *contactService) MarkRead(ctx context.Context, id uuid.UUID) (*types.ContactMessage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ok, err := s.repo.MarkRead(dbc, id, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return nil, notFound("contact message")
	}
	return s.repo.GetByID(dbc, id)
}

func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return fmt.Errorf("delete contact message: %w", err)
	}
	if !deleted {
		return notFound("contact message")
	}
	return nil
}

func (s *contactService) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(dbctx.Context{Ctx: ctx})
}
