package services

import (
	"context"
	"fmt"
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

type BlogPostView struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type BlogPostInput struct {
	Slug        string              `json:"slug"`
	Title       types.LocalizedText `json:"title"`
	Excerpt     types.LocalizedText `json:"excerpt"`
	Body        types.LocalizedText `json:"body"`
	CoverImage  string              `json:"cover_image"`
	Tags        []string            `json:"tags"`
	Published   bool                `json:"published"`
	PublishedAt *time.Time          `json:"published_at"`
}

type BlogService interface {
	List(ctx context.Context, locale i18n.Locale, tag string, page Page) (*PageResult[BlogPostView], error)
	Get(ctx context.Context, locale i18n.Locale, slug string) (*BlogPostView, error)

	AdminList(ctx context.Context, page Page) (*PageResult[*types.BlogPost], error)
	AdminGet(ctx context.Context, id uuid.UUID) (*types.BlogPost, error)
	Create(ctx context.Context, in BlogPostInput) (*types.BlogPost, error)
	Update(ctx context.Context, id uuid.UUID, in BlogPostInput) (*types.BlogPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type blogService struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.BlogPostRepo
	settings SettingsService
	now      func() time.Time
}

func NewBlogService(db *gorm.DB, log *logger.Logger, repo repos.BlogPostRepo, settings SettingsService) BlogService {
	serviceLog := log.With("service", "BlogService")
	return &blogService{db: db, log: serviceLog, repo: repo, settings: settings, now: time.Now}
}

func (s *blogService) List(ctx context.Context, locale i18n.Locale, tag string, page Page) (*PageResult[BlogPostView], error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(dbctx.Context{Ctx: ctx}, repos.BlogFilter{
		PublishedOnly: true,
		Now:           s.now(),
		Tag:           strings.TrimSpace(tag),
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	fb := s.settings.DefaultLocale(ctx).String()
	views := make([]BlogPostView, 0, len(rows))
	for _, p := range rows {
		v := blogView(p, locale, fb)
		v.Body = ""
		views = append(views, v)
	}
	r := newPageResult(views, total, page)
	return &r, nil
}

func (s *blogService) Get(ctx context.Context, locale i18n.Locale, slug string) (*BlogPostView, error) {
	p, err := s.repo.GetBySlug(dbctx.Context{Ctx: ctx}, strings.TrimSpace(slug))
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil || !isVisible(p, s.now()) {
		return nil, notFound("post")
	}
	v := blogView(p, locale, s.settings.DefaultLocale(ctx).String())
	return &v, nil
}

func isVisible(p *types.BlogPost, now time.Time) bool {
	if !p.Published {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(now)
}

func blogView(p *types.BlogPost, locale i18n.Locale, fallback string) BlogPostView {
	return BlogPostView{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title.Data().Get(locale.String(), fallback),
		Excerpt:     p.Excerpt.Data().Get(locale.String(), fallback),
		Body:        p.Body.Data().Get(locale.String(), fallback),
		CoverImage:  p.CoverImage,
		Tags:        nonNil(p.Tags),
		PublishedAt: p.PublishedAt,
	}
}

func (s *blogService) AdminList(ctx context.Context, page Page) (*PageResult[*types.BlogPost], error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(dbctx.Context{Ctx: ctx}, repos.BlogFilter{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	r := newPageResult(rows, total, page)
	return &r, nil
}

func (s *blogService) AdminGet(ctx context.Context, id uuid.UUID) (*types.BlogPost, error) {
	p, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p == nil {
		return nil, notFound("post")
	}
	return p, nil
}

func (s *blogService) validate(dbc dbctx.Context, in *BlogPostInput, excludeID uuid.UUID) error {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Title = in.Title.Clean()
	in.Excerpt = in.Excerpt.Clean()
	in.Body = in.Body.Clean()
	in.CoverImage = strings.TrimSpace(in.CoverImage)

	var verr validation.Errors
	verr.Slug("slug", in.Slug)
	def := i18n.DefaultLocale.String()
	if !in.Title.Has(def) {
		verr.Add("title."+def, validation.CodeRequired, nil)
	}
	if !in.Body.Has(def) {
		verr.Add("body."+def, validation.CodeRequired, nil)
	}
	for loc, v := range in.Title {
		if !i18n.Locale(loc).Valid() {
			verr.Add("title."+loc, validation.CodeLocale, nil)
		}
		verr.MaxLength("title."+loc, v, 200)
	}
	for loc, v := range in.Excerpt {
		verr.MaxLength("excerpt."+loc, v, 500)
	}
	if err := verr.Err(); err != nil {
		return err
	}
	exists, err := s.repo.SlugExists(dbc, in.Slug, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return apierr.Conflict(CodeConflict, "slug %q already in use", in.Slug)
	}
	return nil
}

// apply stamps published_at the first time a post is published.
func (s *blogService) apply(p *types.BlogPost, in BlogPostInput) {
	p.Slug = in.Slug
	p.Title = types.NewLocalized(in.Title)
	p.Excerpt = types.NewLocalized(in.Excerpt)
	p.Body = types.NewLocalized(in.Body)
	p.CoverImage = in.CoverImage
	p.Tags = datatypes.JSONSlice[string](cleanStrings(in.Tags))
	p.Published = in.Published
	switch {
	case in.PublishedAt != nil:
		at := in.PublishedAt.UTC()
		p.PublishedAt = &at
	case in.Published && p.PublishedAt == nil:
		at := s.now().UTC()
		p.PublishedAt = &at
	}
}

func (s *blogService) Create(ctx context.Context, in BlogPostInput) (*types.BlogPost, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.validate(dbc, &in, uuid.Nil); err != nil {
		return nil, err
	}
	p := &types.BlogPost{ID: uuid.New(), AuthorID: requestAdminID(ctx)}
	s.apply(p, in)
	if _, err := s.repo.Create(dbc, []*types.BlogPost{p}); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.log.Info("Blog post created", "post_id", p.ID, "slug", p.Slug)
	return p, nil
}

func (s *blogService) Update(ctx context.Context, id uuid.UUID, in BlogPostInput) (*types.BlogPost, error) {
	var updated *types.BlogPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		p, err := s.repo.GetByID(inner, id)
		if err != nil {
			return fmt.Errorf("load post: %w", err)
		}
		if p == nil {
			return notFound("post")
		}
		if err := s.validate(inner, &in, id); err != nil {
			return err
		}
		s.apply(p, in)
		if err := s.repo.Update(inner, p); err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *blogService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if !deleted {
		return notFound("post")
	}
	return nil
}
