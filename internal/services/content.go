package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

const ScopeContent = "content"

var contentKeyRe = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// ContentEntry pairs a dictionary string with its admin override, if any.
type ContentEntry struct {
	Key        string `json:"key"`
	Default    string `json:"default"`
	Value      string `json:"value"`
	Overridden bool   `json:"overridden"`
}

type ContentService interface {
	T(ctx context.Context, locale i18n.Locale, key string, data map[string]any) string
	Dictionary(ctx context.Context, locale i18n.Locale) (map[string]any, error)
	Entries(ctx context.Context, locale i18n.Locale, prefix string) ([]ContentEntry, error)
	Upsert(ctx context.Context, locale, key, value string) (*types.ContentBlock, error)
	Delete(ctx context.Context, locale, key string) error
	Invalidate(locale string)
	Translator() *i18n.Translator
}

type contentService struct {
	db         *gorm.DB
	log        *logger.Logger
	translator *i18n.Translator
	repo       repos.ContentBlockRepo
	settings   SettingsService
	bus        redis.Bus

	mu        sync.RWMutex
	overrides map[i18n.Locale]map[string]string
}

// NewContentService falls back to the site default locale from settings;
// without settings it uses the translator's default.
func NewContentService(db *gorm.DB, log *logger.Logger, translator *i18n.Translator, repo repos.ContentBlockRepo, settings SettingsService, bus redis.Bus) ContentService {
	serviceLog := log.With("service", "ContentService")
	if bus == nil {
		bus = redis.NewLocalBus()
	}
	return &contentService{
		db:         db,
		log:        serviceLog,
		translator: translator,
		repo:       repo,
		settings:   settings,
		bus:        bus,
		overrides:  map[i18n.Locale]map[string]string{},
	}
}

func (s *contentService) Translator() *i18n.Translator { return s.translator }

func (s *contentService) defaultLocale(ctx context.Context) i18n.Locale {
	if s.settings != nil {
		return s.settings.DefaultLocale(ctx)
	}
	return s.translator.DefaultLocale()
}

// overridesFor loads and memoizes the override map for locale. A load
// failure is logged and yields no overrides so rendering never fails.
func (s *contentService) overridesFor(ctx context.Context, locale i18n.Locale) map[string]string {
	s.mu.RLock()
	m, ok := s.overrides[locale]
	s.mu.RUnlock()
	if ok {
		return m
	}
	rows, err := s.repo.ListByLocale(dbctx.Context{Ctx: ctx}, locale.String(), "")
	if err != nil {
		s.log.Warn("Load content overrides failed", "locale", locale, "error", err)
		return nil
	}
	m = make(map[string]string, len(rows))
	for _, r := range rows {
		m[r.Key] = r.Value
	}
	s.mu.Lock()
	s.overrides[locale] = m
	s.mu.Unlock()
	return m
}

func (s *contentService) Invalidate(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := i18n.ParseLocale(locale); ok {
		delete(s.overrides, l)
		return
	}
	s.overrides = map[i18n.Locale]map[string]string{}
}

// T prefers, in order: an override in locale, the bundled locale string,
// an override in the site default locale, the bundled site default string,
// then the bundle's own fallback chain.
func (s *contentService) T(ctx context.Context, locale i18n.Locale, key string, data map[string]any) string {
	def := s.defaultLocale(ctx)
	locale = locale.OrDefault(def)
	if v, ok := s.overridesFor(ctx, locale)[key]; ok {
		return s.translator.Render(locale, v, data)
	}
	if s.translator.HasOwn(locale, key) {
		return s.translator.T(locale, key, data)
	}
	if def != locale {
		if v, ok := s.overridesFor(ctx, def)[key]; ok {
			return s.translator.Render(locale, v, data)
		}
		if s.translator.HasOwn(def, key) {
			return s.translator.T(def, key, data)
		}
	}
	return s.translator.T(locale, key, data)
}

func (s *contentService) Dictionary(ctx context.Context, locale i18n.Locale) (map[string]any, error) {
	def := s.defaultLocale(ctx)
	locale = locale.OrDefault(def)
	flat := s.translator.Messages(locale)
	if def != locale {
		for k, v := range s.translator.Messages(def) {
			if !s.translator.HasOwn(locale, k) {
				flat[k] = v
			}
		}
		for k, v := range s.overridesFor(ctx, def) {
			if !s.translator.HasOwn(locale, k) {
				flat[k] = v
			}
		}
	}
	for k, v := range s.overridesFor(ctx, locale) {
		flat[k] = v
	}
	return i18n.Nest(flat), nil
}

func (s *contentService) Entries(ctx context.Context, locale i18n.Locale, prefix string) ([]ContentEntry, error) {
	if !locale.Valid() {
		return nil, validation.Single("locale", validation.CodeLocale, nil)
	}
	prefix = strings.TrimSpace(prefix)
	rows, err := s.repo.ListByLocale(dbctx.Context{Ctx: ctx}, locale.String(), prefix)
	if err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	over := make(map[string]string, len(rows))
	for _, r := range rows {
		over[r.Key] = r.Value
	}

	base := s.translator.Messages(locale)
	keys := make(map[string]struct{}, len(base)+len(over))
	for k := range base {
		if strings.HasPrefix(k, prefix) {
			keys[k] = struct{}{}
		}
	}
	for k := range over {
		keys[k] = struct{}{}
	}
	out := make([]ContentEntry, 0, len(keys))
	for k := range keys {
		e := ContentEntry{Key: k, Default: base[k], Value: base[k]}
		if v, ok := over[k]; ok {
			e.Value = v
			e.Overridden = true
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *contentService) Upsert(ctx context.Context, locale, key, value string) (*types.ContentBlock, error) {
	var verr validation.Errors
	l, ok := i18n.ParseLocale(locale)
	if !ok || !l.Valid() {
		verr.Add("locale", validation.CodeLocale, nil)
	}
	key = strings.TrimSpace(key)
	if verr.Required("key", key) && !contentKeyRe.MatchString(key) {
		verr.Add("key", validation.CodeInvalid, nil)
	}
	if verr.Required("value", value) {
		verr.MaxLength("value", value, 5000)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	row, err := s.repo.Upsert(dbctx.Context{Ctx: ctx}, &types.ContentBlock{
		Locale:    l.String(),
		Key:       key,
		Value:     value,
		UpdatedBy: requestAdminID(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert content block: %w", err)
	}
	s.changed(ctx, l)
	return row, nil
}

func (s *contentService) Delete(ctx context.Context, locale, key string) error {
	l, ok := i18n.ParseLocale(locale)
	if !ok {
		return validation.Single("locale", validation.CodeLocale, nil)
	}
	deleted, err := s.repo.Delete(dbctx.Context{Ctx: ctx}, l.String(), strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("delete content block: %w", err)
	}
	if !deleted {
		return notFound("content block")
	}
	s.changed(ctx, l)
	return nil
}

func (s *contentService) changed(ctx context.Context, l i18n.Locale) {
	s.Invalidate(l.String())
	if err := s.bus.Publish(ctx, redis.Invalidation{Scope: ScopeContent, Key: l.String()}); err != nil {
		s.log.Warn("Content invalidation publish failed", "locale", l, "error", err)
	}
}
