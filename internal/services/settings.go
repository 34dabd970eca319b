package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

const (
	settingsCacheKey = "settings:v1"
	settingsCacheTTL = 10 * time.Minute

	ScopeSettings = "settings"
)

var (
	gaIDRe    = regexp.MustCompile(`^G-[A-Z0-9]{4,20}$`)
	pixelIDRe = regexp.MustCompile(`^[0-9]{5,20}$`)
)

type ThemeColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
	FontFamily string `json:"font_family"`
}

// PublicSettings is the storefront projection. It never carries SMTP
// credentials or the reCAPTCHA secret.
type PublicSettings struct {
	Locale            string            `json:"locale"`
	Dir               string            `json:"dir"`
	DefaultLocale     string            `json:"default_locale"`
	Locales           []string          `json:"locales"`
	CompanyName       string            `json:"company_name"`
	Tagline           string            `json:"tagline"`
	Address           string            `json:"address"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Social            map[string]string `json:"social"`
	Theme             ThemeColors       `json:"theme"`
	WhatsAppEnabled   bool              `json:"whatsapp_enabled"`
	RecaptchaSiteKey  string            `json:"recaptcha_site_key"`
	GoogleAnalyticsID string            `json:"google_analytics_id"`
	FacebookPixelID   string            `json:"facebook_pixel_id"`
}

// AdminSettings is the full record plus flags for the write-only secrets.
type AdminSettings struct {
	*types.SiteSettings
	SMTPPasswordSet    bool `json:"smtp_password_set"`
	RecaptchaSecretSet bool `json:"recaptcha_secret_set"`
}

// SettingsPatch updates only the fields present in the request body.
type SettingsPatch struct {
	CompanyName *types.LocalizedText `json:"company_name"`
	Tagline     *types.LocalizedText `json:"tagline"`
	Address     *types.LocalizedText `json:"address"`
	Email       *string              `json:"email"`
	Phone       *string              `json:"phone"`

	WhatsAppNumber  *string              `json:"whatsapp_number"`
	WhatsAppEnabled *bool                `json:"whatsapp_enabled"`
	WhatsAppMessage *types.LocalizedText `json:"whatsapp_message"`

	FacebookURL  *string `json:"facebook_url"`
	InstagramURL *string `json:"instagram_url"`
	LinkedInURL  *string `json:"linkedin_url"`
	YouTubeURL   *string `json:"youtube_url"`

	DefaultLocale *string `json:"default_locale"`

	ThemePrimary    *string `json:"theme_primary"`
	ThemeSecondary  *string `json:"theme_secondary"`
	ThemeAccent     *string `json:"theme_accent"`
	ThemeBackground *string `json:"theme_background"`
	ThemeText       *string `json:"theme_text"`
	FontFamily      *string `json:"font_family"`

	SMTPHost     *string `json:"smtp_host"`
	SMTPPort     *int    `json:"smtp_port"`
	SMTPUsername *string `json:"smtp_username"`
	SMTPPassword *string `json:"smtp_password"`
	SMTPFrom     *string `json:"smtp_from"`
	NotifyEmail  *string `json:"notify_email"`

	GoogleAnalyticsID *string `json:"google_analytics_id"`
	FacebookPixelID   *string `json:"facebook_pixel_id"`
	RecaptchaSiteKey  *string `json:"recaptcha_site_key"`
	RecaptchaSecret   *string `json:"recaptcha_secret"`
}

type SettingsService interface {
	Get(ctx context.Context) (*types.SiteSettings, error)
	Public(ctx context.Context, locale i18n.Locale) (*PublicSettings, error)
	Admin(ctx context.Context) (*AdminSettings, error)
	Update(ctx context.Context, patch SettingsPatch) (*AdminSettings, error)
	DefaultLocale(ctx context.Context) i18n.Locale
	Invalidate(ctx context.Context)
}

type settingsService struct {
	db    *gorm.DB
	log   *logger.Logger
	repo  repos.SiteSettingsRepo
	cache redis.Cache
	bus   redis.Bus
}

func NewSettingsService(db *gorm.DB, log *logger.Logger, repo repos.SiteSettingsRepo, cache redis.Cache, bus redis.Bus) SettingsService {
	serviceLog := log.With("service", "SettingsService")
	if cache == nil {
		cache = redis.NewMemoryCache()
	}
	if bus == nil {
		bus = redis.NewLocalBus()
	}
	return &settingsService{db: db, log: serviceLog, repo: repo, cache: cache, bus: bus}
}

// cachedSettings keeps the secrets that SiteSettings hides from JSON.
type cachedSettings struct {
	types.SiteSettings
	CachedSMTPPassword    string `json:"cached_smtp_password"`
	CachedRecaptchaSecret string `json:"cached_recaptcha_secret"`
}

func (s *settingsService) Get(ctx context.Context) (*types.SiteSettings, error) {
	if raw, err := s.cache.Get(ctx, settingsCacheKey); err == nil {
		var c cachedSettings
		if jerr := json.Unmarshal(raw, &c); jerr == nil {
			out := c.SiteSettings
			out.SMTPPassword = c.CachedSMTPPassword
			out.RecaptchaSecret = c.CachedRecaptchaSecret
			return &out, nil
		}
		s.log.Warn("Dropping undecodable settings cache entry")
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.Warn("Settings cache read failed", "error", err)
	}

	row, err := s.repo.Get(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s.store(ctx, row)
	return row, nil
}

func (s *settingsService) store(ctx context.Context, row *types.SiteSettings) {
	raw, err := json.Marshal(cachedSettings{
		SiteSettings:          *row,
		CachedSMTPPassword:    row.SMTPPassword,
		CachedRecaptchaSecret: row.RecaptchaSecret,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, settingsCacheKey, raw, settingsCacheTTL); err != nil {
		s.log.Warn("Settings cache write failed", "error", err)
	}
}

func (s *settingsService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.log.Warn("Settings cache delete failed", "error", err)
	}
}

func (s *settingsService) DefaultLocale(ctx context.Context) i18n.Locale {
	row, err := s.Get(ctx)
	if err != nil {
		return i18n.DefaultLocale
	}
	if l, ok := i18n.ParseLocale(row.DefaultLocale); ok {
		return l
	}
	return i18n.DefaultLocale
}

func (s *settingsService) Public(ctx context.Context, locale i18n.Locale) (*PublicSettings, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return publicSettings(row, locale), nil
}

func publicSettings(row *types.SiteSettings, locale i18n.Locale) *PublicSettings {
	def := row.DefaultLocale
	if _, ok := i18n.ParseLocale(def); !ok {
		def = i18n.DefaultLocale.String()
	}
	loc := locale.String()
	social := map[string]string{}
	for k, v := range map[string]string{
		"facebook":  row.FacebookURL,
		"instagram": row.InstagramURL,
		"linkedin":  row.LinkedInURL,
		"youtube":   row.YouTubeURL,
	} {
		if strings.TrimSpace(v) != "" {
			social[k] = v
		}
	}
	return &PublicSettings{
		Locale:            loc,
		Dir:               locale.Dir(),
		DefaultLocale:     def,
		Locales:           i18n.SupportedStrings(),
		CompanyName:       row.CompanyName.Data().Get(loc, def),
		Tagline:           row.Tagline.Data().Get(loc, def),
		Address:           row.Address.Data().Get(loc, def),
		Email:             row.Email,
		Phone:             row.Phone,
		Social:            social,
		Theme:             themeColors(row),
		WhatsAppEnabled:   row.WhatsAppEnabled && whatsappDigits(row.WhatsAppNumber) != "",
		RecaptchaSiteKey:  row.RecaptchaSiteKey,
		GoogleAnalyticsID: row.GoogleAnalyticsID,
		FacebookPixelID:   row.FacebookPixelID,
	}
}

func themeColors(row *types.SiteSettings) ThemeColors {
	def := types.DefaultSettings()
	pick := func(v, fallback string) string {
		if validation.IsHexColor(v) {
			return strings.TrimSpace(v)
		}
		return fallback
	}
	font := sanitizeFontFamily(row.FontFamily)
	if font == "" {
		font = def.FontFamily
	}
	return ThemeColors{
		Primary:    pick(row.ThemePrimary, def.ThemePrimary),
		Secondary:  pick(row.ThemeSecondary, def.ThemeSecondary),
		Accent:     pick(row.ThemeAccent, def.ThemeAccent),
		Background: pick(row.ThemeBackground, def.ThemeBackground),
		Text:       pick(row.ThemeText, def.ThemeText),
		FontFamily: font,
	}
}

func (s *settingsService) Admin(ctx context.Context) (*AdminSettings, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return adminSettings(row), nil
}

func adminSettings(row *types.SiteSettings) *AdminSettings {
	return &AdminSettings{
		SiteSettings:       row,
		SMTPPasswordSet:    row.SMTPPassword != "",
		RecaptchaSecretSet: row.RecaptchaSecret != "",
	}
}

func (s *settingsService) Update(ctx context.Context, patch SettingsPatch) (*AdminSettings, error) {
	var verr validation.Errors
	validateSettingsPatch(&verr, patch)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var saved *types.SiteSettings
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.repo.Get(inner)
		if err != nil {
			return err
		}
		applySettingsPatch(row, patch)
		if err := s.repo.Save(inner, row); err != nil {
			return err
		}
		saved = row
		return nil
	}); err != nil {
		s.log.Warn("Settings update failed", "error", err)
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.Invalidate(ctx)
	if err := s.bus.Publish(ctx, redis.Invalidation{Scope: ScopeSettings}); err != nil {
		s.log.Warn("Settings invalidation publish failed", "error", err)
	}
	s.log.Info("Site settings updated")
	return adminSettings(saved), nil
}

func validateSettingsPatch(v *validation.Errors, p SettingsPatch) {
	optEmail := func(field string, val *string) {
		if val != nil && !validation.IsBlank(*val) {
			v.Email(field, *val)
		}
	}
	optEmail("email", p.Email)
	optEmail("smtp_from", p.SMTPFrom)
	optEmail("notify_email", p.NotifyEmail)

	if p.Phone != nil {
		v.Phone("phone", *p.Phone, false)
	}
	if p.WhatsAppNumber != nil {
		v.Phone("whatsapp_number", *p.WhatsAppNumber, false)
	}
	if p.CompanyName != nil && !p.CompanyName.Clean().Has(i18n.DefaultLocale.String()) {
		v.Add("company_name", validation.CodeRequired, nil)
	}
	if p.DefaultLocale != nil {
		if _, ok := i18n.ParseLocale(*p.DefaultLocale); !ok {
			v.Add("default_locale", validation.CodeLocale, nil)
		}
	}
	for field, val := range map[string]*string{
		"theme_primary":    p.ThemePrimary,
		"theme_secondary":  p.ThemeSecondary,
		"theme_accent":     p.ThemeAccent,
		"theme_background": p.ThemeBackground,
		"theme_text":       p.ThemeText,
	} {
		if val != nil {
			v.HexColor(field, *val)
		}
	}
	if p.FontFamily != nil {
		if v.MaxLength("font_family", *p.FontFamily, 200) && sanitizeFontFamily(*p.FontFamily) != strings.TrimSpace(*p.FontFamily) {
			v.Add("font_family", validation.CodeInvalid, nil)
		}
	}
	if p.SMTPPort != nil && (*p.SMTPPort < 1 || *p.SMTPPort > 65535) {
		v.Add("smtp_port", validation.CodeInvalid, nil)
	}
	for field, val := range map[string]*string{
		"facebook_url":  p.FacebookURL,
		"instagram_url": p.InstagramURL,
		"linkedin_url":  p.LinkedInURL,
		"youtube_url":   p.YouTubeURL,
	} {
		if val != nil && !validation.IsBlank(*val) && !isHTTPURL(*val) {
			v.Add(field, validation.CodeInvalid, nil)
		}
	}
	if p.GoogleAnalyticsID != nil && !validation.IsBlank(*p.GoogleAnalyticsID) && !gaIDRe.MatchString(strings.TrimSpace(*p.GoogleAnalyticsID)) {
		v.Add("google_analytics_id", validation.CodeInvalid, nil)
	}
	if p.FacebookPixelID != nil && !validation.IsBlank(*p.FacebookPixelID) && !pixelIDRe.MatchString(strings.TrimSpace(*p.FacebookPixelID)) {
		v.Add("facebook_pixel_id", validation.CodeInvalid, nil)
	}
}

func applySettingsPatch(row *types.SiteSettings, p SettingsPatch) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setLoc := func(dst *types.LocalizedColumn, src *types.LocalizedText) {
		if src != nil {
			*dst = types.NewLocalized(*src)
		}
	}

	setLoc(&row.CompanyName, p.CompanyName)
	setLoc(&row.Tagline, p.Tagline)
	setLoc(&row.Address, p.Address)
	setStr(&row.Email, p.Email)
	setStr(&row.Phone, p.Phone)

	setStr(&row.WhatsAppNumber, p.WhatsAppNumber)
	if p.WhatsAppEnabled != nil {
		row.WhatsAppEnabled = *p.WhatsAppEnabled
	}
	setLoc(&row.WhatsAppMessage, p.WhatsAppMessage)

	setStr(&row.FacebookURL, p.FacebookURL)
	setStr(&row.InstagramURL, p.InstagramURL)
	setStr(&row.LinkedInURL, p.LinkedInURL)
	setStr(&row.YouTubeURL, p.YouTubeURL)

	if p.DefaultLocale != nil {
		if l, ok := i18n.ParseLocale(*p.DefaultLocale); ok {
			row.DefaultLocale = l.String()
		}
	}

	setStr(&row.ThemePrimary, p.ThemePrimary)
	setStr(&row.ThemeSecondary, p.ThemeSecondary)
	setStr(&row.ThemeAccent, p.ThemeAccent)
	setStr(&row.ThemeBackground, p.ThemeBackground)
	setStr(&row.ThemeText, p.ThemeText)
	setStr(&row.FontFamily, p.FontFamily)

	setStr(&row.SMTPHost, p.SMTPHost)
	if p.SMTPPort != nil {
		row.SMTPPort = *p.SMTPPort
	}
	setStr(&row.SMTPUsername, p.SMTPUsername)
	// secrets are not trimmed; an explicit "" clears them
	if p.SMTPPassword != nil {
		row.SMTPPassword = *p.SMTPPassword
	}
	setStr(&row.SMTPFrom, p.SMTPFrom)
	setStr(&row.NotifyEmail, p.NotifyEmail)

	setStr(&row.GoogleAnalyticsID, p.GoogleAnalyticsID)
	setStr(&row.FacebookPixelID, p.FacebookPixelID)
	setStr(&row.RecaptchaSiteKey, p.RecaptchaSiteKey)
	if p.RecaptchaSecret != nil {
		row.RecaptchaSecret = strings.TrimSpace(*p.RecaptchaSecret)
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// sanitizeFontFamily drops characters that could escape a CSS declaration.
// A value with an unterminated quote yields "" so the default font is used.
func sanitizeFontFamily(v string) string {
	v = strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '\\', '\n', '\r':
			return -1
		}
		return r
	}, v))
	if !balancedQuotes(v) {
		return ""
	}
	return v
}

// balancedQuotes reports whether every ' or " opened in v is closed by the
// same character.
func balancedQuotes(v string) bool {
	var open rune
	for _, r := range v {
		switch {
		case open == 0 && (r == '"' || r == '\''):
			open = r
		case r == open:
			open = 0
		}
	}
	return open == 0
}

func notFound(what string) error {
	return apierr.NotFound(CodeNotFound, "%s not found", what)
}
