package services

import (
	"context"
	"net/url"
	"strings"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
)

type WhatsAppLink struct {
	Enabled bool   `json:"enabled"`
	Number  string `json:"number,omitempty"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
}

type WhatsAppService interface {
	Link(ctx context.Context, locale i18n.Locale) (*WhatsAppLink, error)
}

type whatsAppService struct {
	settings SettingsService
	content  ContentService
}

func NewWhatsAppService(settings SettingsService, content ContentService) WhatsAppService {
	return &whatsAppService{settings: settings, content: content}
}

func (s *whatsAppService) Link(ctx context.Context, locale i18n.Locale) (*WhatsAppLink, error) {
	row, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return buildWhatsAppLink(row, locale, func(key string, data map[string]any) string {
		return s.content.T(ctx, locale, key, data)
	}), nil
}

func buildWhatsAppLink(row *types.SiteSettings, locale i18n.Locale, t func(string, map[string]any) string) *WhatsAppLink {
	digits := whatsappDigits(row.WhatsAppNumber)
	if !row.WhatsAppEnabled || digits == "" {
		return &WhatsAppLink{Enabled: false}
	}
	def := row.DefaultLocale
	msg := row.WhatsAppMessage.Data().Get(locale.String(), "")
	if msg == "" {
		msg = t("whatsapp.default_message", map[string]any{
			"Company": row.CompanyName.Data().Get(locale.String(), def),
		})
	}
	return &WhatsAppLink{
		Enabled: true,
		Number:  digits,
		Message: msg,
		URL:     whatsappURL(digits, msg),
	}
}

// whatsappDigits strips everything but digits; wa.me wants the bare
// international number.
func whatsappDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func whatsappURL(digits, message string) string {
	u := "https://wa.me/" + digits
	if strings.TrimSpace(message) == "" {
		return u
	}
	return u + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
