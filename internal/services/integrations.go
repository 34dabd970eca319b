package services

import (
	"bytes"
	"context"
	"html/template"
	"strings"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
)

var gaSnippet = template.Must(template.New("ga").Parse(
	`<script async src="https://www.googletagmanager.com/gtag/js?id={{.}}"></script>
<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',{{.}});</script>`))

var pixelSnippet = template.Must(template.New("pixel").Parse(
	`<script>!function(f,b,e,v,n,t,s){if(f.fbq)return;n=f.fbq=function(){n.callMethod?n.callMethod.apply(n,arguments):n.queue.push(arguments)};if(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;n.version='2.0';n.queue=[];t=b.createElement(e);t.async=!0;t.src=v;s=b.getElementsByTagName(e)[0];s.parentNode.insertBefore(t,s)}(window,document,'script','https://connect.facebook.net/en_US/fbevents.js');fbq('init',{{.}});fbq('track','PageView');</script>
<noscript><img height="1" width="1" style="display:none" src="https://www.facebook.com/tr?id={{.}}&ev=PageView&noscript=1"/></noscript>`))

var recaptchaSnippet = template.Must(template.New("recaptcha").Parse(
	`<script src="https://www.google.com/recaptcha/api.js?render={{.}}" async defer></script>`))

type Integration struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
}

type Integrations struct {
	GoogleAnalytics  *Integration  `json:"google_analytics,omitempty"`
	FacebookPixel    *Integration  `json:"facebook_pixel,omitempty"`
	RecaptchaSiteKey string        `json:"recaptcha_site_key,omitempty"`
	Recaptcha        *Integration  `json:"recaptcha,omitempty"`
	WhatsApp         *WhatsAppLink `json:"whatsapp"`
	// Head is every snippet concatenated, ready for <head>.
	Head string `json:"head"`
}

type IntegrationsService interface {
	Get(ctx context.Context, locale i18n.Locale) (*Integrations, error)
}

type integrationsService struct {
	settings SettingsService
	content  ContentService
}

func NewIntegrationsService(settings SettingsService, content ContentService) IntegrationsService {
	return &integrationsService{settings: settings, content: content}
}

func (s *integrationsService) Get(ctx context.Context, locale i18n.Locale) (*Integrations, error) {
	row, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := buildIntegrations(row)
	out.WhatsApp = buildWhatsAppLink(row, locale, func(key string, data map[string]any) string {
		return s.content.T(ctx, locale, key, data)
	})
	return out, nil
}

// buildIntegrations renders snippets only for ids that pass format checks,
// so a bad value in settings cannot inject markup.
func buildIntegrations(row *types.SiteSettings) *Integrations {
	out := &Integrations{}
	var head []string

	if id := strings.TrimSpace(row.GoogleAnalyticsID); gaIDRe.MatchString(id) {
		out.GoogleAnalytics = &Integration{ID: id, Snippet: render(gaSnippet, id)}
		head = append(head, out.GoogleAnalytics.Snippet)
	}
	if id := strings.TrimSpace(row.FacebookPixelID); pixelIDRe.MatchString(id) {
		out.FacebookPixel = &Integration{ID: id, Snippet: render(pixelSnippet, id)}
		head = append(head, out.FacebookPixel.Snippet)
	}
	if key := strings.TrimSpace(row.RecaptchaSiteKey); key != "" {
		out.RecaptchaSiteKey = key
		out.Recaptcha = &Integration{ID: key, Snippet: render(recaptchaSnippet, key)}
		head = append(head, out.Recaptcha.Snippet)
	}
	out.Head = strings.Join(head, "\n")
	return out
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}
