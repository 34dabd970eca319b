package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

func TestSettingsGetCreatesDefaults(t *testing.T) {
	st := newTestStack(t)
	row, err := st.settings.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.ID != types.SettingsSingleton {
		t.Fatalf("id: want=%d got=%d", types.SettingsSingleton, row.ID)
	}
	if got := st.settings.DefaultLocale(context.Background()); got != i18n.English {
		t.Fatalf("default locale: got=%q", got)
	}
}

func TestSettingsUpdateKeepsSecretsOutOfPublicProjection(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()

	admin, err := st.settings.Update(ctx, SettingsPatch{
		SMTPHost:        strPtr("smtp.example.com"),
		SMTPPassword:    strPtr("hunter2"),
		RecaptchaSecret: strPtr("secret-key"),
		ThemePrimary:    strPtr("#123"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !admin.SMTPPasswordSet || !admin.RecaptchaSecretSet {
		t.Fatalf("secret flags not set: %+v", admin)
	}

	// served from the cache after the update
	row, err := st.settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.SMTPPassword != "hunter2" || row.RecaptchaSecret != "secret-key" {
		t.Fatalf("secrets lost through cache: %q %q", row.SMTPPassword, row.RecaptchaSecret)
	}

	pub, err := st.settings.Public(ctx, i18n.French)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	if pub.Theme.Primary != "#123" {
		t.Fatalf("theme primary: got=%q", pub.Theme.Primary)
	}
	if pub.Locale != "fr" || pub.Dir != "ltr" {
		t.Fatalf("locale projection: %+v", pub)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	st := newTestStack(t)
	_, err := st.settings.Update(context.Background(), SettingsPatch{
		ThemeAccent:       strPtr("red"),
		DefaultLocale:     strPtr("de"),
		GoogleAnalyticsID: strPtr("UA-1234"),
		SMTPPort:          func() *int { p := 0; return &p }(),
	})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error, got %v", err)
	}
	fields := map[string]string{}
	for _, fe := range verr.Fields {
		fields[fe.Field] = fe.Code
	}
	for _, f := range []string{"theme_accent", "default_locale", "google_analytics_id", "smtp_port"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing error for %s: %+v", f, fields)
		}
	}
	if fields["theme_accent"] != validation.CodeColor {
		t.Fatalf("theme_accent code: %q", fields["theme_accent"])
	}
}

func TestSettingsRejectsUnbalancedFontQuotes(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	for _, font := range []string{`"Inter`, `'Playfair Display, serif`, `"Noto Sans Arabic', sans-serif`} {
		_, err := st.settings.Update(ctx, SettingsPatch{FontFamily: strPtr(font)})
		var verr *validation.Error
		if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Field != "font_family" {
			t.Fatalf("font %q: want font_family error, got %v", font, err)
		}
	}
	if _, err := st.settings.Update(ctx, SettingsPatch{FontFamily: strPtr(`"Noto Sans Arabic", 'Inter', sans-serif`)}); err != nil {
		t.Fatalf("balanced quotes: %v", err)
	}

	for in, want := range map[string]string{
		`"Inter`:                  "",
		`"It's Serif", serif`:     `"It's Serif", serif`,
		`Inter; } body{color:red`: "Inter  bodycolor:red",
	} {
		if got := sanitizeFontFamily(in); got != want {
			t.Fatalf("sanitizeFontFamily(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSettingsUpdateRefreshesSharedCache(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	cache := redis.NewMemoryCache()
	bus := redis.NewLocalBus()

	a := NewSettingsService(db, log, repos.NewSiteSettingsRepo(db, log), cache, bus)
	b := NewSettingsService(db, log, repos.NewSiteSettingsRepo(db, log), cache, bus)
	if _, err := b.Get(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if _, err := a.Update(ctx, SettingsPatch{Email: strPtr("sales@example.com")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	row, err := b.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.Email != "sales@example.com" {
		t.Fatalf("stale settings after update: %q", row.Email)
	}
}

func TestThemeStylesheet(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	theme := NewThemeService(st.settings)

	before, err := theme.Stylesheet(ctx)
	if err != nil {
		t.Fatalf("Stylesheet: %v", err)
	}
	if !strings.HasPrefix(before.CSS, ":root{--color-primary:") {
		t.Fatalf("css: %q", before.CSS)
	}
	if _, err := st.settings.Update(ctx, SettingsPatch{ThemePrimary: strPtr("#abcdef")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, err := theme.Stylesheet(ctx)
	if err != nil {
		t.Fatalf("Stylesheet: %v", err)
	}
	if !strings.Contains(after.CSS, "--color-primary:#abcdef;") {
		t.Fatalf("css not updated: %q", after.CSS)
	}
	if after.ETag == before.ETag {
		t.Fatalf("etag did not change")
	}
}

func TestRenderThemeCSS(t *testing.T) {
	got := RenderThemeCSS(ThemeColors{
		Primary: "#111", Secondary: "#222", Accent: "#333",
		Background: "#fff", Text: "#000", FontFamily: "Inter, sans-serif",
	})
	want := ":root{--color-primary:#111;--color-secondary:#222;--color-accent:#333;--color-background:#fff;--color-text:#000;--font-family:Inter, sans-serif;}\n"
	if got != want {
		t.Fatalf("css:\nwant=%q\ngot= %q", want, got)
	}
	if contrastText("#ffffff") == contrastText("#000000") {
		t.Fatalf("contrast text should differ for black and white")
	}
}

func TestWhatsAppLink(t *testing.T) {
	row := types.DefaultSettings()
	tr := func(key string, data map[string]any) string { return "Hello " + data["Company"].(string) }

	if got := buildWhatsAppLink(row, i18n.English, tr); got.Enabled {
		t.Fatalf("disabled widget should not be enabled: %+v", got)
	}

	row.WhatsAppEnabled = true
	row.WhatsAppNumber = "+20 (100) 123-4567"
	got := buildWhatsAppLink(row, i18n.English, tr)
	if got.Number != "201001234567" {
		t.Fatalf("digits: got=%q", got.Number)
	}
	if got.URL != "https://wa.me/201001234567?text=Hello%20Marmora%20Stone%20Export" {
		t.Fatalf("url: got=%q", got.URL)
	}

	row.WhatsAppMessage = types.NewLocalized(types.LocalizedText{"fr": "Bonjour & merci"})
	got = buildWhatsAppLink(row, i18n.French, tr)
	if got.Message != "Bonjour & merci" || !strings.Contains(got.URL, "Bonjour%20%26%20merci") {
		t.Fatalf("localized message: %+v", got)
	}
}

func TestIntegrationsSkipMalformedIDs(t *testing.T) {
	row := types.DefaultSettings()
	row.GoogleAnalyticsID = "G-ABC123"
	row.FacebookPixelID = "123\"><script>"
	row.RecaptchaSiteKey = "site-key"

	got := buildIntegrations(row)
	if got.GoogleAnalytics == nil || !strings.Contains(got.GoogleAnalytics.Snippet, "id=G-ABC123") {
		t.Fatalf("ga snippet: %+v", got.GoogleAnalytics)
	}
	if got.FacebookPixel != nil {
		t.Fatalf("malformed pixel id rendered: %+v", got.FacebookPixel)
	}
	if got.Recaptcha == nil || !strings.Contains(got.Head, "render=site-key") {
		t.Fatalf("recaptcha snippet missing from head: %q", got.Head)
	}
}
