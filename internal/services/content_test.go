package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

func TestContentOverridePrecedence(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()

	if got := st.content.T(ctx, i18n.French, "nav.home", nil); got == "nav.home" || got == "" {
		t.Fatalf("bundle lookup failed: %q", got)
	}

	if _, err := st.content.Upsert(ctx, "en", "home.hero.title", "Stone for every project"); err != nil {
		t.Fatalf("Upsert en: %v", err)
	}
	if got := st.content.T(ctx, i18n.English, "home.hero.title", nil); got != "Stone for every project" {
		t.Fatalf("en override: got=%q", got)
	}
	// fr has its own bundled string, which beats the default-locale override
	if got := st.content.T(ctx, i18n.French, "home.hero.title", nil); got == "Stone for every project" {
		t.Fatalf("default override leaked over a bundled fr string")
	}

	if _, err := st.content.Upsert(ctx, "en", "home.banner", "Spring sale"); err != nil {
		t.Fatalf("Upsert new key: %v", err)
	}
	if got := st.content.T(ctx, i18n.Spanish, "home.banner", nil); got != "Spring sale" {
		t.Fatalf("default override as fallback: got=%q", got)
	}

	if _, err := st.content.Upsert(ctx, "fr", "home.banner", "Soldes de printemps"); err != nil {
		t.Fatalf("Upsert fr: %v", err)
	}
	dict, err := st.content.Dictionary(ctx, i18n.French)
	if err != nil {
		t.Fatalf("Dictionary: %v", err)
	}
	home, ok := dict["home"].(map[string]any)
	if !ok || home["banner"] != "Soldes de printemps" {
		t.Fatalf("dictionary override: %#v", dict["home"])
	}
}

func TestContentRenderTemplateInOverride(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	if _, err := st.content.Upsert(ctx, "en", "quote.success", "Got it: {{.Reference}}"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got := st.content.T(ctx, i18n.English, "quote.success", map[string]any{"Reference": "Q-1"})
	if got != "Got it: Q-1" {
		t.Fatalf("rendered override: got=%q", got)
	}
}

func TestContentEntriesAndDelete(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	if _, err := st.content.Upsert(ctx, "ar", "nav.home", "الصفحة الرئيسية"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	entries, err := st.content.Entries(ctx, i18n.Arabic, "nav.")
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var found bool
	for _, e := range entries {
		if e.Key == "nav.home" {
			found = true
			if !e.Overridden || e.Value != "الصفحة الرئيسية" {
				t.Fatalf("entry: %+v", e)
			}
		}
		if len(e.Key) < 4 || e.Key[:4] != "nav." {
			t.Fatalf("prefix filter leaked %q", e.Key)
		}
	}
	if !found {
		t.Fatalf("nav.home missing from entries")
	}

	if err := st.content.Delete(ctx, "ar", "nav.home"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = st.content.Delete(ctx, "ar", "nav.home")
	if ae, ok := apierr.As(err); !ok || ae.Status != 404 {
		t.Fatalf("second delete: want 404, got %v", err)
	}
}

func TestContentUpsertValidation(t *testing.T) {
	st := newTestStack(t)
	_, err := st.content.Upsert(context.Background(), "de", "Bad Key", "")
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("want validation error, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("want 3 field errors, got %+v", verr.Fields)
	}
}

func TestContentFallsBackToSiteDefaultLocale(t *testing.T) {
	st := newTestStack(t)
	ctx := context.Background()
	if _, err := st.settings.Update(ctx, SettingsPatch{DefaultLocale: strPtr("fr")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := st.content.Upsert(ctx, "en", "home.banner", "Spring sale"); err != nil {
		t.Fatalf("Upsert en: %v", err)
	}
	if _, err := st.content.Upsert(ctx, "fr", "home.banner", "Soldes de printemps"); err != nil {
		t.Fatalf("Upsert fr: %v", err)
	}

	if got := st.content.T(ctx, i18n.Spanish, "home.banner", nil); got != "Soldes de printemps" {
		t.Fatalf("es falls back to the site default: got=%q", got)
	}
	if got, want := st.content.T(ctx, "", "nav.home", nil), st.content.T(ctx, i18n.French, "nav.home", nil); got != want {
		t.Fatalf("unset locale: got=%q want=%q", got, want)
	}

	dict, err := st.content.Dictionary(ctx, i18n.Spanish)
	if err != nil {
		t.Fatalf("Dictionary: %v", err)
	}
	home, ok := dict["home"].(map[string]any)
	if !ok || home["banner"] != "Soldes de printemps" {
		t.Fatalf("dictionary fallback: %#v", dict["home"])
	}
}

func TestErrorCodesAreTranslated(t *testing.T) {
	st := newTestStack(t)
	tr := st.content.Translator()
	for _, locale := range i18n.Supported() {
		for _, code := range ErrorCodes {
			if !tr.HasOwn(locale, "errors."+code) {
				t.Errorf("%s: missing errors.%s", locale, code)
			}
		}
	}
	if got := st.content.T(context.Background(), i18n.Arabic, "errors."+CodeTransition, nil); got != "تغيير الحالة هذا غير مسموح." {
		t.Fatalf("ar transition message: %q", got)
	}
}
