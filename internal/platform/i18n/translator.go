package i18n

import (
	"embed"
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/message"

	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

//go:embed active.*.toml
var localeFS embed.FS

// renderID never exists in the bundle, so Render always uses the supplied text.
const renderID = "__render__"

// Translator is a thin wrapper around go-i18n's Bundle/Localizer that also
// keeps the raw message text per locale for dictionary export.
type Translator struct {
	bundle        *i18n.Bundle
	defaultLocale Locale
	log           *logger.Logger

	mu       sync.RWMutex
	messages map[Locale]map[string]string
}

// NewTranslator loads the embedded active.*.toml files. A missing or broken
// file is an error: the site cannot render without its strings.
func NewTranslator(defaultLocale Locale, log *logger.Logger) (*Translator, error) {
	defaultLocale = defaultLocale.OrDefault(DefaultLocale)
	bundle := i18n.NewBundle(defaultLocale.Tag())
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	t := &Translator{
		bundle:        bundle,
		defaultLocale: defaultLocale,
		log:           log.With("component", "Translator"),
		messages:      make(map[Locale]map[string]string, len(supported)),
	}
	for _, l := range supported {
		file := fmt.Sprintf("active.%s.toml", l)
		mf, err := bundle.LoadMessageFileFS(localeFS, file)
		if err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
		flat := make(map[string]string, len(mf.Messages))
		for _, m := range mf.Messages {
			flat[m.ID] = m.Other
		}
		t.messages[l] = flat
	}
	return t, nil
}

func (t *Translator) DefaultLocale() Locale { return t.defaultLocale }

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then finally to the key itself.
func (t *Translator) T(locale Locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		if msg != "" {
			return msg
		}
		t.log.Debug("i18n: localize failed", "key", key, "locale", locale, "error", err)
		return key
	}
	return msg
}

// Has reports whether key exists in locale or the default locale.
func (t *Translator) Has(locale Locale, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.messages[locale][key]; ok {
		return true
	}
	_, ok := t.messages[t.defaultLocale][key]
	return ok
}

// HasOwn reports whether locale itself translates key, ignoring the default.
func (t *Translator) HasOwn(locale Locale, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.messages[locale][key]
	return ok && v != ""
}

// Render executes text as a message template in the given locale. It is used
// for strings that do not live in the bundle, such as admin overrides.
func (t *Translator) Render(locale Locale, text string, data map[string]any) string {
	if text == "" || len(data) == 0 {
		return text
	}
	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: renderID, Other: text},
		TemplateData:   data,
	})
	if err != nil || msg == "" {
		return text
	}
	return msg
}

// Messages returns a flat copy of every message for locale, with the default
// locale filling keys the locale lacks.
func (t *Translator) Messages(locale Locale) map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	base := t.messages[t.defaultLocale]
	own := t.messages[locale]
	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range own {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Dictionary is Messages nested by dotted key.
func (t *Translator) Dictionary(locale Locale) map[string]any {
	return Nest(t.Messages(locale))
}

// Printer formats numbers and dates with locale conventions.
func (t *Translator) Printer(locale Locale) *message.Printer {
	return message.NewPrinter(locale.OrDefault(t.defaultLocale).Tag())
}

func (t *Translator) localizer(locale Locale) *i18n.Localizer {
	langs := make([]string, 0, 2)
	if locale.Valid() {
		langs = append(langs, locale.String())
	}
	langs = append(langs, t.defaultLocale.String())
	return i18n.NewLocalizer(t.bundle, langs...)
}
