package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"
	Spanish Locale = "es"
	French  Locale = "fr"

	DefaultLocale = English

	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "lang"
	// LocaleHeader lets API clients pin a language without cookies.
	LocaleHeader = "X-Locale"
)

var supported = []Locale{Arabic, English, Spanish, French}

var supportedTags = []language.Tag{
	language.Arabic,
	language.English,
	language.Spanish,
	language.French,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the locales the site is translated into.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

func SupportedStrings() []string {
	out := make([]string, len(supported))
	for i, l := range supported {
		out[i] = string(l)
	}
	return out
}

func (l Locale) Valid() bool {
	for _, s := range supported {
		if s == l {
			return true
		}
	}
	return false
}

func (l Locale) String() string { return string(l) }

// Dir is the text direction for the locale, "rtl" or "ltr".
func (l Locale) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

func (l Locale) Tag() language.Tag {
	for i, s := range supported {
		if s == l {
			return supportedTags[i]
		}
	}
	return language.English
}

// Dir reports the text direction for a raw locale string.
func Dir(locale string) string {
	return Locale(strings.ToLower(strings.TrimSpace(locale))).Dir()
}

// ParseLocale accepts "fr", "FR", "fr-CA" or "fr_CA" and returns the
// supported base locale.
func ParseLocale(value string) (Locale, bool) {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", "-"))
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	l := Locale(base.String())
	if !l.Valid() {
		return "", false
	}
	return l, true
}

// Match picks the best supported locale for an Accept-Language header.
func Match(acceptLanguage string) (Locale, bool) {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := tagMatcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return supported[idx], true
}

// OrDefault returns l when it is supported and fallback otherwise.
func (l Locale) OrDefault(fallback Locale) Locale {
	if l.Valid() {
		return l
	}
	if fallback.Valid() {
		return fallback
	}
	return DefaultLocale
}
