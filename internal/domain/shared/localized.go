package shared

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LocalizedText maps a locale code ("ar", "en", "es", "fr") to a translated string.
type LocalizedText map[string]string

// Get returns the text for locale, then for fallback, then the first non-empty
// translation in locale-code order.
func (t LocalizedText) Get(locale, fallback string) string {
	if v := strings.TrimSpace(t[locale]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t[fallback]); v != "" {
		return v
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(t[k]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether a non-blank translation exists for locale.
func (t LocalizedText) Has(locale string) bool {
	return strings.TrimSpace(t[locale]) != ""
}

// Clean drops blank entries and trims the rest.
func (t LocalizedText) Clean() LocalizedText {
	out := make(LocalizedText, len(t))
	for k, v := range t {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// LocalizedColumn is the JSON column type used for translated fields.
type LocalizedColumn = datatypes.JSONType[LocalizedText]

func NewLocalized(t LocalizedText) LocalizedColumn {
	if t == nil {
		t = LocalizedText{}
	}
	return datatypes.NewJSONType(t.Clean())
}

// EnsureID assigns a fresh UUID when id is unset.
func EnsureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
