package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Message keys shared with the i18n dictionaries.
const (
	CodeRequired       = "validation.required"
	CodeEmail          = "validation.email"
	CodePhone          = "validation.phone"
	CodeMaxLength      = "validation.max_length"
	CodePositive       = "validation.positive"
	CodeUnit           = "validation.unit"
	CodeItemsRequired  = "validation.items_required"
	CodeProductUnknown = "validation.product_unknown"
	CodeSlug           = "validation.slug"
	CodeColor          = "validation.color"
	CodeMaterial       = "validation.material"
	CodeLocale         = "validation.locale"
	CodeInvalid        = "validation.invalid"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	slugRe  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	colorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func IsEmail(s string) bool          { return emailRe.MatchString(strings.TrimSpace(s)) }
func IsPhone(s string) bool          { return phoneRe.MatchString(strings.TrimSpace(s)) }
func IsSlug(s string) bool           { return slugRe.MatchString(s) }
func IsHexColor(s string) bool       { return colorRe.MatchString(strings.TrimSpace(s)) }
func IsBlank(s string) bool          { return strings.TrimSpace(s) == "" }
func Length(s string) int            { return utf8.RuneCountInString(s) }
func TooLong(s string, max int) bool { return Length(s) > max }

// FieldError is one failed rule. Code is an i18n key; Params feed its template.
type FieldError struct {
	Field  string
	Code   string
	Params map[string]any
}

// Errors collects field errors in insertion order; the first error per field wins.
type Errors struct {
	list []FieldError
	seen map[string]bool
}

func (e *Errors) Add(field, code string, params map[string]any) {
	if e.seen == nil {
		e.seen = map[string]bool{}
	}
	if e.seen[field] {
		return
	}
	e.seen[field] = true
	e.list = append(e.list, FieldError{Field: field, Code: code, Params: params})
}

func (e *Errors) Required(field, value string) bool {
	if IsBlank(value) {
		e.Add(field, CodeRequired, nil)
		return false
	}
	return true
}

func (e *Errors) MaxLength(field, value string, max int) bool {
	if TooLong(value, max) {
		e.Add(field, CodeMaxLength, map[string]any{"Max": max})
		return false
	}
	return true
}

func (e *Errors) Email(field, value string) bool {
	if !e.Required(field, value) {
		return false
	}
	if !IsEmail(value) {
		e.Add(field, CodeEmail, nil)
		return false
	}
	return true
}

// Phone checks the format only when value is non-blank.
func (e *Errors) Phone(field, value string, required bool) bool {
	if IsBlank(value) {
		if required {
			e.Add(field, CodeRequired, nil)
			return false
		}
		return true
	}
	if !IsPhone(value) {
		e.Add(field, CodePhone, nil)
		return false
	}
	return true
}

func (e *Errors) Slug(field, value string) bool {
	if !e.Required(field, value) {
		return false
	}
	if !IsSlug(value) {
		e.Add(field, CodeSlug, nil)
		return false
	}
	return true
}

// HexColor accepts blank values; callers decide whether a color is required.
func (e *Errors) HexColor(field, value string) bool {
	if IsBlank(value) || IsHexColor(value) {
		return true
	}
	e.Add(field, CodeColor, nil)
	return false
}

func (e *Errors) Merge(other Errors) {
	for _, fe := range other.list {
		e.Add(fe.Field, fe.Code, fe.Params)
	}
}

func (e *Errors) Empty() bool { return len(e.list) == 0 }

func (e *Errors) List() []FieldError {
	out := make([]FieldError, len(e.list))
	copy(out, e.list)
	return out
}

// Err returns nil when nothing failed.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return &Error{Fields: e.List()}
}

// Error is returned by services when input fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Code))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

// Localize renders each field's message with translate.
func (e *Error) Localize(translate func(key string, data map[string]any) string) map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = translate(f.Code, f.Params)
	}
	return out
}

// Single builds an Error with one field.
func Single(field, code string, params map[string]any) *Error {
	return &Error{Fields: []FieldError{{Field: field, Code: code, Params: params}}}
}
