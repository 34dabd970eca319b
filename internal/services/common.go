package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/marmora-backend/internal/platform/ctxutil"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
)

// Error codes returned in apierr.Error.Code. Codes with a matching
// "errors.<code>" dictionary key are localized by the HTTP layer.
const (
	CodeValidation   = "validation_failed"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeRateLimited  = "rate_limited"
	CodeRecaptcha    = "recaptcha"
	CodeInvalidStep  = "invalid_step"
	CodeTransition   = "invalid_transition"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeHasProducts  = "category_has_products"
	CodeUnsupported  = "unsupported_media"
	CodeTooLarge     = "payload_too_large"
	CodeInternal     = "internal"

	// Request shape errors raised by the HTTP layer.
	CodeInvalidRequest = "invalid_request"
	CodeInvalidID      = "invalid_id"
	CodeInvalidLocale  = "invalid_locale"
	CodeMissingFile    = "missing_file"
	CodeInvalidFile    = "invalid_file"
	CodeMissingKey     = "missing_key"
)

// ErrorCodes lists every code above; each has an "errors.<code>" entry in
// all dictionaries.
var ErrorCodes = []string{
	CodeValidation, CodeNotFound, CodeConflict, CodeRateLimited, CodeRecaptcha,
	CodeInvalidStep, CodeTransition, CodeUnauthorized, CodeForbidden, CodeHasProducts,
	CodeUnsupported, CodeTooLarge, CodeInternal, CodeInvalidRequest, CodeInvalidID,
	CodeInvalidLocale, CodeMissingFile, CodeInvalidFile, CodeMissingKey,
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type PageResult[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func newPageResult[T any](items []T, total int64, p Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}

// requestLocale returns the locale attached by the locale middleware, or fallback.
func requestLocale(ctx context.Context, fallback i18n.Locale) i18n.Locale {
	if l, ok := i18n.ParseLocale(ctxutil.Locale(ctx)); ok {
		return l
	}
	return fallback.OrDefault(i18n.DefaultLocale)
}

func requestAdminID(ctx context.Context) *uuid.UUID {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.AdminID == uuid.Nil {
		return nil
	}
	id := rd.AdminID
	return &id
}

// OptionalString distinguishes an absent JSON field from an explicit value.
type OptionalString struct {
	Set   bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
