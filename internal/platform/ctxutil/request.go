package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries per-request identity and presentation state.
type RequestData struct {
	AdminID      uuid.UUID
	Role         string
	TokenString  string
	RefreshToken string
	Locale       string
	ClientIP     string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// EnsureRequestData returns ctx with a RequestData attached, creating one if missing.
func EnsureRequestData(ctx context.Context) (context.Context, *RequestData) {
	if rd := GetRequestData(ctx); rd != nil {
		return ctx, rd
	}
	rd := &RequestData{}
	return WithRequestData(ctx, rd), rd
}

// Locale returns the resolved request locale, or "" when none was attached.
func Locale(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.Locale
	}
	return ""
}
