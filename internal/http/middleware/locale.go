package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/http/response"
	"github.com/yungbote/marmora-backend/internal/platform/ctxutil"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/services"
)

const (
	HeaderLocale     = "X-Locale"
	langCookieMaxAge = 365 * 24 * 60 * 60
)

type LocaleMiddleware struct {
	settings services.SettingsService
	content  services.ContentService
	secure   bool
}

func NewLocaleMiddleware(settings services.SettingsService, content services.ContentService, secureCookie bool) *LocaleMiddleware {
	return &LocaleMiddleware{settings: settings, content: content, secure: secureCookie}
}

// Resolve picks the request locale from ?lang, X-Locale, the lang cookie,
// Accept-Language and finally the site default. An explicit ?lang is
// remembered in the cookie.
func (lm *LocaleMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		locale, fromQuery := lm.resolve(c)
		if fromQuery {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(i18n.LangCookieName, locale.String(), langCookieMaxAge, "/", "", lm.secure, false)
		}

		ctx, rd := ctxutil.EnsureRequestData(ctx)
		rd.Locale = locale.String()
		c.Request = c.Request.WithContext(ctx)
		c.Header("Content-Language", locale.String())
		c.Header("Vary", "Accept-Language, Cookie, X-Locale")

		if lm.content != nil {
			response.WithTranslate(c, func(key string, data map[string]any) string {
				return lm.content.T(ctx, locale, key, data)
			})
		}
		c.Next()
	}
}

func (lm *LocaleMiddleware) resolve(c *gin.Context) (i18n.Locale, bool) {
	if l, ok := i18n.ParseLocale(c.Query(i18n.LangParam)); ok {
		return l, true
	}
	if l, ok := i18n.ParseLocale(c.GetHeader(HeaderLocale)); ok {
		return l, false
	}
	if v, err := c.Cookie(i18n.LangCookieName); err == nil {
		if l, ok := i18n.ParseLocale(v); ok {
			return l, false
		}
	}
	if l, ok := i18n.Match(c.GetHeader("Accept-Language")); ok {
		return l, false
	}
	if lm.settings != nil {
		return lm.settings.DefaultLocale(c.Request.Context()), false
	}
	return i18n.DefaultLocale, false
}

// RequestLocale is the locale attached by Resolve.
func RequestLocale(c *gin.Context) i18n.Locale {
	return i18n.Locale(ctxutil.Locale(c.Request.Context())).OrDefault(i18n.DefaultLocale)
}
