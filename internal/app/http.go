package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/http"
	httpH "github.com/yungbote/marmora-backend/internal/http/handlers"
	httpMW "github.com/yungbote/marmora-backend/internal/http/middleware"
	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type Middleware struct {
	Auth   *httpMW.AuthMiddleware
	Locale *httpMW.LocaleMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	Catalog *httpH.CatalogHandler
	Blog    *httpH.BlogHandler
	Quote   *httpH.QuoteHandler
	Contact *httpH.ContactHandler
	Site    *httpH.SiteHandler
	SEO     *httpH.SEOHandler
	Content *httpH.ContentHandler
	Media   *httpH.MediaHandler
	Home    *httpH.HomeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Auth:    httpH.NewAuthHandler(services.Auth),
		Catalog: httpH.NewCatalogHandler(log, services.Catalog),
		Blog:    httpH.NewBlogHandler(services.Blog),
		Quote:   httpH.NewQuoteHandler(log, services.Quotes, services.Content),
		Contact: httpH.NewContactHandler(services.Contacts, services.Content),
		Site:    httpH.NewSiteHandler(services.Settings, services.Theme, services.Integrations, services.WhatsApp, services.Content),
		SEO:     httpH.NewSEOHandler(services.SEO),
		Content: httpH.NewContentHandler(services.Content),
		Media:   httpH.NewMediaHandler(log, services.Media),
		Home:    httpH.NewHomeHandler(services.Home, services.Stats),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:   httpMW.NewAuthMiddleware(log, services.Auth),
		Locale: httpMW.NewLocaleMiddleware(services.Settings, services.Content, cfg.SecureCookies),
	}
}

func wireRouter(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics, handlers Handlers, middleware Middleware) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	rc := http.RouterConfig{
		Log:              log,
		ServiceName:      cfg.ServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		Tracing:          cfg.OtelEnabled,
		TrustedProxies:   cfg.TrustedProxies,
		Metrics:          metrics,
		Limiter:          clients.LoginLimiter,
		AuthMiddleware:   middleware.Auth,
		LocaleMiddleware: middleware.Locale,
		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		CatalogHandler:   handlers.Catalog,
		BlogHandler:      handlers.Blog,
		QuoteHandler:     handlers.Quote,
		ContactHandler:   handlers.Contact,
		SiteHandler:      handlers.Site,
		SEOHandler:       handlers.SEO,
		ContentHandler:   handlers.Content,
		MediaHandler:     handlers.Media,
		HomeHandler:      handlers.Home,
	}
	if clients.Storage != nil && clients.Storage.LocalDir != "" {
		rc.MediaDir = clients.Storage.LocalDir
		rc.MediaPrefix = clients.Storage.LocalPrefix
	}
	return http.NewRouter(rc)
}
