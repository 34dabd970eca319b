package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	types "github.com/yungbote/marmora-backend/internal/domain"
	httpH "github.com/yungbote/marmora-backend/internal/http/handlers"
	httpMW "github.com/yungbote/marmora-backend/internal/http/middleware"
	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// MediaDir is served under MediaPrefix when uploads go to local disk.
	MediaDir    string
	MediaPrefix string
	Tracing     bool
	// TrustedProxies lists the proxy CIDRs/IPs whose X-Forwarded-For is
	// honoured. Empty means the socket peer is the client.
	TrustedProxies []string
	Metrics        *observability.Metrics

	Limiter          redis.Limiter
	AuthMiddleware   *httpMW.AuthMiddleware
	LocaleMiddleware *httpMW.LocaleMiddleware

	HealthHandler  *httpH.HealthHandler
	AuthHandler    *httpH.AuthHandler
	CatalogHandler *httpH.CatalogHandler
	BlogHandler    *httpH.BlogHandler
	QuoteHandler   *httpH.QuoteHandler
	ContactHandler *httpH.ContactHandler
	SiteHandler    *httpH.SiteHandler
	SEOHandler     *httpH.SEOHandler
	ContentHandler *httpH.ContentHandler
	MediaHandler   *httpH.MediaHandler
	HomeHandler    *httpH.HomeHandler
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	if cfg.Tracing {
		r.Use(httpMW.Tracing(cfg.ServiceName))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.LocaleMiddleware != nil {
		r.Use(cfg.LocaleMiddleware.Resolve())
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.SEOHandler != nil {
		r.GET("/sitemap.xml", cfg.SEOHandler.Sitemap)
	}
	if cfg.MediaDir != "" && cfg.MediaPrefix != "" {
		r.Static(cfg.MediaPrefix, cfg.MediaDir)
	}

	api := r.Group("/api")
	{
		if cfg.HomeHandler != nil {
			api.GET("/home", cfg.HomeHandler.Home)
		}
		if cfg.CatalogHandler != nil {
			api.GET("/products", cfg.CatalogHandler.ListProducts)
			api.GET("/products/:slug", cfg.CatalogHandler.GetProduct)
			api.GET("/categories", cfg.CatalogHandler.ListCategories)
		}
		if cfg.BlogHandler != nil {
			api.GET("/blog", cfg.BlogHandler.List)
			api.GET("/blog/:slug", cfg.BlogHandler.Get)
		}
		if cfg.QuoteHandler != nil {
			api.POST("/quotes/steps/:step/validate", cfg.QuoteHandler.ValidateStep)
			api.POST("/quotes", cfg.QuoteHandler.Submit)
		}
		if cfg.ContactHandler != nil {
			api.POST("/contact", cfg.ContactHandler.Submit)
		}
		if cfg.SiteHandler != nil {
			api.GET("/settings", cfg.SiteHandler.PublicSettings)
			api.GET("/theme.css", cfg.SiteHandler.ThemeCSS)
			api.GET("/integrations", cfg.SiteHandler.Integrations)
			api.GET("/whatsapp", cfg.SiteHandler.WhatsApp)
			api.GET("/locales", cfg.SiteHandler.Locales)
			api.GET("/i18n/:locale", cfg.SiteHandler.Dictionary)
		}
		if cfg.SEOHandler != nil {
			api.GET("/seo/:page", cfg.SEOHandler.Get)
			api.GET("/seo/:page/og.png", cfg.SEOHandler.OGImage)
		}

		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/login", httpMW.RateLimit(cfg.Log, cfg.Limiter, "login"), cfg.AuthHandler.Login)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r, nil
	}

	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	adminOnly := cfg.AuthMiddleware.RequireRole(string(types.RoleAdmin))
	{
		if cfg.AuthHandler != nil {
			admin.GET("/me", cfg.AuthHandler.Me)
			admin.POST("/auth/logout", cfg.AuthHandler.Logout)
		}
		if cfg.HomeHandler != nil {
			admin.GET("/stats", cfg.HomeHandler.Stats)
		}
		if cfg.Metrics != nil {
			admin.GET("/metrics", adminOnly, gin.WrapF(cfg.Metrics.WriteHTTP))
		}
		if cfg.CatalogHandler != nil {
			admin.GET("/products", cfg.CatalogHandler.AdminListProducts)
			admin.GET("/products/:id", cfg.CatalogHandler.AdminGetProduct)
			admin.POST("/products", cfg.CatalogHandler.CreateProduct)
			admin.PUT("/products/:id", cfg.CatalogHandler.UpdateProduct)
			admin.DELETE("/products/:id", cfg.CatalogHandler.DeleteProduct)

			admin.GET("/categories", cfg.CatalogHandler.AdminListCategories)
			admin.POST("/categories", cfg.CatalogHandler.CreateCategory)
			admin.PUT("/categories/:id", cfg.CatalogHandler.UpdateCategory)
			admin.DELETE("/categories/:id", cfg.CatalogHandler.DeleteCategory)
		}
		if cfg.BlogHandler != nil {
			admin.GET("/blog", cfg.BlogHandler.AdminList)
			admin.GET("/blog/:id", cfg.BlogHandler.AdminGet)
			admin.POST("/blog", cfg.BlogHandler.Create)
			admin.PUT("/blog/:id", cfg.BlogHandler.Update)
			admin.DELETE("/blog/:id", cfg.BlogHandler.Delete)
		}
		if cfg.QuoteHandler != nil {
			admin.GET("/quotes", cfg.QuoteHandler.List)
			admin.GET("/quotes/counts", cfg.QuoteHandler.Counts)
			admin.GET("/quotes/:id", cfg.QuoteHandler.Get)
			admin.PATCH("/quotes/:id/status", cfg.QuoteHandler.ChangeStatus)
			admin.DELETE("/quotes/:id", adminOnly, cfg.QuoteHandler.Delete)
		}
		if cfg.ContactHandler != nil {
			admin.GET("/contacts", cfg.ContactHandler.List)
			admin.PATCH("/contacts/:id/read", cfg.ContactHandler.MarkRead)
			admin.DELETE("/contacts/:id", cfg.ContactHandler.Delete)
		}
		if cfg.SiteHandler != nil {
			admin.GET("/settings", cfg.SiteHandler.AdminSettings)
			admin.PATCH("/settings", adminOnly, cfg.SiteHandler.UpdateSettings)
		}
		if cfg.SEOHandler != nil {
			admin.GET("/seo", cfg.SEOHandler.AdminList)
			admin.PUT("/seo", cfg.SEOHandler.Upsert)
			admin.DELETE("/seo/:page/:locale", cfg.SEOHandler.Delete)
		}
		if cfg.ContentHandler != nil {
			admin.GET("/content", cfg.ContentHandler.List)
			admin.PUT("/content", cfg.ContentHandler.Upsert)
			admin.DELETE("/content/:locale/:key", cfg.ContentHandler.Delete)
		}
		if cfg.MediaHandler != nil {
			admin.POST("/media", cfg.MediaHandler.Upload)
			admin.DELETE("/media", cfg.MediaHandler.Delete)
		}
	}

	return r, nil
}
