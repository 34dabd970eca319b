package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/mailer"
	"github.com/yungbote/marmora-backend/internal/services"
)

type Services struct {
	// Core
	Settings services.SettingsService
	Content  services.ContentService
	Media    services.MediaService

	// Storefront
	Catalog      services.CatalogService
	Blog         services.BlogService
	Home         services.HomeService
	Theme        services.ThemeService
	Integrations services.IntegrationsService
	WhatsApp     services.WhatsAppService
	SEO          services.SEOService

	// Forms + notifications
	Guard    services.FormGuard
	Notifier services.Notifier
	Quotes   services.QuoteService
	Contacts services.ContactService

	// Admin
	Auth  services.AuthService
	Stats services.StatsService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	translator, err := i18n.NewTranslator(i18n.DefaultLocale, log)
	if err != nil {
		return Services{}, fmt.Errorf("init translator: %w", err)
	}

	settings := services.NewSettingsService(db, log, repos.SiteSettings, clients.Cache, clients.Bus)
	content := services.NewContentService(db, log, translator, repos.ContentBlock, settings, clients.Bus)
	media := services.NewMediaService(log, clients.Storage.Store, cfg.MaxUploadBytes)

	catalog := services.NewCatalogService(db, log, repos.Product, repos.Category, content, settings)
	blog := services.NewBlogService(db, log, repos.BlogPost, settings)

	renderer, err := services.NewOGRenderer(cfg.OGFontPath)
	if err != nil {
		return Services{}, fmt.Errorf("init og renderer: %w", err)
	}
	seo := services.NewSEOService(db, log, repos.PageSEO, repos.Product, repos.BlogPost, settings, content, media, renderer, cfg.SiteURL)

	guard := services.NewFormGuard(log, clients.FormLimiter, clients.Recaptcha, settings, metrics)
	notifier := services.NewEmailNotifier(log, settings, content, func(mc mailer.Config) (mailer.Client, error) {
		return mailer.New(log, mc)
	}, cfg.MailQueueSize, cfg.MailWorkers, metrics)
	quotes := services.NewQuoteService(db, log, repos.QuoteRequest, repos.Product, guard, notifier, settings)
	contacts := services.NewContactService(db, log, repos.ContactMessage, guard, notifier, settings)

	auth := services.NewAuthService(db, log, repos.AdminUser, repos.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return Services{
		Settings:     settings,
		Content:      content,
		Media:        media,
		Catalog:      catalog,
		Blog:         blog,
		Home:         services.NewHomeService(catalog, blog, settings),
		Theme:        services.NewThemeService(settings),
		Integrations: services.NewIntegrationsService(settings, content),
		WhatsApp:     services.NewWhatsAppService(settings, content),
		SEO:          seo,
		Guard:        guard,
		Notifier:     notifier,
		Quotes:       quotes,
		Contacts:     contacts,
		Auth:         auth,
		Stats:        services.NewStatsService(repos.Product, quotes, contacts),
	}, nil
}
