package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type Repos struct {
	AdminUser      repos.AdminUserRepo
	UserToken      repos.UserTokenRepo
	Category       repos.CategoryRepo
	Product        repos.ProductRepo
	QuoteRequest   repos.QuoteRequestRepo
	ContactMessage repos.ContactMessageRepo
	BlogPost       repos.BlogPostRepo
	PageSEO        repos.PageSEORepo
	ContentBlock   repos.ContentBlockRepo
	SiteSettings   repos.SiteSettingsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		AdminUser:      repos.NewAdminUserRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Category:       repos.NewCategoryRepo(db, log),
		Product:        repos.NewProductRepo(db, log),
		QuoteRequest:   repos.NewQuoteRequestRepo(db, log),
		ContactMessage: repos.NewContactMessageRepo(db, log),
		BlogPost:       repos.NewBlogPostRepo(db, log),
		PageSEO:        repos.NewPageSEORepo(db, log),
		ContentBlock:   repos.NewContentBlockRepo(db, log),
		SiteSettings:   repos.NewSiteSettingsRepo(db, log),
	}
}
