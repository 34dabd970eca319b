package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos/auth"
	"github.com/yungbote/marmora-backend/internal/data/repos/catalog"
	"github.com/yungbote/marmora-backend/internal/data/repos/content"
	"github.com/yungbote/marmora-backend/internal/data/repos/inquiry"
	"github.com/yungbote/marmora-backend/internal/data/repos/settings"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type AdminUserRepo = auth.AdminUserRepo
type UserTokenRepo = auth.UserTokenRepo

type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter

type QuoteRequestRepo = inquiry.QuoteRequestRepo
type QuoteFilter = inquiry.QuoteFilter
type ContactMessageRepo = inquiry.ContactMessageRepo
type ContactFilter = inquiry.ContactFilter

type BlogPostRepo = content.BlogPostRepo
type BlogFilter = content.BlogFilter
type PageSEORepo = content.PageSEORepo
type ContentBlockRepo = content.ContentBlockRepo

type SiteSettingsRepo = settings.SiteSettingsRepo

func NewAdminUserRepo(db *gorm.DB, baseLog *logger.Logger) AdminUserRepo {
	return auth.NewAdminUserRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewQuoteRequestRepo(db *gorm.DB, baseLog *logger.Logger) QuoteRequestRepo {
	return inquiry.NewQuoteRequestRepo(db, baseLog)
}
func NewContactMessageRepo(db *gorm.DB, baseLog *logger.Logger) ContactMessageRepo {
	return inquiry.NewContactMessageRepo(db, baseLog)
}

func NewBlogPostRepo(db *gorm.DB, baseLog *logger.Logger) BlogPostRepo {
	return content.NewBlogPostRepo(db, baseLog)
}
func NewPageSEORepo(db *gorm.DB, baseLog *logger.Logger) PageSEORepo {
	return content.NewPageSEORepo(db, baseLog)
}
func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	return content.NewContentBlockRepo(db, baseLog)
}

func NewSiteSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SiteSettingsRepo {
	return settings.NewSiteSettingsRepo(db, baseLog)
}
