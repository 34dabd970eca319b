package domain

import (
	"github.com/yungbote/marmora-backend/internal/domain/auth"
	"github.com/yungbote/marmora-backend/internal/domain/catalog"
	"github.com/yungbote/marmora-backend/internal/domain/content"
	"github.com/yungbote/marmora-backend/internal/domain/inquiry"
	"github.com/yungbote/marmora-backend/internal/domain/settings"
	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type (
	LocalizedText   = shared.LocalizedText
	LocalizedColumn = shared.LocalizedColumn

	AdminUser = auth.AdminUser
	Role      = auth.Role
	UserToken = auth.UserToken

	Category = catalog.Category
	Product  = catalog.Product
	Material = catalog.Material

	QuoteRequest      = inquiry.QuoteRequest
	QuoteStatus       = inquiry.QuoteStatus
	QuoteStatusChange = inquiry.QuoteStatusChange
	QuoteItem         = inquiry.QuoteItem
	QuoteUnit         = inquiry.QuoteUnit
	ContactMessage    = inquiry.ContactMessage

	BlogPost     = content.BlogPost
	PageSEO      = content.PageSEO
	ContentBlock = content.ContentBlock

	SiteSettings = settings.SiteSettings
)

const (
	RoleAdmin  = auth.RoleAdmin
	RoleEditor = auth.RoleEditor

	QuoteStatusPending   = inquiry.QuoteStatusPending
	QuoteStatusReviewed  = inquiry.QuoteStatusReviewed
	QuoteStatusQuoted    = inquiry.QuoteStatusQuoted
	QuoteStatusAccepted  = inquiry.QuoteStatusAccepted
	QuoteStatusCompleted = inquiry.QuoteStatusCompleted
	QuoteStatusCancelled = inquiry.QuoteStatusCancelled

	SettingsSingleton = settings.SingletonID
)

var (
	NewLocalized    = shared.NewLocalized
	QuoteStatuses   = inquiry.QuoteStatuses
	Materials       = catalog.Materials
	DefaultSettings = settings.Defaults
)
