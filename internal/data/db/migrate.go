package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/marmora-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Admin identity + auth
		&types.AdminUser{},
		&types.UserToken{},

		// Catalog
		&types.Category{},
		&types.Product{},

		// Inquiries
		&types.QuoteRequest{},
		&types.QuoteStatusChange{},
		&types.ContactMessage{},

		// Content
		&types.BlogPost{},
		&types.PageSEO{},
		&types.ContentBlock{},

		// Settings
		&types.SiteSettings{},
	); err != nil {
		return err
	}
	return backfillProductSearchText(db)
}

// backfillProductSearchText fills search_text for rows written before the
// column existed.
func backfillProductSearchText(db *gorm.DB) error {
	var batch []*types.Product
	res := db.Where("search_text IS NULL OR search_text = ''").
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for _, p := range batch {
				if err := tx.Model(p).UpdateColumn("search_text", p.BuildSearchText()).Error; err != nil {
					return err
				}
			}
			return nil
		})
	if res.Error != nil {
		return fmt.Errorf("backfill product search text: %w", res.Error)
	}
	return nil
}
