package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

// PageSEO is search metadata for one page in one locale.
type PageSEO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Page        string    `gorm:"not null;column:page;uniqueIndex:idx_page_seo_page_locale,priority:1" json:"page"`
	Locale      string    `gorm:"not null;column:locale;uniqueIndex:idx_page_seo_page_locale,priority:2" json:"locale"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Keywords    string    `gorm:"column:keywords" json:"keywords"`
	OGImage     string    `gorm:"column:og_image" json:"og_image"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PageSEO) TableName() string { return "page_seo" }

func (p *PageSEO) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&p.ID)
	return nil
}
