package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type Category struct {
	ID          uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string                 `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Name        shared.LocalizedColumn `gorm:"column:name" json:"name"`
	Description shared.LocalizedColumn `gorm:"column:description" json:"description"`
	ImageURL    string                 `gorm:"column:image_url" json:"image_url"`
	SortOrder   int                    `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt   time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&c.ID)
	return nil
}
