package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

// ContentBlock overrides one dictionary string for one locale.
type ContentBlock struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Locale    string     `gorm:"not null;column:locale;uniqueIndex:idx_content_block_locale_key,priority:1" json:"locale"`
	Key       string     `gorm:"not null;column:content_key;uniqueIndex:idx_content_block_locale_key,priority:2" json:"key"`
	Value     string     `gorm:"not null;column:content_value" json:"value"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid;column:updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ContentBlock) TableName() string { return "content_block" }

func (b *ContentBlock) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&b.ID)
	return nil
}
