package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type BlogPost struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string                      `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Title       shared.LocalizedColumn      `gorm:"column:title" json:"title"`
	Excerpt     shared.LocalizedColumn      `gorm:"column:excerpt" json:"excerpt"`
	Body        shared.LocalizedColumn      `gorm:"column:body" json:"body"`
	CoverImage  string                      `gorm:"column:cover_image" json:"cover_image"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Published   bool                        `gorm:"not null;default:false;index;column:published" json:"published"`
	PublishedAt *time.Time                  `gorm:"index;column:published_at" json:"published_at,omitempty"`
	AuthorID    *uuid.UUID                  `gorm:"type:uuid;column:author_id" json:"author_id,omitempty"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlogPost) TableName() string { return "blog_post" }

func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&p.ID)
	return nil
}
