package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type Material string

const (
	MaterialMarble     Material = "marble"
	MaterialGranite    Material = "granite"
	MaterialOnyx       Material = "onyx"
	MaterialTravertine Material = "travertine"
	MaterialQuartzite  Material = "quartzite"
	MaterialLimestone  Material = "limestone"
)

var materials = []Material{
	MaterialMarble,
	MaterialGranite,
	MaterialOnyx,
	MaterialTravertine,
	MaterialQuartzite,
	MaterialLimestone,
}

func Materials() []Material {
	out := make([]Material, len(materials))
	copy(out, materials)
	return out
}

func (m Material) Valid() bool {
	for _, x := range materials {
		if x == m {
			return true
		}
	}
	return false
}

type Product struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string                      `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	SKU         string                      `gorm:"index;column:sku" json:"sku"`
	CategoryID  *uuid.UUID                  `gorm:"type:uuid;index;column:category_id" json:"category_id,omitempty"`
	Category    *Category                   `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Material    Material                    `gorm:"not null;index;column:material" json:"material"`
	Origin      string                      `gorm:"column:origin" json:"origin"`
	Name        shared.LocalizedColumn      `gorm:"column:name" json:"name"`
	Description shared.LocalizedColumn      `gorm:"column:description" json:"description"`
	Finishes    datatypes.JSONSlice[string] `gorm:"column:finishes" json:"finishes"`
	Thicknesses datatypes.JSONSlice[string] `gorm:"column:thicknesses" json:"thicknesses"`
	Images      datatypes.JSONSlice[string] `gorm:"column:images" json:"images"`
	Featured    bool                        `gorm:"not null;default:false;index;column:featured" json:"featured"`
	Published   bool                        `gorm:"not null;default:false;index;column:published" json:"published"`
	SortOrder   int                         `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	SearchText  string                      `gorm:"column:search_text" json:"-"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&p.ID)
	return nil
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.SearchText = p.BuildSearchText()
	return nil
}

// BuildSearchText lowercases slug, SKU and every translated name into one
// newline separated string so text search never sees JSON keys or syntax.
func (p *Product) BuildSearchText() string {
	names := p.Name.Data()
	locales := make([]string, 0, len(names))
	for k := range names {
		locales = append(locales, k)
	}
	sort.Strings(locales)
	parts := []string{p.Slug, p.SKU}
	for _, l := range locales {
		parts = append(parts, names[l])
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
