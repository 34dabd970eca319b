// Package seed loads demo catalog, blog and SEO rows from YAML.
package seed

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

//go:embed seed.yaml
var seedFS embed.FS

type File struct {
	Version    int            `yaml:"version"`
	Categories []CategorySeed `yaml:"categories"`
	Products   []ProductSeed  `yaml:"products"`
	Posts      []PostSeed     `yaml:"posts"`
	SEO        []SEOSeed      `yaml:"seo"`
}

type CategorySeed struct {
	Slug        string              `yaml:"slug"`
	SortOrder   int                 `yaml:"sort_order"`
	Name        types.LocalizedText `yaml:"name"`
	Description types.LocalizedText `yaml:"description"`
	ImageURL    string              `yaml:"image_url"`
}

type ProductSeed struct {
	Slug        string              `yaml:"slug"`
	SKU         string              `yaml:"sku"`
	Category    string              `yaml:"category"`
	Material    string              `yaml:"material"`
	Origin      string              `yaml:"origin"`
	Featured    bool                `yaml:"featured"`
	Published   bool                `yaml:"published"`
	SortOrder   int                 `yaml:"sort_order"`
	Finishes    []string            `yaml:"finishes"`
	Thicknesses []string            `yaml:"thicknesses"`
	Images      []string            `yaml:"images"`
	Name        types.LocalizedText `yaml:"name"`
	Description types.LocalizedText `yaml:"description"`
}

type PostSeed struct {
	Slug        string              `yaml:"slug"`
	Published   bool                `yaml:"published"`
	PublishedAt *time.Time          `yaml:"published_at"`
	Tags        []string            `yaml:"tags"`
	CoverImage  string              `yaml:"cover_image"`
	Title       types.LocalizedText `yaml:"title"`
	Excerpt     types.LocalizedText `yaml:"excerpt"`
	Body        types.LocalizedText `yaml:"body"`
}

type SEOSeed struct {
	Page        string `yaml:"page"`
	Locale      string `yaml:"locale"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Keywords    string `yaml:"keywords"`
	OGImage     string `yaml:"og_image"`
}

// Result counts rows inserted; existing slugs and pages are skipped.
type Result struct {
	Categories int
	Products   int
	Posts      int
	SEO        int
}

// Load reads path, or the embedded seed when path is empty.
func Load(path string) (*File, error) {
	var (
		raw []byte
		err error
	)
	if strings.TrimSpace(path) != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = seedFS.ReadFile("seed.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported seed version %d", f.Version)
	}
	for _, p := range f.Products {
		if !types.Material(p.Material).Valid() {
			return nil, fmt.Errorf("product %s: unknown material %q", p.Slug, p.Material)
		}
	}
	return &f, nil
}

type Seeder struct {
	db           *gorm.DB
	log          *logger.Logger
	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
	blogRepo     repos.BlogPostRepo
	seoRepo      repos.PageSEORepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger) *Seeder {
	return &Seeder{
		db:           db,
		log:          log.With("component", "Seeder"),
		categoryRepo: repos.NewCategoryRepo(db, log),
		productRepo:  repos.NewProductRepo(db, log),
		blogRepo:     repos.NewBlogPostRepo(db, log),
		seoRepo:      repos.NewPageSEORepo(db, log),
	}
}

// Apply inserts everything in one transaction. Running it twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		categoryIDs := map[string]uuid.UUID{}
		for _, c := range f.Categories {
			existing, err := s.categoryRepo.GetBySlug(dbc, c.Slug)
			if err != nil {
				return fmt.Errorf("category %s: %w", c.Slug, err)
			}
			if existing != nil {
				categoryIDs[c.Slug] = existing.ID
				continue
			}
			rows, err := s.categoryRepo.Create(dbc, []*types.Category{{
				Slug:        c.Slug,
				Name:        types.NewLocalized(c.Name),
				Description: types.NewLocalized(c.Description),
				ImageURL:    c.ImageURL,
				SortOrder:   c.SortOrder,
			}})
			if err != nil {
				return fmt.Errorf("create category %s: %w", c.Slug, err)
			}
			categoryIDs[c.Slug] = rows[0].ID
			res.Categories++
		}

		for _, p := range f.Products {
			existing, err := s.productRepo.GetBySlug(dbc, p.Slug)
			if err != nil {
				return fmt.Errorf("product %s: %w", p.Slug, err)
			}
			if existing != nil {
				continue
			}
			var categoryID *uuid.UUID
			if id, ok := categoryIDs[p.Category]; ok {
				categoryID = &id
			} else if p.Category != "" {
				return fmt.Errorf("product %s: unknown category %q", p.Slug, p.Category)
			}
			if _, err := s.productRepo.Create(dbc, []*types.Product{{
				Slug:        p.Slug,
				SKU:         p.SKU,
				CategoryID:  categoryID,
				Material:    types.Material(p.Material),
				Origin:      p.Origin,
				Name:        types.NewLocalized(p.Name),
				Description: types.NewLocalized(p.Description),
				Finishes:    datatypes.JSONSlice[string](nonNil(p.Finishes)),
				Thicknesses: datatypes.JSONSlice[string](nonNil(p.Thicknesses)),
				Images:      datatypes.JSONSlice[string](nonNil(p.Images)),
				Featured:    p.Featured,
				Published:   p.Published,
				SortOrder:   p.SortOrder,
			}}); err != nil {
				return fmt.Errorf("create product %s: %w", p.Slug, err)
			}
			res.Products++
		}

		for _, p := range f.Posts {
			existing, err := s.blogRepo.GetBySlug(dbc, p.Slug)
			if err != nil {
				return fmt.Errorf("post %s: %w", p.Slug, err)
			}
			if existing != nil {
				continue
			}
			publishedAt := p.PublishedAt
			if p.Published && publishedAt == nil {
				now := time.Now().UTC()
				publishedAt = &now
			}
			if _, err := s.blogRepo.Create(dbc, []*types.BlogPost{{
				Slug:        p.Slug,
				Title:       types.NewLocalized(p.Title),
				Excerpt:     types.NewLocalized(p.Excerpt),
				Body:        types.NewLocalized(p.Body),
				CoverImage:  p.CoverImage,
				Tags:        datatypes.JSONSlice[string](nonNil(p.Tags)),
				Published:   p.Published,
				PublishedAt: publishedAt,
			}}); err != nil {
				return fmt.Errorf("create post %s: %w", p.Slug, err)
			}
			res.Posts++
		}

		for _, m := range f.SEO {
			existing, err := s.seoRepo.Get(dbc, m.Page, m.Locale)
			if err != nil {
				return fmt.Errorf("seo %s/%s: %w", m.Page, m.Locale, err)
			}
			if existing != nil {
				continue
			}
			if _, err := s.seoRepo.Upsert(dbc, &types.PageSEO{
				Page:        m.Page,
				Locale:      m.Locale,
				Title:       m.Title,
				Description: m.Description,
				Keywords:    m.Keywords,
				OGImage:     m.OGImage,
			}); err != nil {
				return fmt.Errorf("create seo %s/%s: %w", m.Page, m.Locale, err)
			}
			res.SEO++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Seed applied", "categories", res.Categories, "products", res.Products, "posts", res.Posts, "seo", res.SEO)
	return res, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
