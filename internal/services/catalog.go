package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/data/repos"
	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

type CategoryView struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
}

type ProductView struct {
	ID            uuid.UUID     `json:"id"`
	Slug          string        `json:"slug"`
	SKU           string        `json:"sku"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Material      string        `json:"material"`
	MaterialLabel string        `json:"material_label"`
	Origin        string        `json:"origin"`
	Finishes      []string      `json:"finishes"`
	Thicknesses   []string      `json:"thicknesses"`
	Images        []string      `json:"images"`
	Featured      bool          `json:"featured"`
	Category      *CategoryView `json:"category,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ProductQuery struct {
	CategorySlug string
	Material     string
	Featured     *bool
	Query        string
	Page         Page
}

type ProductInput struct {
	Slug        string              `json:"slug"`
	SKU         string              `json:"sku"`
	CategoryID  *uuid.UUID          `json:"category_id"`
	Material    string              `json:"material"`
	Origin      string              `json:"origin"`
	Name        types.LocalizedText `json:"name"`
	Description types.LocalizedText `json:"description"`
	Finishes    []string            `json:"finishes"`
	Thicknesses []string            `json:"thicknesses"`
	Images      []string            `json:"images"`
	Featured    bool                `json:"featured"`
	Published   bool                `json:"published"`
	SortOrder   int                 `json:"sort_order"`
}

type CategoryInput struct {
	Slug        string              `json:"slug"`
	Name        types.LocalizedText `json:"name"`
	Description types.LocalizedText `json:"description"`
	ImageURL    string              `json:"image_url"`
	SortOrder   int                 `json:"sort_order"`
}

type AdminProductQuery struct {
	CategoryID *uuid.UUID
	Material   string
	Query      string
	Page       Page
}

type CatalogService interface {
	ListProducts(ctx context.Context, locale i18n.Locale, q ProductQuery) (*PageResult[ProductView], error)
	GetProduct(ctx context.Context, locale i18n.Locale, slug string) (*ProductView, error)
	ListCategories(ctx context.Context, locale i18n.Locale) ([]CategoryView, error)

	AdminListProducts(ctx context.Context, q AdminProductQuery) (*PageResult[*types.Product], error)
	AdminGetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*types.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	AdminListCategories(ctx context.Context) ([]*types.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*types.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*types.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	productRepo  repos.ProductRepo
	categoryRepo repos.CategoryRepo
	content      ContentService
	settings     SettingsService
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	productRepo repos.ProductRepo,
	categoryRepo repos.CategoryRepo,
	content ContentService,
	settings SettingsService,
) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{
		db:           db,
		log:          serviceLog,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		content:      content,
		settings:     settings,
	}
}

func (s *catalogService) fallback(ctx context.Context) string {
	return s.settings.DefaultLocale(ctx).String()
}

func (s *catalogService) ListProducts(ctx context.Context, locale i18n.Locale, q ProductQuery) (*PageResult[ProductView], error) {
	page := q.Page.Normalize()
	filter := repos.ProductFilter{
		Featured:      q.Featured,
		Query:         strings.TrimSpace(q.Query),
		PublishedOnly: true,
		Limit:         page.Limit,
		Offset:        page.Offset,
	}
	if m := strings.ToLower(strings.TrimSpace(q.Material)); m != "" {
		if !types.Material(m).Valid() {
			return nil, validation.Single("material", validation.CodeMaterial, nil)
		}
		filter.Material = types.Material(m)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if slug := strings.TrimSpace(q.CategorySlug); slug != "" {
		cat, err := s.categoryRepo.GetBySlug(dbc, slug)
		if err != nil {
			return nil, fmt.Errorf("load category: %w", err)
		}
		if cat == nil {
			r := newPageResult[ProductView](nil, 0, page)
			return &r, nil
		}
		filter.CategoryID = &cat.ID
	}

	rows, total, err := s.productRepo.List(dbc, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	fb := s.fallback(ctx)
	views := make([]ProductView, 0, len(rows))
	for _, p := range rows {
		views = append(views, s.productView(ctx, p, locale, fb))
	}
	r := newPageResult(views, total, page)
	return &r, nil
}

func (s *catalogService) GetProduct(ctx context.Context, locale i18n.Locale, slug string) (*ProductView, error) {
	p, err := s.productRepo.GetBySlug(dbctx.Context{Ctx: ctx}, strings.TrimSpace(slug))
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil || !p.Published {
		return nil, notFound("product")
	}
	v := s.productView(ctx, p, locale, s.fallback(ctx))
	return &v, nil
}

func (s *catalogService) ListCategories(ctx context.Context, locale i18n.Locale) ([]CategoryView, error) {
	rows, err := s.categoryRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	fb := s.fallback(ctx)
	out := make([]CategoryView, 0, len(rows))
	for _, c := range rows {
		out = append(out, categoryView(c, locale, fb))
	}
	return out, nil
}

func categoryView(c *types.Category, locale i18n.Locale, fallback string) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name.Data().Get(locale.String(), fallback),
		Description: c.Description.Data().Get(locale.String(), fallback),
		ImageURL:    c.ImageURL,
		SortOrder:   c.SortOrder,
	}
}

func (s *catalogService) productView(ctx context.Context, p *types.Product, locale i18n.Locale, fallback string) ProductView {
	v := ProductView{
		ID:            p.ID,
		Slug:          p.Slug,
		SKU:           p.SKU,
		Name:          p.Name.Data().Get(locale.String(), fallback),
		Description:   p.Description.Data().Get(locale.String(), fallback),
		Material:      string(p.Material),
		MaterialLabel: s.content.T(ctx, locale, "material."+string(p.Material), nil),
		Origin:        p.Origin,
		Finishes:      nonNil(p.Finishes),
		Thicknesses:   nonNil(p.Thicknesses),
		Images:        nonNil(p.Images),
		Featured:      p.Featured,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Category != nil {
		cv := categoryView(p.Category, locale, fallback)
		v.Category = &cv
	}
	return v
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func (s *catalogService) AdminListProducts(ctx context.Context, q AdminProductQuery) (*PageResult[*types.Product], error) {
	page := q.Page.Normalize()
	filter := repos.ProductFilter{
		CategoryID: q.CategoryID,
		Material:   types.Material(strings.ToLower(strings.TrimSpace(q.Material))),
		Query:      strings.TrimSpace(q.Query),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	rows, total, err := s.productRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	r := newPageResult(rows, total, page)
	return &r, nil
}

func (s *catalogService) AdminGetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	p, err := s.productRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, notFound("product")
	}
	return p, nil
}

func (s *catalogService) validateProduct(dbc dbctx.Context, in *ProductInput, excludeID uuid.UUID) error {
	in.Slug = strings.TrimSpace(in.Slug)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Material = strings.ToLower(strings.TrimSpace(in.Material))
	in.Origin = strings.TrimSpace(in.Origin)
	in.Name = in.Name.Clean()
	in.Description = in.Description.Clean()

	var verr validation.Errors
	verr.Slug("slug", in.Slug)
	verr.MaxLength("sku", in.SKU, 64)
	if !types.Material(in.Material).Valid() {
		verr.Add("material", validation.CodeMaterial, nil)
	}
	if !in.Name.Has(i18n.DefaultLocale.String()) {
		verr.Add("name."+i18n.DefaultLocale.String(), validation.CodeRequired, nil)
	}
	for loc := range in.Name {
		if !i18n.Locale(loc).Valid() {
			verr.Add("name."+loc, validation.CodeLocale, nil)
		}
	}
	for loc, v := range in.Name {
		verr.MaxLength("name."+loc, v, 200)
	}
	if err := verr.Err(); err != nil {
		return err
	}

	exists, err := s.productRepo.SlugExists(dbc, in.Slug, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return apierr.Conflict(CodeConflict, "slug %q already in use", in.Slug)
	}
	if in.CategoryID != nil {
		cat, err := s.categoryRepo.GetByID(dbc, *in.CategoryID)
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if cat == nil {
			return validation.Single("category_id", validation.CodeInvalid, nil)
		}
	}
	return nil
}

func applyProductInput(p *types.Product, in ProductInput) {
	p.Slug = in.Slug
	p.SKU = in.SKU
	p.CategoryID = in.CategoryID
	p.Material = types.Material(in.Material)
	p.Origin = in.Origin
	p.Name = types.NewLocalized(in.Name)
	p.Description = types.NewLocalized(in.Description)
	p.Finishes = datatypes.JSONSlice[string](cleanStrings(in.Finishes))
	p.Thicknesses = datatypes.JSONSlice[string](cleanStrings(in.Thicknesses))
	p.Images = datatypes.JSONSlice[string](cleanStrings(in.Images))
	p.Featured = in.Featured
	p.Published = in.Published
	p.SortOrder = in.SortOrder
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*types.Product, error) {
	var created *types.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.validateProduct(inner, &in, uuid.Nil); err != nil {
			return err
		}
		p := &types.Product{ID: uuid.New()}
		applyProductInput(p, in)
		if _, err := s.productRepo.Create(inner, []*types.Product{p}); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Product created", "product_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*types.Product, error) {
	var updated *types.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		p, err := s.productRepo.GetByID(inner, id)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if p == nil {
			return notFound("product")
		}
		if err := s.validateProduct(inner, &in, id); err != nil {
			return err
		}
		applyProductInput(p, in)
		p.Category = nil
		if err := s.productRepo.Update(inner, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	p, err := s.productRepo.GetByID(dbc, id)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return notFound("product")
	}
	if err := s.productRepo.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.Info("Product deleted", "product_id", id)
	return nil
}

func (s *catalogService) AdminListCategories(ctx context.Context) ([]*types.Category, error) {
	return s.categoryRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) validateCategory(dbc dbctx.Context, in *CategoryInput, excludeID uuid.UUID) error {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Name = in.Name.Clean()
	in.Description = in.Description.Clean()
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	var verr validation.Errors
	verr.Slug("slug", in.Slug)
	if !in.Name.Has(i18n.DefaultLocale.String()) {
		verr.Add("name."+i18n.DefaultLocale.String(), validation.CodeRequired, nil)
	}
	for loc := range in.Name {
		if !i18n.Locale(loc).Valid() {
			verr.Add("name."+loc, validation.CodeLocale, nil)
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}
	exists, err := s.categoryRepo.SlugExists(dbc, in.Slug, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return apierr.Conflict(CodeConflict, "slug %q already in use", in.Slug)
	}
	return nil
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*types.Category, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.validateCategory(dbc, &in, uuid.Nil); err != nil {
		return nil, err
	}
	c := &types.Category{
		ID:          uuid.New(),
		Slug:        in.Slug,
		Name:        types.NewLocalized(in.Name),
		Description: types.NewLocalized(in.Description),
		ImageURL:    in.ImageURL,
		SortOrder:   in.SortOrder,
	}
	if _, err := s.categoryRepo.Create(dbc, []*types.Category{c}); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*types.Category, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.categoryRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if c == nil {
		return nil, notFound("category")
	}
	if err := s.validateCategory(dbc, &in, id); err != nil {
		return nil, err
	}
	c.Slug = in.Slug
	c.Name = types.NewLocalized(in.Name)
	c.Description = types.NewLocalized(in.Description)
	c.ImageURL = in.ImageURL
	c.SortOrder = in.SortOrder
	if err := s.categoryRepo.Update(dbc, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory refuses while products still reference the category.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		c, err := s.categoryRepo.GetByID(inner, id)
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if c == nil {
			return notFound("category")
		}
		n, err := s.productRepo.CountByCategory(inner, id)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n > 0 {
			return apierr.Conflict(CodeHasProducts, "category %q still has %d products", c.Slug, n)
		}
		return s.categoryRepo.Delete(inner, id)
	})
}
