package catalog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

// ProductFilter narrows List. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID    *uuid.UUID
	Material      types.Material
	Featured      *bool
	Query         string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Product, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	List(dbc dbctx.Context, f ProductFilter) ([]*types.Product, int64, error)
	SlugExists(dbc dbctx.Context, slug string, excludeID uuid.UUID) (bool, error)
	CountByCategory(dbc dbctx.Context, categoryID uuid.UUID) (int64, error)
	Count(dbc dbctx.Context, publishedOnly bool) (int64, error)
	Update(dbc dbctx.Context, product *types.Product) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *productRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Product, error) {
	return r.first(dbc, "slug = ?", slug)
}

func (r *productRepo) first(dbc dbctx.Context, where string, arg any) (*types.Product, error) {
	var p types.Product
	err := dbc.DB(r.db).Preload("Category").Where(where, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) List(dbc dbctx.Context, f ProductFilter) ([]*types.Product, int64, error) {
	q := dbc.DB(r.db).Model(&types.Product{})
	if f.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Material != "" {
		q = q.Where("material = ?", f.Material)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		q = q.Where(`search_text LIKE ? ESCAPE '\'`, dbctx.ContainsPattern(s))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Category").
		Order("sort_order ASC").
		Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *productRepo) SlugExists(dbc dbctx.Context, slug string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepo) CountByCategory(dbc dbctx.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) Count(dbc dbctx.Context, publishedOnly bool) (int64, error) {
	q := dbc.DB(r.db).Model(&types.Product{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *productRepo) Update(dbc dbctx.Context, product *types.Product) error {
	if product == nil || product.ID == uuid.Nil {
		return errors.New("product id required")
	}
	return dbc.DB(r.db).
		Omit(clause.Associations, "created_at").
		Save(product).Error
}

func (r *productRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Product{}).Error
}
