package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, categories []*types.Category) ([]*types.Category, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)
	SlugExists(dbc dbctx.Context, slug string, excludeID uuid.UUID) (bool, error)
	Update(dbc dbctx.Context, category *types.Category) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	repoLog := baseLog.With("repo", "CategoryRepo")
	return &categoryRepo{db: db, log: repoLog}
}

func (r *categoryRepo) Create(dbc dbctx.Context, categories []*types.Category) ([]*types.Category, error) {
	if len(categories) == 0 {
		return []*types.Category{}, nil
	}
	if err := dbc.DB(r.db).Create(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID returns (nil, nil) when the category does not exist.
func (r *categoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Category, error) {
	var c types.Category
	err := dbc.DB(r.db).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error) {
	var c types.Category
	err := dbc.DB(r.db).Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	var out []*types.Category
	if err := dbc.DB(r.db).
		Order("sort_order ASC").
		Order("slug ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) SlugExists(dbc dbctx.Context, slug string, excludeID uuid.UUID) (bool, error) {
	q := dbc.DB(r.db).Model(&types.Category{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepo) Update(dbc dbctx.Context, category *types.Category) error {
	if category == nil || category.ID == uuid.Nil {
		return errors.New("category id required")
	}
	return dbc.DB(r.db).
		Omit(clause.Associations, "created_at").
		Save(category).Error
}

func (r *categoryRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Category{}).Error
}
