package content

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type PageSEORepo interface {
	Upsert(dbc dbctx.Context, row *types.PageSEO) (*types.PageSEO, error)
	Get(dbc dbctx.Context, page, locale string) (*types.PageSEO, error)
	List(dbc dbctx.Context, page string) ([]*types.PageSEO, error)
	Delete(dbc dbctx.Context, page, locale string) (bool, error)
}

type pageSEORepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageSEORepo(db *gorm.DB, baseLog *logger.Logger) PageSEORepo {
	repoLog := baseLog.With("repo", "PageSEORepo")
	return &pageSEORepo{db: db, log: repoLog}
}

// Upsert writes one row per (page, locale); later writes replace the metadata.
func (r *pageSEORepo) Upsert(dbc dbctx.Context, row *types.PageSEO) (*types.PageSEO, error) {
	if row == nil {
		return nil, errors.New("page seo row required")
	}
	db := dbc.DB(r.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page"}, {Name: "locale"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "keywords", "og_image", "updated_at"}),
	}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, row.Page, row.Locale)
}

func (r *pageSEORepo) Get(dbc dbctx.Context, page, locale string) (*types.PageSEO, error) {
	var row types.PageSEO
	err := dbc.DB(r.db).Where("page = ? AND locale = ?", page, locale).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *pageSEORepo) List(dbc dbctx.Context, page string) ([]*types.PageSEO, error) {
	q := dbc.DB(r.db).Model(&types.PageSEO{})
	if page != "" {
		q = q.Where("page = ?", page)
	}
	var out []*types.PageSEO
	if err := q.Order("page ASC").Order("locale ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageSEORepo) Delete(dbc dbctx.Context, page, locale string) (bool, error) {
	res := dbc.DB(r.db).Where("page = ? AND locale = ?", page, locale).Delete(&types.PageSEO{})
	return res.RowsAffected > 0, res.Error
}

