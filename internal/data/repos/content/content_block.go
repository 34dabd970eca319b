package content

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type ContentBlockRepo interface {
	Upsert(dbc dbctx.Context, block *types.ContentBlock) (*types.ContentBlock, error)
	Get(dbc dbctx.Context, locale, key string) (*types.ContentBlock, error)
	ListByLocale(dbc dbctx.Context, locale, keyPrefix string) ([]*types.ContentBlock, error)
	Delete(dbc dbctx.Context, locale, key string) (bool, error)
}

type contentBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	repoLog := baseLog.With("repo", "ContentBlockRepo")
	return &contentBlockRepo{db: db, log: repoLog}
}

func (r *contentBlockRepo) Upsert(dbc dbctx.Context, block *types.ContentBlock) (*types.ContentBlock, error) {
	if block == nil {
		return nil, errors.New("content block required")
	}
	if err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "locale"}, {Name: "content_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_value", "updated_by", "updated_at"}),
	}).Create(block).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, block.Locale, block.Key)
}

func (r *contentBlockRepo) Get(dbc dbctx.Context, locale, key string) (*types.ContentBlock, error) {
	var b types.ContentBlock
	err := dbc.DB(r.db).Where("locale = ? AND content_key = ?", locale, key).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByLocale returns every block for locale, or every locale when locale is empty.
func (r *contentBlockRepo) ListByLocale(dbc dbctx.Context, locale, keyPrefix string) ([]*types.ContentBlock, error) {
	q := dbc.DB(r.db).Model(&types.ContentBlock{})
	if locale != "" {
		q = q.Where("locale = ?", locale)
	}
	if keyPrefix != "" {
		q = q.Where("content_key LIKE ?", keyPrefix+"%")
	}
	var out []*types.ContentBlock
	if err := q.Order("locale ASC").Order("content_key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	if keyPrefix == "" {
		return out, nil
	}
	// LIKE treats "_" as a wildcard; keep exact prefix matches only.
	filtered := out[:0]
	for _, b := range out {
		if strings.HasPrefix(b.Key, keyPrefix) {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (r *contentBlockRepo) Delete(dbc dbctx.Context, locale, key string) (bool, error) {
	res := dbc.DB(r.db).Where("locale = ? AND content_key = ?", locale, key).Delete(&types.ContentBlock{})
	return res.RowsAffected > 0, res.Error
}
