package inquiry

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type QuoteFilter struct {
	Status types.QuoteStatus
	Query  string
	Limit  int
	Offset int
}

type QuoteRequestRepo interface {
	Create(dbc dbctx.Context, quotes []*types.QuoteRequest) ([]*types.QuoteRequest, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuoteRequest, error)
	GetByReference(dbc dbctx.Context, reference string) (*types.QuoteRequest, error)
	List(dbc dbctx.Context, f QuoteFilter) ([]*types.QuoteRequest, int64, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, from, to types.QuoteStatus, adminNote *string) (bool, error)
	AppendHistory(dbc dbctx.Context, change *types.QuoteStatusChange) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	CountByStatus(dbc dbctx.Context) (map[types.QuoteStatus]int64, error)
}

type quoteRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuoteRequestRepo(db *gorm.DB, baseLog *logger.Logger) QuoteRequestRepo {
	repoLog := baseLog.With("repo", "QuoteRequestRepo")
	return &quoteRequestRepo{db: db, log: repoLog}
}

func (r *quoteRequestRepo) Create(dbc dbctx.Context, quotes []*types.QuoteRequest) ([]*types.QuoteRequest, error) {
	if len(quotes) == 0 {
		return []*types.QuoteRequest{}, nil
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *quoteRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuoteRequest, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *quoteRequestRepo) GetByReference(dbc dbctx.Context, reference string) (*types.QuoteRequest, error) {
	return r.first(dbc, "reference = ?", reference)
}

func (r *quoteRequestRepo) first(dbc dbctx.Context, where string, arg any) (*types.QuoteRequest, error) {
	var q types.QuoteRequest
	err := dbc.DB(r.db).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where(where, arg).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quoteRequestRepo) List(dbc dbctx.Context, f QuoteFilter) ([]*types.QuoteRequest, int64, error) {
	q := dbc.DB(r.db).Model(&types.QuoteRequest{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("reference LIKE ? OR full_name LIKE ? OR email LIKE ? OR company LIKE ?", like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.QuoteRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus moves a quote from one status to another. It reports false when
// the stored status no longer equals from, which lets callers detect a
// concurrent change without a row lock.
func (r *quoteRequestRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, from, to types.QuoteStatus, adminNote *string) (bool, error) {
	updates := map[string]any{"status": to}
	if adminNote != nil {
		updates["admin_note"] = *adminNote
	}
	res := dbc.DB(r.db).
		Model(&types.QuoteRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *quoteRequestRepo) AppendHistory(dbc dbctx.Context, change *types.QuoteStatusChange) error {
	if change == nil {
		return nil
	}
	return dbc.DB(r.db).Create(change).Error
}

func (r *quoteRequestRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	db := dbc.DB(r.db)
	if err := db.Where("quote_request_id = ?", id).Delete(&types.QuoteStatusChange{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&types.QuoteRequest{}).Error
}

func (r *quoteRequestRepo) CountByStatus(dbc dbctx.Context) (map[types.QuoteStatus]int64, error) {
	type row struct {
		Status types.QuoteStatus
		N      int64
	}
	var rows []row
	if err := dbc.DB(r.db).
		Model(&types.QuoteRequest{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[types.QuoteStatus]int64, len(types.QuoteStatuses()))
	for _, s := range types.QuoteStatuses() {
		out[s] = 0
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
