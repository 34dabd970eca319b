package inquiry

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type ContactFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

type ContactMessageRepo interface {
	Create(dbc dbctx.Context, msgs []*types.ContactMessage) ([]*types.ContactMessage, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ContactMessage, error)
	List(dbc dbctx.Context, f ContactFilter) ([]*types.ContactMessage, int64, error)
	MarkRead(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
	CountUnread(dbc dbctx.Context) (int64, error)
}

type contactMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactMessageRepo(db *gorm.DB, baseLog *logger.Logger) ContactMessageRepo {
	repoLog := baseLog.With("repo", "ContactMessageRepo")
	return &contactMessageRepo{db: db, log: repoLog}
}

func (r *contactMessageRepo) Create(dbc dbctx.Context, msgs []*types.ContactMessage) ([]*types.ContactMessage, error) {
	if len(msgs) == 0 {
		return []*types.ContactMessage{}, nil
	}
	if err := dbc.DB(r.db).Create(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *contactMessageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ContactMessage, error) {
	var m types.ContactMessage
	err := dbc.DB(r.db).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *contactMessageRepo) List(dbc dbctx.Context, f ContactFilter) ([]*types.ContactMessage, int64, error) {
	q := dbc.DB(r.db).Model(&types.ContactMessage{})
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.ContactMessage
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkRead is idempotent; read_at keeps the first timestamp.
func (r *contactMessageRepo) MarkRead(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	db := dbc.DB(r.db)
	var count int64
	if err := db.Model(&types.ContactMessage{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	err := db.Model(&types.ContactMessage{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": at}).Error
	return err == nil, err
}

func (r *contactMessageRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.ContactMessage{})
	return res.RowsAffected > 0, res.Error
}

func (r *contactMessageRepo) CountUnread(dbc dbctx.Context) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.ContactMessage{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}
