package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type AdminUserRepo interface {
	Create(dbc dbctx.Context, users []*types.AdminUser) ([]*types.AdminUser, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.AdminUser, error)
	GetByEmails(dbc dbctx.Context, emails []string) ([]*types.AdminUser, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	List(dbc dbctx.Context) ([]*types.AdminUser, error)
	UpdateLastLogin(dbc dbctx.Context, userID uuid.UUID, at time.Time) error
	UpdatePassword(dbc dbctx.Context, userID uuid.UUID, passwordHash string) error
}

type adminUserRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdminUserRepo(db *gorm.DB, baseLog *logger.Logger) AdminUserRepo {
	repoLog := baseLog.With("repo", "AdminUserRepo")
	return &adminUserRepo{db: db, log: repoLog}
}

func (r *adminUserRepo) Create(dbc dbctx.Context, users []*types.AdminUser) ([]*types.AdminUser, error) {
	if len(users) == 0 {
		return []*types.AdminUser{}, nil
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *adminUserRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.AdminUser, error) {
	var results []*types.AdminUser
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *adminUserRepo) GetByEmails(dbc dbctx.Context, emails []string) ([]*types.AdminUser, error) {
	var results []*types.AdminUser
	if len(emails) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *adminUserRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.AdminUser{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *adminUserRepo) List(dbc dbctx.Context) ([]*types.AdminUser, error) {
	var results []*types.AdminUser
	if err := dbc.DB(r.db).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *adminUserRepo) UpdateLastLogin(dbc dbctx.Context, userID uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).
		Model(&types.AdminUser{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}

func (r *adminUserRepo) UpdatePassword(dbc dbctx.Context, userID uuid.UUID, passwordHash string) error {
	return dbc.DB(r.db).
		Model(&types.AdminUser{}).
		Where("id = ?", userID).
		Update("password", passwordHash).Error
}
