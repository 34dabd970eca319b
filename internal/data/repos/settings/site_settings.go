package settings

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marmora-backend/internal/domain"
	"github.com/yungbote/marmora-backend/internal/platform/dbctx"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

type SiteSettingsRepo interface {
	// Get returns the singleton row, inserting defaults on first read.
	Get(dbc dbctx.Context) (*types.SiteSettings, error)
	Save(dbc dbctx.Context, s *types.SiteSettings) error
}

type siteSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSiteSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SiteSettingsRepo {
	repoLog := baseLog.With("repo", "SiteSettingsRepo")
	return &siteSettingsRepo{db: db, log: repoLog}
}

func (r *siteSettingsRepo) Get(dbc dbctx.Context) (*types.SiteSettings, error) {
	db := dbc.DB(r.db)
	var s types.SiteSettings
	err := db.Where("id = ?", types.SettingsSingleton).First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def := types.DefaultSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(def).Error; err != nil {
		return nil, err
	}
	// a concurrent first read may have won the insert
	if err := db.Where("id = ?", types.SettingsSingleton).First(&s).Error; err != nil {
		return nil, err
	}
	r.log.Info("Initialized site settings with defaults")
	return &s, nil
}

func (r *siteSettingsRepo) Save(dbc dbctx.Context, s *types.SiteSettings) error {
	if s == nil {
		return errors.New("settings required")
	}
	s.ID = types.SettingsSingleton
	return dbc.DB(r.db).Save(s).Error
}
