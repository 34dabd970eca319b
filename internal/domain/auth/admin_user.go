package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleEditor }

type AdminUser struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string     `gorm:"not null;column:password" json:"-"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	Role        Role       `gorm:"not null;column:role" json:"role"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_user" }

func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&u.ID)
	return nil
}
