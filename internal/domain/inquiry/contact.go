package inquiry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type ContactMessage struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null;column:name" json:"name"`
	Email     string     `gorm:"not null;index;column:email" json:"email"`
	Phone     string     `gorm:"column:phone" json:"phone"`
	Subject   string     `gorm:"column:subject" json:"subject"`
	Message   string     `gorm:"not null;column:message" json:"message"`
	Locale    string     `gorm:"not null;column:locale" json:"locale"`
	Read      bool       `gorm:"not null;default:false;index;column:is_read" json:"read"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	ClientIP  string     `gorm:"column:client_ip" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ContactMessage) TableName() string { return "contact_message" }

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&m.ID)
	return nil
}
