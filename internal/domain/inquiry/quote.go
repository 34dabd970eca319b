package inquiry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/marmora-backend/internal/domain/shared"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "PENDING"
	QuoteStatusReviewed  QuoteStatus = "REVIEWED"
	QuoteStatusQuoted    QuoteStatus = "QUOTED"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusCompleted QuoteStatus = "COMPLETED"
	QuoteStatusCancelled QuoteStatus = "CANCELLED"
)

var quoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusReviewed,
	QuoteStatusQuoted,
	QuoteStatusAccepted,
	QuoteStatusCompleted,
	QuoteStatusCancelled,
}

// forward lists the single forward step from each non-terminal status.
var forward = map[QuoteStatus]QuoteStatus{
	QuoteStatusPending:  QuoteStatusReviewed,
	QuoteStatusReviewed: QuoteStatusQuoted,
	QuoteStatusQuoted:   QuoteStatusAccepted,
	QuoteStatusAccepted: QuoteStatusCompleted,
}

func QuoteStatuses() []QuoteStatus {
	out := make([]QuoteStatus, len(quoteStatuses))
	copy(out, quoteStatuses)
	return out
}

func (s QuoteStatus) Valid() bool {
	for _, x := range quoteStatuses {
		if x == s {
			return true
		}
	}
	return false
}

func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusCompleted || s == QuoteStatusCancelled
}

// CanTransitionTo allows one forward step, or cancellation of any open request.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	if s.Terminal() || !next.Valid() || s == next {
		return false
	}
	if next == QuoteStatusCancelled {
		return true
	}
	return forward[s] == next
}

type QuoteUnit string

const (
	QuoteUnitSquareMeter QuoteUnit = "m2"
	QuoteUnitSlab        QuoteUnit = "slab"
	QuoteUnitTon         QuoteUnit = "ton"
	QuoteUnitContainer   QuoteUnit = "container"
)

func (u QuoteUnit) Valid() bool {
	switch u {
	case QuoteUnitSquareMeter, QuoteUnitSlab, QuoteUnitTon, QuoteUnitContainer:
		return true
	default:
		return false
	}
}

type QuoteItem struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	Quantity    float64    `json:"quantity"`
	Unit        QuoteUnit  `json:"unit"`
	Finish      string     `json:"finish,omitempty"`
	Dimensions  string     `json:"dimensions,omitempty"`
}

type QuoteRequest struct {
	ID                 uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Reference          string                         `gorm:"uniqueIndex;not null;column:reference" json:"reference"`
	Status             QuoteStatus                    `gorm:"not null;index;column:status" json:"status"`
	Locale             string                         `gorm:"not null;column:locale" json:"locale"`
	Items              datatypes.JSONSlice[QuoteItem] `gorm:"column:items" json:"items"`
	ProjectType        string                         `gorm:"column:project_type" json:"project_type"`
	DestinationCountry string                         `gorm:"column:destination_country" json:"destination_country"`
	Timeline           string                         `gorm:"column:timeline" json:"timeline"`
	Notes              string                         `gorm:"column:notes" json:"notes"`
	FullName           string                         `gorm:"not null;column:full_name" json:"full_name"`
	Email              string                         `gorm:"not null;index;column:email" json:"email"`
	Phone              string                         `gorm:"column:phone" json:"phone"`
	Company            string                         `gorm:"column:company" json:"company"`
	Country            string                         `gorm:"column:country" json:"country"`
	AdminNote          string                         `gorm:"column:admin_note" json:"admin_note"`
	ClientIP           string                         `gorm:"column:client_ip" json:"-"`
	History            []QuoteStatusChange            `gorm:"foreignKey:QuoteRequestID;references:ID" json:"history,omitempty"`
	CreatedAt          time.Time                      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time                      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (QuoteRequest) TableName() string { return "quote_request" }

func (q *QuoteRequest) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&q.ID)
	return nil
}

type QuoteStatusChange struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteRequestID uuid.UUID   `gorm:"type:uuid;index;not null;column:quote_request_id" json:"quote_request_id"`
	FromStatus     QuoteStatus `gorm:"not null;column:from_status" json:"from_status"`
	ToStatus       QuoteStatus `gorm:"not null;column:to_status" json:"to_status"`
	Note           string      `gorm:"column:note" json:"note"`
	ChangedBy      *uuid.UUID  `gorm:"type:uuid;column:changed_by" json:"changed_by,omitempty"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (QuoteStatusChange) TableName() string { return "quote_status_change" }

func (c *QuoteStatusChange) BeforeCreate(tx *gorm.DB) error {
	shared.EnsureID(&c.ID)
	return nil
}
