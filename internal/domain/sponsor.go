package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sponsor statuses. Derived: a sponsor is completed only when every one of its
// deliverables is completed.
const (
	SponsorPending    = "pending"
	SponsorInProgress = "in_progress"
	SponsorCompleted  = "completed"
)

// Sponsor holds the contract-level record plus derived aggregates.
// total_deliverables is maintained incrementally at deliverable create/delete;
// completed_deliverables, status and total_estimated_cost are recomputed by
// full scans (sponsors.Service.RecomputeSponsor / RecomputeCosts).
type Sponsor struct {
	SponsorID             uuid.UUID      `gorm:"column:sponsor_id;type:uuid;primaryKey" json:"sponsor_id"`
	Name                  string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	LegalName             string         `gorm:"column:legal_name;not null" json:"legal_name"`
	SponsorType           string         `gorm:"column:sponsor_type;type:varchar(20);not null" json:"sponsor_type"`
	CashValue             float64        `gorm:"column:cash_value;type:decimal(18,2);not null;default:0" json:"cash_value"`
	InKindValue           float64        `gorm:"column:in_kind_value;type:decimal(18,2);not null;default:0" json:"in_kind_value"`
	TotalValue            float64        `gorm:"column:total_value;type:decimal(18,2);not null;default:0" json:"total_value"`
	TotalEstimatedCost    float64        `gorm:"column:total_estimated_cost;type:decimal(18,2);not null;default:0" json:"total_estimated_cost"`
	ActualCost            *float64       `gorm:"column:actual_cost;type:decimal(18,2)" json:"actual_cost"`
	TotalDeliverables     int            `gorm:"column:total_deliverables;not null;default:0" json:"total_deliverables"`
	CompletedDeliverables int            `gorm:"column:completed_deliverables;not null;default:0" json:"completed_deliverables"`
	Status                string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	InKindItems           datatypes.JSON `gorm:"column:in_kind_items;type:json" json:"in_kind_items"`
	Events                datatypes.JSON `gorm:"column:events;type:json" json:"events"`
	DocURL                *string        `gorm:"column:doc_url" json:"doc_url"`
	CreatedAt             time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt             time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Sponsor) TableName() string {
	return "Sponsors"
}

// BeforeCreate ensures sponsor_id is set for DBs without default uuid.
func (s *Sponsor) BeforeCreate(tx *gorm.DB) error {
	if s.SponsorID == uuid.Nil {
		s.SponsorID = uuid.New()
	}
	return nil
}
