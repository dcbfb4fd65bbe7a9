package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deliverable statuses.
const (
	DeliverablePending    = "pending"
	DeliverableInProgress = "in_progress"
	DeliverableCompleted  = "completed"
	DeliverableOverdue    = "overdue"
)

// Task types.
const (
	TaskTypeStandard = "standard"
	TaskTypeCost     = "cost"
)

// Cost types for cost-type deliverables.
const (
	CostTypePosters       = "posters"
	CostTypeStandee       = "standee"
	CostTypeBanner        = "banner"
	CostTypeAccommodation = "accommodation"
	CostTypeFood          = "food"
)

// Assignment statuses. An empty status means the department has not acted yet.
const (
	AssignmentPending   = "pending"
	AssignmentAccepted  = "accepted"
	AssignmentRejected  = "rejected"
	AssignmentCompleted = "completed"
)

// Assignment is one per-department entry inside a deliverable. One entry per
// department user; the proof-approval flow matches on UserEmail.
type Assignment struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

// AssignmentList stores the assignment entries as a json column but exposes a
// typed slice to Go code, so the list is always read and rewritten as a whole
// inside the same transaction.
type AssignmentList []Assignment

// Scan implements sql.Scanner for reading from DB (json column).
func (a *AssignmentList) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported type for AssignmentList")
	}
}

// Value implements driver.Valuer for writing to DB.
func (a AssignmentList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Deliverable is owned by exactly one sponsor via sponsor_id (flat table, not a
// nested collection). status is derived from the assignment list except for the
// cost-submission pathway, which force-completes it.
type Deliverable struct {
	DeliverableID     uuid.UUID      `gorm:"column:deliverable_id;type:uuid;primaryKey" json:"deliverable_id"`
	SponsorID         uuid.UUID      `gorm:"column:sponsor_id;type:uuid;not null;index" json:"sponsor_id"`
	Title             string         `gorm:"column:title;not null" json:"title"`
	Description       string         `gorm:"column:description" json:"description"`
	DueDate           *time.Time     `gorm:"column:due_date" json:"due_date"`
	Priority          string         `gorm:"column:priority;type:varchar(10);default:'medium'" json:"priority"`
	ProofRequired     bool           `gorm:"column:proof_required;not null;default:true" json:"proof_required"`
	TaskType          string         `gorm:"column:task_type;type:varchar(10);not null;default:'standard'" json:"task_type"`
	CostType          *string        `gorm:"column:cost_type;type:varchar(20)" json:"cost_type"`
	EstimatedCost     float64        `gorm:"column:estimated_cost;type:decimal(18,2);not null;default:0" json:"estimated_cost"`
	Status            string         `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	Assignments       AssignmentList `gorm:"column:assignments;type:json" json:"assignments"`
	CostDetails       datatypes.JSON `gorm:"column:cost_details;type:json" json:"cost_details"`
	AdditionalFileURL *string        `gorm:"column:additional_file_url" json:"additional_file_url"`
	CreatedAt         time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Deliverable) TableName() string {
	return "Deliverables"
}

// BeforeCreate sets deliverable_id if not already set (DBs without default uuid).
func (d *Deliverable) BeforeCreate(tx *gorm.DB) error {
	if d.DeliverableID == uuid.Nil {
		d.DeliverableID = uuid.New()
	}
	return nil
}

// ValidCostType reports whether t is one of the recognized cost types.
func ValidCostType(t string) bool {
	switch t {
	case CostTypePosters, CostTypeStandee, CostTypeBanner, CostTypeAccommodation, CostTypeFood:
		return true
	}
	return false
}
