package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proof statuses. approved/rejected are terminal; a resubmission is a new Proof.
const (
	ProofPending  = "pending"
	ProofApproved = "approved"
	ProofRejected = "rejected"
)

// StringList stores a json array of strings (object-storage keys).
type StringList []string

// Scan implements sql.Scanner for reading from DB (json column).
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// Value implements driver.Valuer for writing to DB.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Proof references exactly one deliverable and the submitting department user.
type Proof struct {
	ProofID       uuid.UUID  `gorm:"column:proof_id;type:uuid;primaryKey" json:"proof_id"`
	DeliverableID uuid.UUID  `gorm:"column:deliverable_id;type:uuid;not null;index" json:"deliverable_id"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	UserEmail     string     `gorm:"column:user_email;not null" json:"user_email"`
	ProofFileURLs StringList `gorm:"column:proof_file_urls;type:json" json:"proof_file_urls"`
	ProofMessage  string     `gorm:"column:proof_message" json:"proof_message"`
	Status        string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	Reason        *string    `gorm:"column:reason" json:"reason"`
	SubmittedAt   time.Time  `gorm:"column:submitted_at" json:"submitted_at"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`
}

func (Proof) TableName() string {
	return "Proofs"
}

func (p *Proof) BeforeCreate(tx *gorm.DB) error {
	if p.ProofID == uuid.Nil {
		p.ProofID = uuid.New()
	}
	return nil
}
