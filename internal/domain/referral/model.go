// Package referral owns cross-department referrals: created pending, then
// accepted or rejected exactly once by the destination department.
package referral

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the referral has been decided.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var validPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

type Referral struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	FromDepartmentID uuid.UUID  `db:"from_department_id" json:"from_department_id"`
	ToDepartmentID   uuid.UUID  `db:"to_department_id" json:"to_department_id"`
	ReferredBy       uuid.UUID  `db:"referred_by" json:"referred_by"`
	ReferralDate     time.Time  `db:"referral_date" json:"referral_date"`
	Priority         string     `db:"priority" json:"priority"`
	Status           Status     `db:"status" json:"status"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	DecidedBy        *uuid.UUID `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
