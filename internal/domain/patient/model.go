// Package patient owns the patient register and the coarse per-visit outcome
// flags recorded against a patient. Interventions carry their own richer
// outcome lifecycle in the task package.
package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	MRN         string     `db:"mrn" json:"mrn"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Active      bool       `db:"active" json:"active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Outcome is one coarse assessment record. The four assessment flags are
// stored as independent booleans; the write path accepts at most one of
// them per record. Refer may accompany any of them.
type Outcome struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Seen        bool      `db:"seen" json:"seen"`
	AttemptMade bool      `db:"attempt_made" json:"attempt_made"`
	Declined    bool      `db:"declined" json:"declined"`
	Unseen      bool      `db:"unseen" json:"unseen"`
	Refer       bool      `db:"refer" json:"refer"`
	Note        *string   `db:"note" json:"note,omitempty"`
	RecordedBy  uuid.UUID `db:"recorded_by" json:"recorded_by"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
}

// assessmentFlags counts how many of the mutually exclusive assessment
// flags are set.
func (o *Outcome) assessmentFlags() int {
	n := 0
	for _, set := range []bool{o.Seen, o.AttemptMade, o.Declined, o.Unseen} {
		if set {
			n++
		}
	}
	return n
}
