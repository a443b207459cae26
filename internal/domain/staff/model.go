// Package staff exposes the staff register: the allied-health workers whose
// identities arrive in caller tokens and whose department memberships define
// visibility scope.
package staff

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Role         string     `db:"role" json:"role"`
	DepartmentID uuid.UUID  `db:"department_id" json:"department_id"`
	SpecialtyID  *uuid.UUID `db:"specialty_id" json:"specialty_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
