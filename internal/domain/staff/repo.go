package staff

import (
	"context"

	"github.com/google/uuid"
)

type StaffRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	// List returns active members; departmentID narrows to one department
	// when non-nil.
	List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Member, int, error)
	Count(ctx context.Context) (int, error)
}
