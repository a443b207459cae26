package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter restricts task listings. An empty filter matches every active task.
type Filter struct {
	// DepartmentIDs, when non-empty, restricts to tasks having at least one
	// intervention on a ward belonging to one of these departments.
	DepartmentIDs []uuid.UUID
	PatientID     *uuid.UUID
}

type TaskRepository interface {
	// Create inserts the task and all its interventions atomically.
	Create(ctx context.Context, t *Task, interventions []*TaskIntervention) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Task, int, error)
	// ListAll returns every matching task without paging; used by the
	// summary projection, which must scan current state on every call.
	ListAll(ctx context.Context, f Filter) ([]*Task, error)
	Retire(ctx context.Context, id uuid.UUID) (bool, error)

	GetIntervention(ctx context.Context, id uuid.UUID) (*TaskIntervention, error)
	ListInterventions(ctx context.Context, taskID uuid.UUID) ([]*TaskIntervention, error)
	InterventionsByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]*TaskIntervention, error)
	// UpdateInterventionOutcome performs a compare-and-set keyed on the
	// expected current status. It reports false when no row matched, which
	// the service surfaces as a stale concurrent write.
	UpdateInterventionOutcome(ctx context.Context, id uuid.UUID, expected, next OutcomeStatus, note *string, outcomeDate *time.Time) (bool, error)
}
