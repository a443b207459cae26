// Package task owns the Task and TaskIntervention aggregates: task creation
// with an atomic intervention set, the per-intervention outcome state
// machine, and the derived task status that is computed from intervention
// state on every read rather than stored.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority orders clinical urgency.
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

// Status is the derived state of a whole task. It is never persisted; see
// DeriveStatus.
type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

// Task is a unit of clinical work owning one or more interventions.
type Task struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	TaskType    string    `db:"task_type" json:"task_type"`
	Priority    string    `db:"priority" json:"priority"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	DueTime     *string   `db:"due_time" json:"due_time,omitempty"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Active      bool      `db:"active" json:"active"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TaskIntervention assigns one catalog intervention to a task, scoped to a
// ward. Its outcome advances only through the classifier in outcome.go.
type TaskIntervention struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	TaskID         uuid.UUID     `db:"task_id" json:"task_id"`
	InterventionID uuid.UUID     `db:"intervention_id" json:"intervention_id"`
	WardID         uuid.UUID     `db:"ward_id" json:"ward_id"`
	StartDate      time.Time     `db:"start_date" json:"start_date"`
	EndDate        time.Time     `db:"end_date" json:"end_date"`
	OutcomeStatus  OutcomeStatus `db:"outcome_status" json:"outcome_status"`
	OutcomeNote    *string       `db:"outcome_note" json:"outcome_note,omitempty"`
	OutcomeDate    *time.Time    `db:"outcome_date" json:"outcome_date,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Detail is a task with its interventions and the status derived from them.
type Detail struct {
	Task
	Status        Status              `json:"status"`
	Interventions []*TaskIntervention `json:"interventions"`
}

// DeriveStatus computes a task's status from its interventions. Overdue is
// checked first so a stalled task is never reported as healthy: any
// non-terminal intervention whose end date has passed makes the whole task
// overdue regardless of its siblings.
func DeriveStatus(interventions []*TaskIntervention, now time.Time) Status {
	today := startOfDay(now)

	allTerminal := len(interventions) > 0
	anyStarted := false
	for _, iv := range interventions {
		terminal := iv.OutcomeStatus.Terminal()
		if !terminal && startOfDay(iv.EndDate).Before(today) {
			return StatusOverdue
		}
		if !terminal {
			allTerminal = false
		}
		if iv.OutcomeStatus != OutcomeAssigned {
			anyStarted = true
		}
	}

	switch {
	case allTerminal:
		return StatusCompleted
	case anyStarted:
		return StatusInProgress
	default:
		return StatusAssigned
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
