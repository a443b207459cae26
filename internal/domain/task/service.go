package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
)

// Catalog is the slice of reference data the task engine validates against.
type Catalog interface {
	WardDepartment(ctx context.Context, wardID uuid.UUID) (uuid.UUID, error)
	InterventionExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PatientDirectory resolves patient references.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     TaskRepository
	catalog  Catalog
	patients PatientDirectory
	nowFn    func() time.Time
}

func NewService(repo TaskRepository, catalog Catalog, patients PatientDirectory) *Service {
	return &Service{repo: repo, catalog: catalog, patients: patients, nowFn: time.Now}
}

// CreateInput carries everything needed to open a task with its initial
// intervention set.
type CreateInput struct {
	Title         string
	Description   string
	TaskType      string
	Priority      string
	DueDate       time.Time
	DueTime       *string
	PatientID     uuid.UUID
	Interventions []InterventionInput
}

type InterventionInput struct {
	InterventionID uuid.UUID
	WardID         uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
}

// Create validates the input against the reference catalogs and inserts the
// task with all its interventions atomically. Interventions start assigned
// with a null outcome date.
func (s *Service) Create(ctx context.Context, caller auth.Caller, in CreateInput) (*Detail, error) {
	if in.Title == "" {
		return nil, errs.Validationf("title is required")
	}
	if !validPriorities[in.Priority] {
		return nil, errs.Validationf("invalid priority %q", in.Priority)
	}
	if len(in.Interventions) == 0 {
		return nil, errs.Validationf("at least one intervention is required")
	}
	now := s.nowFn()
	if startOfDay(in.DueDate).Before(startOfDay(now)) {
		return nil, errs.Validationf("due date is in the past")
	}

	ok, err := s.patients.Exists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Validationf("patient %s does not resolve", in.PatientID)
	}

	seen := make(map[uuid.UUID]bool, len(in.Interventions))
	t := &Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		TaskType:    in.TaskType,
		Priority:    in.Priority,
		DueDate:     startOfDay(in.DueDate),
		DueTime:     in.DueTime,
		PatientID:   in.PatientID,
		Active:      true,
		CreatedBy:   caller.UserID,
	}

	interventions := make([]*TaskIntervention, 0, len(in.Interventions))
	for _, ivIn := range in.Interventions {
		if seen[ivIn.InterventionID] {
			return nil, errs.Validationf("intervention %s assigned twice", ivIn.InterventionID)
		}
		seen[ivIn.InterventionID] = true

		exists, err := s.catalog.InterventionExists(ctx, ivIn.InterventionID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errs.Validationf("intervention %s does not resolve", ivIn.InterventionID)
		}
		if _, err := s.catalog.WardDepartment(ctx, ivIn.WardID); err != nil {
			if errs.KindOf(err) == errs.KindNotFound {
				return nil, errs.Validationf("ward %s does not resolve", ivIn.WardID)
			}
			return nil, err
		}
		if ivIn.EndDate.Before(ivIn.StartDate) {
			return nil, errs.Validationf("intervention end date precedes start date")
		}

		interventions = append(interventions, &TaskIntervention{
			ID:             uuid.New(),
			TaskID:         t.ID,
			InterventionID: ivIn.InterventionID,
			WardID:         ivIn.WardID,
			StartDate:      startOfDay(ivIn.StartDate),
			EndDate:        startOfDay(ivIn.EndDate),
			OutcomeStatus:  OutcomeAssigned,
		})
	}

	if err := s.repo.Create(ctx, t, interventions); err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID)
}

// Get returns the task with its interventions and derived status. Retired
// tasks are reported as missing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("task %s not found", id)
		}
		return nil, err
	}
	if !t.Active {
		return nil, errs.NotFoundf("task %s not found", id)
	}

	interventions, err := s.repo.ListInterventions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Task:          *t,
		Status:        DeriveStatus(interventions, s.nowFn()),
		Interventions: interventions,
	}, nil
}

// ApplyOutcome advances one intervention's outcome through the classifier.
// Persistence is a compare-and-set on the status the caller observed, so a
// concurrent transition surfaces as InvalidTransition rather than a silent
// overwrite.
func (s *Service) ApplyOutcome(ctx context.Context, interventionID uuid.UUID, requested OutcomeStatus, note *string) (*Detail, error) {
	iv, err := s.repo.GetIntervention(ctx, interventionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("task intervention %s not found", interventionID)
		}
		return nil, err
	}

	next, outcomeDate, err := ApplyOutcome(iv.OutcomeStatus, requested, s.nowFn())
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateInterventionOutcome(ctx, interventionID, iv.OutcomeStatus, next, note, outcomeDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The row moved underneath us; distinguish deletion from a race.
		if _, err := s.repo.GetIntervention(ctx, interventionID); err != nil {
			return nil, errs.NotFoundf("task intervention %s not found", interventionID)
		}
		return nil, errs.InvalidTransitionf("outcome changed concurrently; re-fetch and retry")
	}

	return s.Get(ctx, iv.TaskID)
}

// ListFilter selects which tasks a caller sees.
type ListFilter struct {
	// Mine restricts to tasks touching the caller's department scope.
	Mine      bool
	PatientID *uuid.UUID
}

// List returns the caller-visible tasks with derived statuses.
func (s *Service) List(ctx context.Context, caller auth.Caller, filter ListFilter, limit, offset int) ([]*Detail, int, error) {
	f := Filter{PatientID: filter.PatientID}
	if filter.Mine {
		if len(caller.DepartmentIDs) == 0 {
			return nil, 0, nil
		}
		f.DepartmentIDs = caller.DepartmentIDs
	}

	tasks, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.attachInterventions(ctx, tasks)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ScanVisible returns every task in scope with its derived status. The
// summary projection calls this on every request so counters are always
// recomputed from current state.
func (s *Service) ScanVisible(ctx context.Context, departmentIDs []uuid.UUID) ([]*Detail, error) {
	tasks, err := s.repo.ListAll(ctx, Filter{DepartmentIDs: departmentIDs})
	if err != nil {
		return nil, err
	}
	return s.attachInterventions(ctx, tasks)
}

func (s *Service) attachInterventions(ctx context.Context, tasks []*Task) ([]*Detail, error) {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	byTask, err := s.repo.InterventionsByTaskIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	details := make([]*Detail, len(tasks))
	for i, t := range tasks {
		interventions := byTask[t.ID]
		details[i] = &Detail{
			Task:          *t,
			Status:        DeriveStatus(interventions, now),
			Interventions: interventions,
		}
	}
	return details, nil
}

// Retire hides a task from every listing without deleting its records.
func (s *Service) Retire(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Retire(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFoundf("task %s not found", id)
	}
	return nil
}
