package referral

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
)

// Departments resolves department references against the catalog.
type Departments interface {
	DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PatientDirectory resolves patient references.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo        ReferralRepository
	departments Departments
	patients    PatientDirectory
	nowFn       func() time.Time
}

func NewService(repo ReferralRepository, departments Departments, patients PatientDirectory) *Service {
	return &Service{repo: repo, departments: departments, patients: patients, nowFn: time.Now}
}

type CreateInput struct {
	PatientID        uuid.UUID
	FromDepartmentID uuid.UUID
	ToDepartmentID   uuid.UUID
	Priority         string
	Notes            *string
}

// Create opens a pending referral from the caller's department to another.
func (s *Service) Create(ctx context.Context, caller auth.Caller, in CreateInput) (*Referral, error) {
	if in.FromDepartmentID == in.ToDepartmentID {
		return nil, errs.Validationf("origin and destination departments must differ")
	}
	if !validPriorities[in.Priority] {
		return nil, errs.Validationf("invalid priority %q", in.Priority)
	}

	for _, dept := range []uuid.UUID{in.FromDepartmentID, in.ToDepartmentID} {
		ok, err := s.departments.DepartmentExists(ctx, dept)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.Validationf("department %s does not resolve", dept)
		}
	}
	ok, err := s.patients.Exists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Validationf("patient %s does not resolve", in.PatientID)
	}

	ref := &Referral{
		ID:               uuid.New(),
		PatientID:        in.PatientID,
		FromDepartmentID: in.FromDepartmentID,
		ToDepartmentID:   in.ToDepartmentID,
		ReferredBy:       caller.UserID,
		ReferralDate:     s.nowFn(),
		Priority:         in.Priority,
		Status:           StatusPending,
		Notes:            in.Notes,
	}
	if err := s.repo.Create(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Referral, error) {
	ref, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("referral %s not found", id)
		}
		return nil, err
	}
	return ref, nil
}

// Resolve decides a pending referral exactly once. Only callers whose scope
// covers the destination department may decide; admins bypass the check. The
// losing side of a concurrent decision gets InvalidTransition.
func (s *Service) Resolve(ctx context.Context, caller auth.Caller, id uuid.UUID, decision Status) (*Referral, error) {
	if decision != StatusAccepted && decision != StatusRejected {
		return nil, errs.Validationf("decision must be %s or %s", StatusAccepted, StatusRejected)
	}

	ref, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.InDepartment(ref.ToDepartmentID) {
		return nil, errs.Forbiddenf("referral %s is outside your department scope", id)
	}
	if ref.Status.Terminal() {
		return nil, errs.InvalidTransitionf("referral is already %s", ref.Status)
	}

	ok, err := s.repo.Resolve(ctx, id, decision, caller.UserID, s.nowFn())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Decided between our read and the write.
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, errs.NotFoundf("referral %s not found", id)
		}
		return nil, errs.InvalidTransitionf("referral was decided concurrently")
	}
	return s.Get(ctx, id)
}

// List returns referrals the caller can see. Direction narrows to incoming
// (destination in scope) or outgoing (origin in scope); admins see every
// referral regardless of scope.
func (s *Service) List(ctx context.Context, caller auth.Caller, direction Direction, limit, offset int) ([]*Referral, int, error) {
	f := Filter{Direction: direction}
	if !caller.IsAdmin() {
		if len(caller.DepartmentIDs) == 0 {
			return nil, 0, nil
		}
		f.DepartmentIDs = caller.DepartmentIDs
	}
	return s.repo.List(ctx, f, limit, offset)
}

// ScanVisible returns every referral in scope; used by the summary
// projection, which recomputes counters from current state on every call.
func (s *Service) ScanVisible(ctx context.Context, departmentIDs []uuid.UUID) ([]*Referral, error) {
	return s.repo.ListAll(ctx, Filter{DepartmentIDs: departmentIDs})
}
