package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
)

type Service struct {
	repo  PatientRepository
	nowFn func() time.Time
}

func NewService(repo PatientRepository) *Service {
	return &Service{repo: repo, nowFn: time.Now}
}

type CreateInput struct {
	MRN         string
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	if in.MRN == "" {
		return nil, errs.Validationf("mrn is required")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, errs.Validationf("first and last name are required")
	}
	if _, err := s.repo.GetByMRN(ctx, in.MRN); err == nil {
		return nil, errs.Validationf("mrn %s is already registered", in.MRN)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	p := &Patient{
		ID:          uuid.New(),
		MRN:         in.MRN,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("patient %s not found", id)
		}
		return nil, err
	}
	if !p.Active {
		return nil, errs.NotFoundf("patient %s not found", id)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Exists reports whether the patient resolves to an active record. The task
// and referral engines validate patient references through this.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return p.Active, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

type OutcomeInput struct {
	Seen        bool
	AttemptMade bool
	Declined    bool
	Unseen      bool
	Refer       bool
	Note        *string
}

// RecordOutcome appends one assessment record. The schema keeps the flags
// independent, so exclusivity of the four assessment flags is enforced here.
func (s *Service) RecordOutcome(ctx context.Context, caller auth.Caller, patientID uuid.UUID, in OutcomeInput) (*Outcome, error) {
	if _, err := s.Get(ctx, patientID); err != nil {
		return nil, err
	}

	o := &Outcome{
		ID:          uuid.New(),
		PatientID:   patientID,
		Seen:        in.Seen,
		AttemptMade: in.AttemptMade,
		Declined:    in.Declined,
		Unseen:      in.Unseen,
		Refer:       in.Refer,
		Note:        in.Note,
		RecordedBy:  caller.UserID,
		RecordedAt:  s.nowFn(),
	}
	if o.assessmentFlags() > 1 {
		return nil, errs.Validationf("at most one of seen, attempt_made, declined, unseen may be set")
	}
	if o.assessmentFlags() == 0 && !o.Refer {
		return nil, errs.Validationf("outcome record sets no flags")
	}

	if err := s.repo.RecordOutcome(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListOutcomes(ctx context.Context, patientID uuid.UUID) ([]*Outcome, error) {
	if _, err := s.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListOutcomes(ctx, patientID)
}
