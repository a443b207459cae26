package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretrack/caretrack/pkg/errs"
)

type Service struct {
	repo CatalogRepository
}

func NewService(repo CatalogRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.repo.ListDepartments(ctx)
}

func (s *Service) ListWards(ctx context.Context) ([]*Ward, error) {
	return s.repo.ListWards(ctx)
}

func (s *Service) ListSpecialties(ctx context.Context) ([]*Specialty, error) {
	return s.repo.ListSpecialties(ctx)
}

func (s *Service) ListInterventions(ctx context.Context) ([]*Intervention, error) {
	return s.repo.ListInterventions(ctx)
}

// WardDepartment resolves an active ward to its owning department. Unknown or
// retired wards are reported as NotFound; validation against catalog
// references is the caller's concern.
func (s *Service) WardDepartment(ctx context.Context, wardID uuid.UUID) (uuid.UUID, error) {
	w, err := s.repo.GetWard(ctx, wardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, errs.NotFoundf("ward %s not found", wardID)
		}
		return uuid.Nil, err
	}
	if !w.Active {
		return uuid.Nil, errs.NotFoundf("ward %s not found", wardID)
	}
	return w.DepartmentID, nil
}

// DepartmentExists reports whether the department resolves to an active row.
func (s *Service) DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	d, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return d.Active, nil
}

// InterventionExists reports whether the intervention catalog entry resolves
// to an active row.
func (s *Service) InterventionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	iv, err := s.repo.GetIntervention(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return iv.Active, nil
}

func (s *Service) CountDepartments(ctx context.Context) (int, error) {
	return s.repo.CountDepartments(ctx)
}

func (s *Service) CountSpecialties(ctx context.Context) (int, error) {
	return s.repo.CountSpecialties(ctx)
}
