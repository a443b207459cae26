package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretrack/caretrack/pkg/errs"
)

type Service struct {
	repo StaffRepository
}

func NewService(repo StaffRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("staff member %s not found", id)
		}
		return nil, err
	}
	if !m.Active {
		return nil, errs.NotFoundf("staff member %s not found", id)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Member, int, error) {
	return s.repo.List(ctx, departmentID, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
