package catalog

import (
	"context"

	"github.com/google/uuid"
)

type CatalogRepository interface {
	ListDepartments(ctx context.Context) ([]*Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error)
	ListWards(ctx context.Context) ([]*Ward, error)
	GetWard(ctx context.Context, id uuid.UUID) (*Ward, error)
	ListSpecialties(ctx context.Context) ([]*Specialty, error)
	ListInterventions(ctx context.Context) ([]*Intervention, error)
	GetIntervention(ctx context.Context, id uuid.UUID) (*Intervention, error)
	CountDepartments(ctx context.Context) (int, error)
	CountSpecialties(ctx context.Context) (int, error)
}
