package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -- Mock Repository --

type mockCatalogRepo struct {
	departments   map[uuid.UUID]*Department
	wards         map[uuid.UUID]*Ward
	specialties   map[uuid.UUID]*Specialty
	interventions map[uuid.UUID]*Intervention
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		departments:   make(map[uuid.UUID]*Department),
		wards:         make(map[uuid.UUID]*Ward),
		specialties:   make(map[uuid.UUID]*Specialty),
		interventions: make(map[uuid.UUID]*Intervention),
	}
}

func (m *mockCatalogRepo) ListDepartments(_ context.Context) ([]*Department, error) {
	var r []*Department
	for _, d := range m.departments {
		if d.Active {
			r = append(r, d)
		}
	}
	return r, nil
}

func (m *mockCatalogRepo) GetDepartment(_ context.Context, id uuid.UUID) (*Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockCatalogRepo) ListWards(_ context.Context) ([]*Ward, error) {
	var r []*Ward
	for _, w := range m.wards {
		if w.Active {
			r = append(r, w)
		}
	}
	return r, nil
}

func (m *mockCatalogRepo) GetWard(_ context.Context, id uuid.UUID) (*Ward, error) {
	w, ok := m.wards[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return w, nil
}

func (m *mockCatalogRepo) ListSpecialties(_ context.Context) ([]*Specialty, error) {
	var r []*Specialty
	for _, s := range m.specialties {
		if s.Active {
			r = append(r, s)
		}
	}
	return r, nil
}

func (m *mockCatalogRepo) ListInterventions(_ context.Context) ([]*Intervention, error) {
	var r []*Intervention
	for _, iv := range m.interventions {
		if iv.Active {
			r = append(r, iv)
		}
	}
	return r, nil
}

func (m *mockCatalogRepo) GetIntervention(_ context.Context, id uuid.UUID) (*Intervention, error) {
	iv, ok := m.interventions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return iv, nil
}

func (m *mockCatalogRepo) CountDepartments(_ context.Context) (int, error) {
	n := 0
	for _, d := range m.departments {
		if d.Active {
			n++
		}
	}
	return n, nil
}

func (m *mockCatalogRepo) CountSpecialties(_ context.Context) (int, error) {
	n := 0
	for _, s := range m.specialties {
		if s.Active {
			n++
		}
	}
	return n, nil
}

// -- Service Tests --

func TestWardDepartment_Resolves(t *testing.T) {
	repo := newMockCatalogRepo()
	deptID := uuid.New()
	ward := &Ward{ID: uuid.New(), DepartmentID: deptID, Name: "Ward 7", Active: true}
	repo.wards[ward.ID] = ward

	svc := NewService(repo)
	got, err := svc.WardDepartment(context.Background(), ward.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != deptID {
		t.Errorf("expected department %s, got %s", deptID, got)
	}
}

func TestWardDepartment_Unknown(t *testing.T) {
	svc := NewService(newMockCatalogRepo())
	if _, err := svc.WardDepartment(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for unknown ward")
	}
}

func TestWardDepartment_Retired(t *testing.T) {
	repo := newMockCatalogRepo()
	ward := &Ward{ID: uuid.New(), DepartmentID: uuid.New(), Name: "Closed", Active: false}
	repo.wards[ward.ID] = ward

	svc := NewService(repo)
	if _, err := svc.WardDepartment(context.Background(), ward.ID); err == nil {
		t.Error("expected retired ward to be treated as missing")
	}
}

func TestDepartmentExists(t *testing.T) {
	repo := newMockCatalogRepo()
	active := &Department{ID: uuid.New(), Name: "Physiotherapy", Active: true}
	retired := &Department{ID: uuid.New(), Name: "Old Unit", Active: false}
	repo.departments[active.ID] = active
	repo.departments[retired.ID] = retired

	svc := NewService(repo)
	if ok, _ := svc.DepartmentExists(context.Background(), active.ID); !ok {
		t.Error("expected active department to exist")
	}
	if ok, _ := svc.DepartmentExists(context.Background(), retired.ID); ok {
		t.Error("expected retired department to be missing")
	}
	if ok, _ := svc.DepartmentExists(context.Background(), uuid.New()); ok {
		t.Error("expected unknown department to be missing")
	}
}

func TestInterventionExists(t *testing.T) {
	repo := newMockCatalogRepo()
	iv := &Intervention{ID: uuid.New(), Name: "Mobility assessment", Active: true}
	repo.interventions[iv.ID] = iv

	svc := NewService(repo)
	if ok, _ := svc.InterventionExists(context.Background(), iv.ID); !ok {
		t.Error("expected intervention to exist")
	}
	if ok, _ := svc.InterventionExists(context.Background(), uuid.New()); ok {
		t.Error("expected unknown intervention to be missing")
	}
}
