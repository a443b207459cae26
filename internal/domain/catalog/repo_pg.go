package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrack/caretrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogRepoPG(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepoPG{pool: pool}
}

func (r *catalogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *catalogRepoPG) ListDepartments(ctx context.Context) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, active, created_at FROM department WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *catalogRepoPG) GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	var d Department
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, active, created_at FROM department WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Active, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *catalogRepoPG) ListWards(ctx context.Context) ([]*Ward, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, department_id, name, active, created_at FROM ward WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Ward
	for rows.Next() {
		var w Ward
		if err := rows.Scan(&w.ID, &w.DepartmentID, &w.Name, &w.Active, &w.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &w)
	}
	return items, rows.Err()
}

func (r *catalogRepoPG) GetWard(ctx context.Context, id uuid.UUID) (*Ward, error) {
	var w Ward
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, department_id, name, active, created_at FROM ward WHERE id = $1`, id).
		Scan(&w.ID, &w.DepartmentID, &w.Name, &w.Active, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *catalogRepoPG) ListSpecialties(ctx context.Context) ([]*Specialty, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, active, created_at FROM specialty WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Specialty
	for rows.Next() {
		var s Specialty
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *catalogRepoPG) ListInterventions(ctx context.Context) ([]*Intervention, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, code, active, created_at FROM intervention WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Intervention
	for rows.Next() {
		var iv Intervention
		if err := rows.Scan(&iv.ID, &iv.Name, &iv.Code, &iv.Active, &iv.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &iv)
	}
	return items, rows.Err()
}

func (r *catalogRepoPG) GetIntervention(ctx context.Context, id uuid.UUID) (*Intervention, error) {
	var iv Intervention
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, code, active, created_at FROM intervention WHERE id = $1`, id).
		Scan(&iv.ID, &iv.Name, &iv.Code, &iv.Active, &iv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *catalogRepoPG) CountDepartments(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM department WHERE active`).Scan(&n)
	return n, err
}

func (r *catalogRepoPG) CountSpecialties(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM specialty WHERE active`).Scan(&n)
	return n, err
}
