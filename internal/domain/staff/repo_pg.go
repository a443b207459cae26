package staff

import (
	"context"
	"fmt"

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

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const memberCols = `s.id, s.first_name, s.last_name, s.email, s.role,
	s.department_id, s.specialty_id, s.active, s.created_at, s.updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Role,
		&m.DepartmentID, &m.SpecialtyID, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return scanMember(r.conn(ctx).QueryRow(ctx,
		`SELECT `+memberCols+` FROM staff_member s WHERE s.id = $1`, id))
}

func (r *staffRepoPG) List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Member, int, error) {
	where := ` WHERE s.active`
	var args []interface{}
	if departmentID != nil {
		args = append(args, *departmentID)
		where += ` AND s.department_id = $1`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff_member s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`SELECT `+memberCols+` FROM staff_member s`+where+
		` ORDER BY s.last_name, s.first_name LIMIT $%d OFFSET $%d`,
		len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, dataSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *staffRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff_member s WHERE s.active`).Scan(&n)
	return n, err
}
