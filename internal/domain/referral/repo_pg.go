package referral

import (
	"context"
	"fmt"
	"time"

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

type referralRepoPG struct{ pool *pgxpool.Pool }

func NewReferralRepoPG(pool *pgxpool.Pool) ReferralRepository {
	return &referralRepoPG{pool: pool}
}

func (r *referralRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const referralCols = `r.id, r.patient_id, r.from_department_id, r.to_department_id,
	r.referred_by, r.referral_date, r.priority, r.status, r.notes,
	r.decided_by, r.decided_at, r.created_at, r.updated_at`

func scanReferral(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.PatientID, &ref.FromDepartmentID, &ref.ToDepartmentID,
		&ref.ReferredBy, &ref.ReferralDate, &ref.Priority, &ref.Status, &ref.Notes,
		&ref.DecidedBy, &ref.DecidedAt, &ref.CreatedAt, &ref.UpdatedAt)
	return &ref, err
}

func (r *referralRepoPG) Create(ctx context.Context, ref *Referral) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referral (id, patient_id, from_department_id, to_department_id,
			referred_by, referral_date, priority, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		ref.ID, ref.PatientID, ref.FromDepartmentID, ref.ToDepartmentID,
		ref.ReferredBy, ref.ReferralDate, ref.Priority, ref.Status, ref.Notes)
	return err
}

func (r *referralRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return scanReferral(r.conn(ctx).QueryRow(ctx,
		`SELECT `+referralCols+` FROM referral r WHERE r.id = $1`, id))
}

func listQuery(f Filter) (string, string, []interface{}) {
	where := ` WHERE TRUE`
	var args []interface{}
	if len(f.DepartmentIDs) > 0 {
		args = append(args, f.DepartmentIDs)
		switch f.Direction {
		case DirectionIncoming:
			where += fmt.Sprintf(` AND r.to_department_id = ANY($%d)`, len(args))
		case DirectionOutgoing:
			where += fmt.Sprintf(` AND r.from_department_id = ANY($%d)`, len(args))
		default:
			where += fmt.Sprintf(` AND (r.to_department_id = ANY($%d) OR r.from_department_id = ANY($%d))`,
				len(args), len(args))
		}
	}
	count := `SELECT COUNT(*) FROM referral r` + where
	data := `SELECT ` + referralCols + ` FROM referral r` + where + ` ORDER BY r.referral_date DESC, r.created_at DESC`
	return count, data, args
}

func (r *referralRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Referral, int, error) {
	countSQL, dataSQL, args := listQuery(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, dataSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ref)
	}
	return items, total, rows.Err()
}

func (r *referralRepoPG) ListAll(ctx context.Context, f Filter) ([]*Referral, error) {
	_, dataSQL, args := listQuery(f)
	rows, err := r.conn(ctx).Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ref)
	}
	return items, rows.Err()
}

// Resolve decides a pending referral. The status predicate makes the write
// a compare-and-set; a decided referral is never overwritten.
func (r *referralRepoPG) Resolve(ctx context.Context, id uuid.UUID, decision Status, decidedBy uuid.UUID, decidedAt time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE referral
		SET status = $2, decided_by = $3, decided_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		id, decision, decidedBy, decidedAt, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
