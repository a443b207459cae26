package task

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

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository {
	return &taskRepoPG{pool: pool}
}

func (r *taskRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const taskCols = `t.id, t.title, t.description, t.task_type, t.priority,
	t.due_date, t.due_time, t.patient_id, t.active, t.created_by,
	t.created_at, t.updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.TaskType, &t.Priority,
		&t.DueDate, &t.DueTime, &t.PatientID, &t.Active, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

const interventionCols = `ti.id, ti.task_id, ti.intervention_id, ti.ward_id,
	ti.start_date, ti.end_date, ti.outcome_status, ti.outcome_note,
	ti.outcome_date, ti.created_at, ti.updated_at`

func scanIntervention(row pgx.Row) (*TaskIntervention, error) {
	var iv TaskIntervention
	err := row.Scan(&iv.ID, &iv.TaskID, &iv.InterventionID, &iv.WardID,
		&iv.StartDate, &iv.EndDate, &iv.OutcomeStatus, &iv.OutcomeNote,
		&iv.OutcomeDate, &iv.CreatedAt, &iv.UpdatedAt)
	return &iv, err
}

// Create inserts the task and every intervention in one transaction so a
// task can never exist with a partial intervention set.
func (r *taskRepoPG) Create(ctx context.Context, t *Task, interventions []*TaskIntervention) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO task (id, title, description, task_type, priority,
				due_date, due_time, patient_id, active, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			t.ID, t.Title, t.Description, t.TaskType, t.Priority,
			t.DueDate, t.DueTime, t.PatientID, t.Active, t.CreatedBy)
		if err != nil {
			return err
		}
		for _, iv := range interventions {
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO task_intervention (id, task_id, intervention_id, ward_id,
					start_date, end_date, outcome_status, outcome_note, outcome_date)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				iv.ID, iv.TaskID, iv.InterventionID, iv.WardID,
				iv.StartDate, iv.EndDate, iv.OutcomeStatus, iv.OutcomeNote, iv.OutcomeDate)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *taskRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(r.conn(ctx).QueryRow(ctx,
		`SELECT `+taskCols+` FROM task t WHERE t.id = $1`, id))
}

func listQuery(f Filter) (string, string, []interface{}) {
	where := ` WHERE t.active`
	var args []interface{}
	if len(f.DepartmentIDs) > 0 {
		args = append(args, f.DepartmentIDs)
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM task_intervention ti
			JOIN ward w ON w.id = ti.ward_id
			WHERE ti.task_id = t.id AND w.department_id = ANY($%d))`, len(args))
	}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(` AND t.patient_id = $%d`, len(args))
	}
	count := `SELECT COUNT(*) FROM task t` + where
	data := `SELECT ` + taskCols + ` FROM task t` + where + ` ORDER BY t.due_date, t.created_at DESC`
	return count, data, args
}

func (r *taskRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Task, int, error) {
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

	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *taskRepoPG) ListAll(ctx context.Context, f Filter) ([]*Task, error) {
	_, dataSQL, args := listQuery(f)
	rows, err := r.conn(ctx).Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *taskRepoPG) Retire(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE task SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *taskRepoPG) GetIntervention(ctx context.Context, id uuid.UUID) (*TaskIntervention, error) {
	return scanIntervention(r.conn(ctx).QueryRow(ctx,
		`SELECT `+interventionCols+` FROM task_intervention ti WHERE ti.id = $1`, id))
}

func (r *taskRepoPG) ListInterventions(ctx context.Context, taskID uuid.UUID) ([]*TaskIntervention, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+interventionCols+` FROM task_intervention ti WHERE ti.task_id = $1 ORDER BY ti.created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*TaskIntervention
	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, iv)
	}
	return items, rows.Err()
}

func (r *taskRepoPG) InterventionsByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]*TaskIntervention, error) {
	result := make(map[uuid.UUID][]*TaskIntervention, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+interventionCols+` FROM task_intervention ti WHERE ti.task_id = ANY($1) ORDER BY ti.created_at`, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, err
		}
		result[iv.TaskID] = append(result[iv.TaskID], iv)
	}
	return result, rows.Err()
}

// UpdateInterventionOutcome writes the next outcome only when the row still
// holds the expected status; a lost race leaves the row untouched and
// reports false.
func (r *taskRepoPG) UpdateInterventionOutcome(ctx context.Context, id uuid.UUID, expected, next OutcomeStatus, note *string, outcomeDate *time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE task_intervention
		SET outcome_status = $3, outcome_note = $4, outcome_date = $5, updated_at = NOW()
		WHERE id = $1 AND outcome_status = $2`,
		id, expected, next, note, outcomeDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
