package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, tenant_id, title, description, type, schedule,
	assigned_to, assigned_by, status, due_date, requires_approval,
	approved_by, approved_at, image_required, image_url, created_at, updated_at`

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, tenant_id, title, description, type, schedule,
			assigned_to, assigned_by, status, due_date, requires_approval,
			approved_by, approved_at, image_required, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TenantID, t.Title, mapStringNull(t.Description),
		mapStringNull(t.Type), mapStringNull(t.Schedule),
		mapStringNull(t.AssignedTo), mapStringNull(t.AssignedBy),
		t.Status, mapOptionalTime(t.DueDate), t.RequiresApproval,
		mapStringNull(t.ApprovedBy), mapOptionalTime(t.ApprovedAt),
		t.ImageRequired, mapStringNull(t.ImageURL), now, now,
	)
	return err
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if err != nil {
		return domain.Task{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tasksRepo) ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1 = 1`
	args := []any{}

	if f.TenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, f.TenantID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.AssignedTo != "" {
		query += ` AND assigned_to = ?`
		args = append(args, f.AssignedTo)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *tasksRepo) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, type = ?, schedule = ?,
			assigned_to = ?, assigned_by = ?, status = ?, due_date = ?,
			requires_approval = ?, approved_by = ?, approved_at = ?,
			image_required = ?, image_url = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?`,
		t.Title, mapStringNull(t.Description), mapStringNull(t.Type),
		mapStringNull(t.Schedule), mapStringNull(t.AssignedTo),
		mapStringNull(t.AssignedBy), t.Status, mapOptionalTime(t.DueDate),
		t.RequiresApproval, mapStringNull(t.ApprovedBy),
		mapOptionalTime(t.ApprovedAt), t.ImageRequired,
		mapStringNull(t.ImageURL), time.Now().UTC(), t.ID, t.TenantID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) DeleteTask(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

func scanTask(s rowScanner) (domain.Task, error) {
	var (
		t           domain.Task
		description sql.NullString
		typ         sql.NullString
		schedule    sql.NullString
		assignedTo  sql.NullString
		assignedBy  sql.NullString
		dueDate     sql.NullTime
		approvedBy  sql.NullString
		approvedAt  sql.NullTime
		imageURL    sql.NullString
	)

	err := s.Scan(&t.ID, &t.TenantID, &t.Title, &description, &typ, &schedule,
		&assignedTo, &assignedBy, &t.Status, &dueDate, &t.RequiresApproval,
		&approvedBy, &approvedAt, &t.ImageRequired, &imageURL,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Task{}, err
	}

	t.Description = mapNullString(description)
	t.Type = mapNullString(typ)
	t.Schedule = mapNullString(schedule)
	t.AssignedTo = mapNullString(assignedTo)
	t.AssignedBy = mapNullString(assignedBy)
	t.DueDate = mapNullTimePtr(dueDate)
	t.ApprovedBy = mapNullString(approvedBy)
	t.ApprovedAt = mapNullTimePtr(approvedAt)
	t.ImageURL = mapNullString(imageURL)
	return t, nil
}
