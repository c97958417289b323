package repository

import (
	"context"

	"taskflow/internal/apperr"
	"taskflow/internal/domain"
)

type TaskRepository struct {
	db Querier
}

func NewTaskRepository(db Querier) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	return wrapDBError("create task", err)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, wrapDBError("get task", err)
	}
	return &t, nil
}

// List returns the user's tasks ordered by created_at descending. An
// empty status returns all rows.
func (r *TaskRepository) List(ctx context.Context, userID string, status domain.Status) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if status != "" {
		query = `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`
		args = append(args, status)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, wrapDBError("list tasks", err)
		}
		res = append(res, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list tasks", err)
	}
	return res, nil
}

// Update overwrites the full row by id.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.UpdatedAt,
	)
	if err != nil {
		return wrapDBError("update task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "update task: not found")
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return wrapDBError("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "delete task: not found")
	}
	return nil
}
