package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// TaskRepositoryPG implements domain.TaskRepository.
type TaskRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewTaskRepository creates a task repository backed by PostgreSQL.
func NewTaskRepository(sql infra.SQLExecutor) *TaskRepositoryPG {
	return &TaskRepositoryPG{sql: sql}
}

// Create inserts a new task.
func (r *TaskRepositoryPG) Create(ctx context.Context, t *domain.Task) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertTask,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.Deadline,
		t.ProjectID,
		t.AssigneeID,
	)
	return mapErr(row.Scan(&t.CreatedAt, &t.UpdatedAt))
}

// GetByID fetches a task.
func (r *TaskRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(r.sql.QueryRow(ctx, sqlinline.QSelectTaskByID, id))
}

// Update writes every mutable field except status.
func (r *TaskRepositoryPG) Update(ctx context.Context, t *domain.Task) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateTask,
		t.ID,
		t.Title,
		t.Description,
		string(t.Priority),
		t.Deadline,
		t.AssigneeID,
	)
	return mapErr(row.Scan(&t.UpdatedAt))
}

// UpdateStatus writes the status only.
func (r *TaskRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateTaskStatus, id, string(status))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a task and its edges.
func (r *TaskRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteTask, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns tasks matching filter, newest first.
func (r *TaskRepositoryPG) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	return listTasks(ctx, r.sql, sqlinline.QListTasks,
		f.ProjectID, f.AssigneeID, string(f.Status), string(f.Priority), f.MemberID)
}

// ListDueBetween returns unfinished tasks with a deadline in [from, to).
func (r *TaskRepositoryPG) ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	return listTasks(ctx, r.sql, sqlinline.QListTasksDueBetween, from, to)
}

// CountInOwnedProjects counts tasks across the user's projects.
func (r *TaskRepositoryPG) CountInOwnedProjects(ctx context.Context, userID string) (int, error) {
	return count(ctx, r.sql, sqlinline.QCountTasksInOwnedProjects, userID)
}

func listTasks(ctx context.Context, sql infra.SQLExecutor, query string, args ...any) ([]domain.Task, error) {
	rows, err := sql.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Deadline,
		&t.ProjectID,
		&t.AssigneeID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}
