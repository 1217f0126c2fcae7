package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/storage"
	"github.com/julianstephens/taskflow/internal/utils"
)

const taskColumns = `t.id, t.project_id, t.name, t.estimated_hours, t.actual_hours, t.task_order, t.completed, t.completed_at, t.created_at, t.updated_at`

// taskOrder puts tasks without an order last.
const taskOrder = `ORDER BY (t.task_order IS NULL), t.task_order, t.created_at, t.id`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var order sql.NullInt64
	var completedAt sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.EstimatedHours, &t.ActualHours,
		&order, &t.Completed, &completedAt, &createdAt, &updatedAt); err != nil {
		return models.Task{}, err
	}

	if order.Valid {
		t.TaskOrder = models.IntPtr(int(order.Int64))
	}
	if completedAt.Valid {
		at, err := utils.ParseTimestamp(completedAt.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %s: bad completed_at: %w", t.ID, err)
		}
		t.CompletedAt = &at
	}

	var err error
	if t.CreatedAt, err = utils.ParseTimestamp(createdAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s: bad created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = utils.ParseTimestamp(updatedAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s: bad updated_at: %w", t.ID, err)
	}
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func nullableOrder(order *int) sql.NullInt64 {
	if order == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*order), Valid: true}
}

func nullableTime(at *time.Time) sql.NullString {
	if at == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: utils.FormatTimestamp(*at), Valid: true}
}

func (s *Store) tasksForProject(ctx context.Context, projectID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.project_id = ? `+taskOrder, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) tasksForUser(ctx context.Context, userID string, incompleteOnly bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.user_id = ?`
	if incompleteOnly {
		query += ` AND t.completed = 0`
	}
	rows, err := s.db.QueryContext(ctx, query+` `+taskOrder, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) AddTask(ctx context.Context, t models.Task) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, t.ProjectID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", t.ProjectID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, name, estimated_hours, actual_hours, task_order, completed, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Name, t.EstimatedHours, t.ActualHours, nullableOrder(t.TaskOrder),
		t.Completed, nullableTime(t.CompletedAt), utils.FormatTimestamp(t.CreatedAt), utils.FormatTimestamp(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, storage.ErrNotLoaded
	}

	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
		}
		return models.Task{}, err
	}
	return t, nil
}

func (s *Store) GetTaskWithProject(ctx context.Context, id string) (models.Task, models.Project, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, models.Project{}, err
	}
	p, err := s.GetProject(ctx, t.ProjectID)
	if err != nil {
		return models.Task{}, models.Project{}, err
	}
	return t, p, nil
}

func (s *Store) UpdateTask(ctx context.Context, t models.Task) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, estimated_hours = ?, actual_hours = ?, task_order = ?, completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.EstimatedHours, t.ActualHours, nullableOrder(t.TaskOrder), t.Completed,
		nullableTime(t.CompletedAt), utils.FormatTimestamp(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireRow(res, "task", t.ID)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireRow(res, "task", id)
}

func (s *Store) CompleteTask(ctx context.Context, id string, at time.Time) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, storage.ErrNotLoaded
	}

	stamp := utils.FormatTimestamp(at)
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET completed = 1, completed_at = ?, actual_hours = estimated_hours, updated_at = ?
		WHERE id = ? AND completed = 0`, stamp, stamp, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to complete task: %w", err)
	}
	return s.GetTask(ctx, id)
}
