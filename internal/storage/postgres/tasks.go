package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/storage"
)

const taskColumns = `t.id, t.project_id, t.name, t.estimated_hours, t.actual_hours, t.task_order, t.completed, t.completed_at, t.created_at, t.updated_at`

const taskOrder = `ORDER BY t.task_order ASC NULLS LAST, t.created_at, t.id`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var order sql.NullInt64
	var completedAt sql.NullTime

	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.EstimatedHours, &t.ActualHours,
		&order, &t.Completed, &completedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}

	if order.Valid {
		t.TaskOrder = models.IntPtr(int(order.Int64))
	}
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		t.CompletedAt = &at
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
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

func nullableTime(at *time.Time) sql.NullTime {
	if at == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: at.UTC(), Valid: true}
}

func (s *Store) tasksForProject(ctx context.Context, projectID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.project_id = $1 `+taskOrder, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) tasksForUser(ctx context.Context, userID string, incompleteOnly bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.user_id = $1`
	if incompleteOnly {
		query += ` AND NOT t.completed`
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
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = $1`, t.ProjectID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", t.ProjectID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, name, estimated_hours, actual_hours, task_order, completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.ProjectID, t.Name, t.EstimatedHours, t.ActualHours, nullableOrder(t.TaskOrder),
		t.Completed, nullableTime(t.CompletedAt), t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, storage.ErrNotLoaded
	}

	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id))
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
		SET name = $1, estimated_hours = $2, actual_hours = $3, task_order = $4, completed = $5, completed_at = $6, updated_at = $7
		WHERE id = $8`,
		t.Name, t.EstimatedHours, t.ActualHours, nullableOrder(t.TaskOrder), t.Completed,
		nullableTime(t.CompletedAt), t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireRow(res, "task", t.ID)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireRow(res, "task", id)
}

func (s *Store) CompleteTask(ctx context.Context, id string, at time.Time) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, storage.ErrNotLoaded
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET completed = TRUE, completed_at = $1, actual_hours = estimated_hours, updated_at = $1
		WHERE id = $2 AND NOT completed`, at.UTC(), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to complete task: %w", err)
	}
	return s.GetTask(ctx, id)
}
