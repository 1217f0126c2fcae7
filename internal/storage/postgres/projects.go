package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/storage"
)

const projectColumns = `id, user_id, name, priority, category, to_char(due_date, 'YYYY-MM-DD'), has_sequential_tasks, created_at, updated_at`

const projectOrder = `ORDER BY due_date ASC NULLS LAST, created_at, id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	var priority, category string
	var dueDate sql.NullString

	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &priority, &category, &dueDate,
		&p.HasSequentialTasks, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Project{}, err
	}

	p.Priority = models.Priority(priority)
	p.Category = models.Category(category)
	p.DueDate = dueDate.String
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func nullableDate(date string) sql.NullString {
	return sql.NullString{String: date, Valid: date != ""}
}

func (s *Store) AddProject(ctx context.Context, p models.Project) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, priority, category, due_date, has_sequential_tasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.UserID, p.Name, string(p.Priority), string(p.Category), nullableDate(p.DueDate),
		p.HasSequentialTasks, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	if s.db == nil {
		return models.Project{}, storage.ErrNotLoaded
	}

	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, fmt.Errorf("project %s: %w", id, storage.ErrNotFound)
		}
		return models.Project{}, err
	}

	tasks, err := s.tasksForProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	p.Tasks = tasks
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p models.Project) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = $1, priority = $2, category = $3, due_date = $4, has_sequential_tasks = $5, updated_at = $6
		WHERE id = $7`,
		p.Name, string(p.Priority), string(p.Category), nullableDate(p.DueDate),
		p.HasSequentialTasks, p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(res, "project", p.ID)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	// tasks go with the project through ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireRow(res, "project", id)
}

func (s *Store) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.listProjects(ctx, userID, false)
}

func (s *Store) ListProjectsWithIncompleteTasks(ctx context.Context, userID string) ([]models.Project, error) {
	return s.listProjects(ctx, userID, true)
}

func (s *Store) listProjects(ctx context.Context, userID string, incompleteOnly bool) ([]models.Project, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE user_id = $1 `+projectOrder, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	index := map[string]int{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		p.Tasks = []models.Task{}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks, err := s.tasksForUser(ctx, userID, incompleteOnly)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if i, ok := index[t.ProjectID]; ok {
			projects[i].Tasks = append(projects[i].Tasks, t)
		}
	}
	return projects, nil
}

func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", resource, id, storage.ErrNotFound)
	}
	return nil
}
