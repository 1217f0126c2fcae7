package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/validation"
)

// ProjectInput carries the fields of a new project. Empty priority and
// category fall back to usual and personal.
type ProjectInput struct {
	Name               string          `json:"name"`
	Priority           models.Priority `json:"priority"`
	Category           models.Category `json:"category"`
	DueDate            string          `json:"dueDate"`
	HasSequentialTasks bool            `json:"hasSequentialTasks"`
}

// ProjectPatch changes only the fields that are set. An empty DueDate
// clears the due date.
type ProjectPatch struct {
	Name               *string          `json:"name"`
	Priority           *models.Priority `json:"priority"`
	Category           *models.Category `json:"category"`
	DueDate            *string          `json:"dueDate"`
	HasSequentialTasks *bool            `json:"hasSequentialTasks"`
}

type TaskInput struct {
	Name           string  `json:"name"`
	EstimatedHours float64 `json:"estimatedHours"`
	TaskOrder      *int    `json:"taskOrder"`
}

// TaskPatch changes only the fields that are set. ClearOrder drops the
// task order.
type TaskPatch struct {
	Name           *string  `json:"name"`
	EstimatedHours *float64 `json:"estimatedHours"`
	TaskOrder      *int     `json:"taskOrder"`
	ClearOrder     bool     `json:"clearOrder"`
}

func (s *ScheduleService) CreateProject(ctx context.Context, userID string, in ProjectInput) (models.Project, error) {
	now := s.now().UTC()
	project := models.Project{
		ID:                 uuid.New().String(),
		UserID:             userID,
		Name:               strings.TrimSpace(in.Name),
		Priority:           in.Priority,
		Category:           in.Category,
		DueDate:            strings.TrimSpace(in.DueDate),
		HasSequentialTasks: in.HasSequentialTasks,
		CreatedAt:          now,
		UpdatedAt:          now,
		Tasks:              []models.Task{},
	}
	if project.Priority == "" {
		project.Priority = models.PriorityUsual
	}
	if project.Category == "" {
		project.Category = models.CategoryPersonal
	}
	if err := validation.ValidateProject(project); err != nil {
		return models.Project{}, err
	}

	if err := s.store.AddProject(ctx, project); err != nil {
		return models.Project{}, s.fail("create project", err, "user", userID)
	}
	return project, nil
}

func (s *ScheduleService) GetProject(ctx context.Context, id string) (models.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, s.lookupErr("project", id, "get project", err)
	}
	return project, nil
}

// ListProjects returns the user's projects with all of their tasks.
func (s *ScheduleService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	projects, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, s.fail("list projects", err, "user", userID)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (s *ScheduleService) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (models.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	if patch.Name != nil {
		project.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Priority != nil {
		project.Priority = *patch.Priority
	}
	if patch.Category != nil {
		project.Category = *patch.Category
	}
	if patch.DueDate != nil {
		project.DueDate = strings.TrimSpace(*patch.DueDate)
	}
	if patch.HasSequentialTasks != nil {
		project.HasSequentialTasks = *patch.HasSequentialTasks
	}
	if err := validation.ValidateProject(project); err != nil {
		return models.Project{}, err
	}

	project.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return models.Project{}, s.lookupErr("project", id, "update project", err)
	}
	return project, nil
}

// DeleteProject removes the project together with its tasks.
func (s *ScheduleService) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return s.lookupErr("project", id, "delete project", err)
	}
	return nil
}

func (s *ScheduleService) CreateTask(ctx context.Context, projectID string, in TaskInput) (models.Task, error) {
	now := s.now().UTC()
	task := models.Task{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		Name:           strings.TrimSpace(in.Name),
		EstimatedHours: in.EstimatedHours,
		TaskOrder:      in.TaskOrder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validation.ValidateTask(task); err != nil {
		return models.Task{}, err
	}

	// Surface an unknown project as NotFound rather than a store failure.
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return models.Task{}, err
	}

	if err := s.store.AddTask(ctx, task); err != nil {
		return models.Task{}, s.lookupErr("project", projectID, "create task", err)
	}
	return task, nil
}

func (s *ScheduleService) GetTask(ctx context.Context, id string) (models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, s.lookupErr("task", id, "get task", err)
	}
	return task, nil
}

func (s *ScheduleService) UpdateTask(ctx context.Context, id string, patch TaskPatch) (models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if patch.Name != nil {
		task.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.EstimatedHours != nil {
		task.EstimatedHours = *patch.EstimatedHours
		// Completed tasks record their estimate as the hours spent.
		if task.Completed {
			task.ActualHours = task.EstimatedHours
		}
	}
	if patch.TaskOrder != nil {
		task.TaskOrder = models.IntPtr(*patch.TaskOrder)
	}
	if patch.ClearOrder {
		task.TaskOrder = nil
	}
	if err := validation.ValidateTask(task); err != nil {
		return models.Task{}, err
	}

	task.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return models.Task{}, s.lookupErr("task", id, "update task", err)
	}
	return task, nil
}

func (s *ScheduleService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return s.lookupErr("task", id, "delete task", err)
	}
	return nil
}
