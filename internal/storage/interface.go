package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/taskflow/internal/models"
)

// ErrNotFound is returned, wrapped, when a project or task id is unknown.
var ErrNotFound = errors.New("not found")

// ErrNotLoaded is returned when a provider is used before Init or Load.
var ErrNotLoaded = errors.New("storage not loaded")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Projects
	AddProject(ctx context.Context, p models.Project) error
	// GetProject returns the project with all of its tasks.
	GetProject(ctx context.Context, id string) (models.Project, error)
	UpdateProject(ctx context.Context, p models.Project) error
	// DeleteProject removes the project and every task it owns.
	DeleteProject(ctx context.Context, id string) error
	// ListProjects returns every project of the user with all tasks.
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	// ListProjectsWithIncompleteTasks returns every project of the user
	// ordered by due date (projects without one last, then by creation),
	// each carrying only its incomplete tasks ordered by task order
	// (unordered last) and creation time.
	ListProjectsWithIncompleteTasks(ctx context.Context, userID string) ([]models.Project, error)

	// Tasks
	AddTask(ctx context.Context, t models.Task) error
	GetTask(ctx context.Context, id string) (models.Task, error)
	// GetTaskWithProject returns the task and its project carrying all
	// sibling tasks, completed ones included.
	GetTaskWithProject(ctx context.Context, id string) (models.Task, models.Project, error)
	UpdateTask(ctx context.Context, t models.Task) error
	DeleteTask(ctx context.Context, id string) error
	// CompleteTask marks the task completed at the given time. Completing
	// an already completed task leaves it unchanged.
	CompleteTask(ctx context.Context, id string, at time.Time) (models.Task, error)

	// Settings
	// GetWorkSchedule returns ErrNotFound when the user never saved one.
	GetWorkSchedule(ctx context.Context, userID string) (models.WorkSchedule, error)
	SaveWorkSchedule(ctx context.Context, userID string, schedule models.WorkSchedule) error

	// Utils
	GetConfigPath() string
}
