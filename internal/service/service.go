// Package service ties the scheduling engine to a storage.Provider and is
// the single entry point shared by the CLI and the HTTP server.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/taskflow/internal/constants"
	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/logger"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/scheduler"
	"github.com/julianstephens/taskflow/internal/storage"
	"github.com/julianstephens/taskflow/internal/utils"
	"github.com/julianstephens/taskflow/internal/validation"
)

type ScheduleService struct {
	store     storage.Provider
	scheduler *scheduler.Scheduler

	now          func() time.Time
	location     *time.Location
	baseSchedule models.WorkSchedule
	defaultDays  int
}

type Option func(*ScheduleService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ScheduleService) { s.now = now }
}

// WithLocation sets the zone used to decide which day is today.
func WithLocation(loc *time.Location) Option {
	return func(s *ScheduleService) { s.location = loc }
}

// WithBaseSchedule sets the working hours used before stored and
// per-request overrides are applied.
func WithBaseSchedule(schedule models.WorkSchedule) Option {
	return func(s *ScheduleService) { s.baseSchedule = schedule }
}

// WithDefaultDays sets the horizon used when a caller passes 0 days.
func WithDefaultDays(days int) Option {
	return func(s *ScheduleService) { s.defaultDays = days }
}

func New(store storage.Provider, sched *scheduler.Scheduler, opts ...Option) *ScheduleService {
	s := &ScheduleService{
		store:        store,
		scheduler:    sched,
		now:          time.Now,
		location:     time.Local,
		baseSchedule: models.DefaultWorkSchedule(),
		defaultDays:  constants.DefaultScheduleDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is midnight of the current day in the service's location.
func (s *ScheduleService) Today() time.Time {
	return utils.StartOfDay(s.now().In(s.location))
}

// DefaultDays is the horizon callers use when the user did not pick one.
func (s *ScheduleService) DefaultDays() int {
	return s.defaultDays
}

// GenerateSchedule plans days calendar days starting today. overrides
// replace the effective working hours per weekday for this call only.
func (s *ScheduleService) GenerateSchedule(ctx context.Context, userID string, overrides models.WorkSchedule, days int) (models.ScheduleResult, error) {
	if err := validation.ValidateDays(days); err != nil {
		return models.ScheduleResult{}, err
	}
	if err := validation.ValidateWorkSchedule(overrides); err != nil {
		return models.ScheduleResult{}, err
	}

	schedule, err := s.effectiveSchedule(ctx, userID)
	if err != nil {
		return models.ScheduleResult{}, err
	}
	schedule = schedule.Merge(overrides)

	projects, err := s.store.ListProjectsWithIncompleteTasks(ctx, userID)
	if err != nil {
		return models.ScheduleResult{}, s.fail("generate schedule", err, "user", userID)
	}

	result, err := s.scheduler.Generate(projects, s.Today(), days, schedule)
	if err != nil {
		return models.ScheduleResult{}, err
	}

	logger.Debug("Generated schedule", "user", userID, "days", days,
		"blocks", result.TotalTaskBlocks, "scheduled", result.ScheduledBlocks)
	return result, nil
}

// GetSchedulingStats summarizes every project of the user.
func (s *ScheduleService) GetSchedulingStats(ctx context.Context, userID string) (models.Stats, error) {
	projects, err := s.store.ListProjects(ctx, userID)
	if err != nil {
		return models.Stats{}, s.fail("get scheduling stats", err, "user", userID)
	}
	return s.scheduler.Stats(projects), nil
}

// UpdateScheduleAfterCompletion reports what a completed task unlocked in
// its project.
func (s *ScheduleService) UpdateScheduleAfterCompletion(ctx context.Context, taskID string) (models.CompletionUpdate, error) {
	_, project, err := s.store.GetTaskWithProject(ctx, taskID)
	if err != nil {
		return models.CompletionUpdate{}, s.lookupErr("task", taskID, "update schedule after completion", err)
	}
	return s.scheduler.CompletionUpdate(project), nil
}

// CompleteTask marks the task done now and returns the follow-up update.
// Completing a finished task again changes nothing.
func (s *ScheduleService) CompleteTask(ctx context.Context, taskID string) (models.Task, models.CompletionUpdate, error) {
	task, err := s.store.CompleteTask(ctx, taskID, s.now().UTC())
	if err != nil {
		return models.Task{}, models.CompletionUpdate{}, s.lookupErr("task", taskID, "complete task", err)
	}

	update, err := s.UpdateScheduleAfterCompletion(ctx, taskID)
	if err != nil {
		return models.Task{}, models.CompletionUpdate{}, err
	}

	logger.Info("Task completed", "task", taskID, "project_completed", update.ProjectCompleted)
	return task, update, nil
}

// GetWorkSchedule returns the base working hours with the user's saved
// overrides applied.
func (s *ScheduleService) GetWorkSchedule(ctx context.Context, userID string) (models.WorkSchedule, error) {
	return s.effectiveSchedule(ctx, userID)
}

// SaveWorkSchedule stores windows for the given weekdays, keeping
// previously saved weekdays that are not mentioned.
func (s *ScheduleService) SaveWorkSchedule(ctx context.Context, userID string, schedule models.WorkSchedule) (models.WorkSchedule, error) {
	if err := validation.ValidateWorkSchedule(schedule); err != nil {
		return nil, err
	}

	stored, err := s.storedSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveWorkSchedule(ctx, userID, stored.Merge(schedule)); err != nil {
		return nil, s.fail("save work schedule", err, "user", userID)
	}
	return s.effectiveSchedule(ctx, userID)
}

func (s *ScheduleService) effectiveSchedule(ctx context.Context, userID string) (models.WorkSchedule, error) {
	stored, err := s.storedSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.baseSchedule.Merge(stored), nil
}

func (s *ScheduleService) storedSchedule(ctx context.Context, userID string) (models.WorkSchedule, error) {
	stored, err := s.store.GetWorkSchedule(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.WorkSchedule{}, nil
	}
	if err != nil {
		return nil, s.fail("load work schedule", err, "user", userID)
	}
	return stored, nil
}

// fail logs the store error and hides it behind a SchedulingFailure.
func (s *ScheduleService) fail(op string, err error, keyvals ...interface{}) error {
	logger.Error("Storage operation failed", append([]interface{}{"op", op, "error", err}, keyvals...)...)
	return apperrors.Failure(op, err)
}

func (s *ScheduleService) lookupErr(resource, id, op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound(resource, id)
	}
	return s.fail(op, err, resource, id)
}
