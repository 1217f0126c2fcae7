package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
)

// Scheduler turns a snapshot of projects into a multi-day block schedule.
// It holds no state; every method is a pure function of its arguments.
type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// Generate builds a schedule of days consecutive calendar days starting at start.
func (s *Scheduler) Generate(projects []models.Project, start time.Time, days int, schedule models.WorkSchedule) (models.ScheduleResult, error) {
	blocks := s.BuildBlocks(projects)

	daySchedules, placed, err := s.PackDays(start, days, schedule, blocks)
	if err != nil {
		return models.ScheduleResult{}, err
	}

	return models.ScheduleResult{
		Schedule:          daySchedules,
		TotalTaskBlocks:   len(blocks),
		ScheduledBlocks:   placed,
		AvailableProjects: len(projects),
	}, nil
}

// EligibleTasks returns the tasks of project that can be worked on now.
// A sequential project exposes only its lowest ordered incomplete task.
func (s *Scheduler) EligibleTasks(project models.Project) []models.Task {
	incomplete := project.IncompleteTasks()
	if !project.HasSequentialTasks {
		return incomplete
	}

	sortByOrder(incomplete)
	if len(incomplete) == 0 {
		return []models.Task{}
	}
	return incomplete[:1]
}

// sortByOrder orders tasks by task order, unordered tasks last. Ties keep
// their input order.
func sortByOrder(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].OrderOr(constants.SequentialOrderLast) < tasks[j].OrderOr(constants.SequentialOrderLast)
	})
}

// ExpandTask splits a task into ceil(hours/2) blocks numbered from 1.
func (s *Scheduler) ExpandTask(task models.Task, project models.Project) []models.TaskBlock {
	total := int(math.Ceil(task.EstimatedHours / constants.BlockHours))
	if total < 1 {
		total = 1
	}

	blocks := make([]models.TaskBlock, total)
	for i := range blocks {
		blocks[i] = models.TaskBlock{
			TaskID:         task.ID,
			TaskName:       task.Name,
			ProjectID:      project.ID,
			ProjectName:    project.Name,
			Priority:       project.Priority,
			Category:       project.Category,
			DueDate:        project.DueDate,
			IsSequential:   project.HasSequentialTasks,
			TaskOrder:      task.TaskOrder,
			BlockNumber:    i + 1,
			TotalBlocks:    total,
			EstimatedHours: task.EstimatedHours,
		}
	}
	return blocks
}

// SortBlocks orders blocks by priority, then by project due date when both
// blocks have one. The sort is stable so equal blocks keep generation order.
func (s *Scheduler) SortBlocks(blocks []models.TaskBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		ri, rj := blocks[i].Priority.Rank(), blocks[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		if blocks[i].DueDate != "" && blocks[j].DueDate != "" {
			return blocks[i].DueDate < blocks[j].DueDate
		}
		return false
	})
}

// BuildBlocks resolves eligible tasks for every project, expands them into
// blocks and sorts the result.
func (s *Scheduler) BuildBlocks(projects []models.Project) []models.TaskBlock {
	blocks := []models.TaskBlock{}
	for _, project := range projects {
		for _, task := range s.EligibleTasks(project) {
			blocks = append(blocks, s.ExpandTask(task, project)...)
		}
	}
	s.SortBlocks(blocks)
	return blocks
}
