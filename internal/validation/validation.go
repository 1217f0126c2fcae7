package validation

import (
	"fmt"
	"sort"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTaskOrder ConflictType = "duplicate_task_order"
	ConflictMissingTaskOrder   ConflictType = "missing_task_order"
	ConflictOverdueProject     ConflictType = "overdue_project"
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
	ConflictEmptyWorkWindow    ConflictType = "empty_work_window"
	ConflictTruncatedWindow    ConflictType = "truncated_work_window"
	ConflictNoWorkingDays      ConflictType = "no_working_days"
)

// Conflict represents a detected problem in stored projects or the work schedule
type Conflict struct {
	Type        ConflictType
	Description string
	ProjectID   string   // Owning project (if applicable)
	Items       []string // Task/project/day names involved
	TaskIDs     []string // IDs of tasks involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator inspects stored data for states the scheduler accepts but
// that usually mean a data entry mistake.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateProjects checks projects and their tasks. today (YYYY-MM-DD)
// is used to flag overdue projects; pass "" to skip that check.
func (v *Validator) ValidateProjects(projects []models.Project, today string) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, p := range projects {
		incomplete := p.IncompleteTasks()

		if p.DueDate != "" {
			if !utils.ValidateDateFormat(p.DueDate) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidDateTime,
					Description: fmt.Sprintf("Project \"%s\" has invalid due date: %s", p.Name, p.DueDate),
					ProjectID:   p.ID,
					Items:       []string{p.Name},
				})
			} else if today != "" && p.DueDate < today && len(incomplete) > 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOverdueProject,
					Description: fmt.Sprintf("Project \"%s\" was due %s and has %d incomplete task(s)", p.Name, p.DueDate, len(incomplete)),
					ProjectID:   p.ID,
					Items:       []string{p.Name},
				})
			}
		}

		if !p.HasSequentialTasks {
			continue
		}

		// Equal orders fall back to creation order, which is rarely intended.
		byOrder := make(map[int][]models.Task)
		for _, t := range incomplete {
			if t.TaskOrder == nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingTaskOrder,
					Description: fmt.Sprintf("Task \"%s\" in sequential project \"%s\" has no order and runs last", t.Name, p.Name),
					ProjectID:   p.ID,
					Items:       []string{t.Name},
					TaskIDs:     []string{t.ID},
				})
				continue
			}
			byOrder[*t.TaskOrder] = append(byOrder[*t.TaskOrder], t)
		}

		orders := make([]int, 0, len(byOrder))
		for order := range byOrder {
			orders = append(orders, order)
		}
		sort.Ints(orders)

		for _, order := range orders {
			tasks := byOrder[order]
			if len(tasks) < 2 {
				continue
			}
			names := make([]string, len(tasks))
			ids := make([]string, len(tasks))
			for i, t := range tasks {
				names[i] = t.Name
				ids[i] = t.ID
			}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTaskOrder,
				Description: fmt.Sprintf("Sequential project \"%s\" has %d tasks with order %d: %v", p.Name, len(tasks), order, names),
				ProjectID:   p.ID,
				Items:       names,
				TaskIDs:     ids,
			})
		}
	}

	return result
}

// ValidateWorkSchedule reports windows that produce fewer slots than
// their clock times suggest. Slot counts only use the hour component.
func (v *Validator) ValidateWorkSchedule(schedule models.WorkSchedule) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	enabled := 0
	for _, day := range models.Weekdays {
		window, ok := schedule[day]
		if !ok || !window.Enabled {
			continue
		}
		enabled++

		start, errStart := utils.ParseTime(window.Start)
		end, errEnd := utils.ParseTime(window.End)
		if errStart != nil || errEnd != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("%s: invalid work window %s-%s", day, window.Start, window.End),
				Items:       []string{day},
			})
			continue
		}

		hours := end.Hour() - start.Hour()
		if hours < constants.BlockHours {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictEmptyWorkWindow,
				Description: fmt.Sprintf("%s: work window %s-%s is enabled but fits no %d-hour slot", day, window.Start, window.End, constants.BlockHours),
				Items:       []string{day},
			})
			continue
		}

		if start.Minute() != 0 || end.Minute() != 0 || hours%constants.BlockHours != 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictTruncatedWindow,
				Description: fmt.Sprintf("%s: work window %s-%s is scheduled as %d slot(s) starting %02d:00",
					day, window.Start, window.End, hours/constants.BlockHours, start.Hour()),
				Items: []string{day},
			})
		}
	}

	if enabled == 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictNoWorkingDays,
			Description: "No working days are enabled; schedules will be empty",
		})
	}

	return result
}
