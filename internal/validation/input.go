package validation

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/taskflow/internal/constants"
	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/utils"
)

// ValidateDays checks the schedule horizon.
func ValidateDays(days int) error {
	if days < constants.MinScheduleDays || days > constants.MaxScheduleDays {
		return apperrors.Validation("days", "must be between %d and %d, got %d",
			constants.MinScheduleDays, constants.MaxScheduleDays, days)
	}
	return nil
}

// ValidateWorkSchedule checks every supplied weekday window. Partial
// schedules are allowed; unknown weekday keys are not, and neither are two
// keys naming the same weekday in different case. Keys are checked in
// sorted order so the reported error does not depend on map order.
func ValidateWorkSchedule(schedule models.WorkSchedule) error {
	seen := make(map[string]bool, len(schedule))
	for _, day := range slices.Sorted(maps.Keys(schedule)) {
		window := schedule[day]
		key := strings.ToLower(day)
		if !isWeekdayKey(key) {
			return apperrors.Validation("workSchedule", "unknown weekday %q", day)
		}
		if seen[key] {
			return apperrors.Validation("workSchedule", "duplicate weekday %q", day)
		}
		seen[key] = true
		if !utils.ValidateTimeFormat(window.Start) {
			return apperrors.Validation("workSchedule."+key+".start", "invalid time %q (want HH:MM)", window.Start)
		}
		if !utils.ValidateTimeFormat(window.End) {
			return apperrors.Validation("workSchedule."+key+".end", "invalid time %q (want HH:MM)", window.End)
		}
	}
	return nil
}

func isWeekdayKey(key string) bool {
	for _, day := range models.Weekdays {
		if day == key {
			return true
		}
	}
	return false
}

// ValidateProject checks user supplied project fields.
func ValidateProject(p models.Project) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if !p.Priority.Valid() {
		return apperrors.Validation("priority", "invalid priority %q", p.Priority)
	}
	if !p.Category.Valid() {
		return apperrors.Validation("category", "invalid category %q", p.Category)
	}
	if p.DueDate != "" && !utils.ValidateDateFormat(p.DueDate) {
		return apperrors.Validation("dueDate", "invalid date %q (want YYYY-MM-DD)", p.DueDate)
	}
	return nil
}

// ValidateTask checks user supplied task fields.
func ValidateTask(t models.Task) error {
	if err := validateName(t.Name); err != nil {
		return err
	}
	if t.EstimatedHours < constants.MinEstimatedHours || t.EstimatedHours > constants.MaxEstimatedHours {
		return apperrors.Validation("estimatedHours", "must be between %.1f and %.2f, got %g",
			constants.MinEstimatedHours, constants.MaxEstimatedHours, t.EstimatedHours)
	}
	if t.TaskOrder != nil && *t.TaskOrder < 1 {
		return apperrors.Validation("taskOrder", "must be a positive integer, got %d", *t.TaskOrder)
	}
	return nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return apperrors.Validation("name", "cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > constants.MaxNameLength {
		return apperrors.Validation("name", "must be at most %d characters", constants.MaxNameLength)
	}
	return nil
}
