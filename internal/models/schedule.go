package models

import (
	"strings"
	"time"

	"github.com/julianstephens/taskflow/internal/constants"
)

// WorkWindow is the working time range configured for one weekday.
type WorkWindow struct {
	Start   string `json:"start" yaml:"start"` // HH:MM format
	End     string `json:"end" yaml:"end"`     // HH:MM format
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// WorkSchedule maps lowercase weekday names ("monday") to their window.
type WorkSchedule map[string]WorkWindow

// Weekdays lists weekday keys in calendar order starting on Monday.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayKey returns the schedule key for a weekday.
func WeekdayKey(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// DefaultWorkSchedule is Monday to Friday 09:00-17:00, weekends disabled.
func DefaultWorkSchedule() WorkSchedule {
	schedule := WorkSchedule{}
	for _, day := range Weekdays[:5] {
		schedule[day] = WorkWindow{Start: constants.DefaultWeekdayStart, End: constants.DefaultWeekdayEnd, Enabled: true}
	}
	for _, day := range Weekdays[5:] {
		schedule[day] = WorkWindow{Start: constants.DefaultWeekendStart, End: constants.DefaultWeekendEnd, Enabled: false}
	}
	return schedule
}

// Merge returns a copy of s with every weekday present in overrides replaced.
func (s WorkSchedule) Merge(overrides WorkSchedule) WorkSchedule {
	merged := make(WorkSchedule, len(s)+len(overrides))
	for day, window := range s {
		merged[day] = window
	}
	for day, window := range overrides {
		merged[strings.ToLower(day)] = window
	}
	return merged
}

// For returns the window configured for wd.
func (s WorkSchedule) For(wd time.Weekday) (WorkWindow, bool) {
	window, ok := s[WeekdayKey(wd)]
	return window, ok
}

// TaskBlock is one schedulable chunk (at most two hours) of a task.
type TaskBlock struct {
	TaskID         string
	TaskName       string
	ProjectID      string
	ProjectName    string
	Priority       Priority
	Category       Category
	DueDate        string
	IsSequential   bool
	TaskOrder      *int
	BlockNumber    int
	TotalBlocks    int
	EstimatedHours float64
}

type Slot struct {
	Time           string    `json:"time"`
	Task           string    `json:"task"`
	TaskID         *string   `json:"taskId"`
	Project        *string   `json:"project"`
	Priority       *Priority `json:"priority"`
	Category       *Category `json:"category,omitempty"`
	BlockInfo      *string   `json:"blockInfo"`
	IsSequential   bool      `json:"isSequential"`
	TaskOrder      *int      `json:"taskOrder"`
	EstimatedHours *float64  `json:"estimatedHours,omitempty"`
}

// IsOpen reports whether no block was assigned to the slot.
func (s Slot) IsOpen() bool {
	return s.TaskID == nil
}

type DaySchedule struct {
	Date    string `json:"date"` // YYYY-MM-DD format
	DayName string `json:"dayName"`
	Slots   []Slot `json:"slots"`
}

type ScheduleResult struct {
	Schedule          []DaySchedule `json:"schedule"`
	TotalTaskBlocks   int           `json:"totalTaskBlocks"`
	ScheduledBlocks   int           `json:"scheduledBlocks"`
	AvailableProjects int           `json:"availableProjects"`
}

// CompletionUpdate describes what changed in a project after one of its
// tasks was completed.
type CompletionUpdate struct {
	NextTaskUnlocked *Task `json:"nextTaskUnlocked"`
	ProjectCompleted bool  `json:"projectCompleted"`
}

type Stats struct {
	TotalProjects       int     `json:"totalProjects"`
	ActiveProjects      int     `json:"activeProjects"`
	TotalTasks          int     `json:"totalTasks"`
	CompletedTasks      int     `json:"completedTasks"`
	TotalEstimatedHours float64 `json:"totalEstimatedHours"`
	BlockedTasks        int     `json:"blockedTasks"`
	CompletionRate      int     `json:"completionRate"`
}
