package models

import "time"

type Task struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"projectId"`
	Name           string     `json:"name"`
	EstimatedHours float64    `json:"estimatedHours"`
	ActualHours    float64    `json:"actualHours"`
	TaskOrder      *int       `json:"taskOrder"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// OrderOr returns the task order, or fallback when the task has none.
func (t Task) OrderOr(fallback int) int {
	if t.TaskOrder == nil {
		return fallback
	}
	return *t.TaskOrder
}

// Complete marks the task done. Real elapsed time is not tracked, so the
// actual hours mirror the estimate.
func (t *Task) Complete(at time.Time) {
	if t.Completed {
		return
	}
	t.Completed = true
	t.CompletedAt = &at
	t.ActualHours = t.EstimatedHours
	t.UpdatedAt = at
}

// IntPtr is a convenience for building optional task orders.
func IntPtr(v int) *int {
	return &v
}
