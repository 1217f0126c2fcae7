package models

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityImmediate     Priority = "immediate"
	PriorityUrgent        Priority = "urgent"
	PriorityUsual         Priority = "usual"
	PriorityIfYouHaveTime Priority = "if-you-have-time"
	PriorityDoWhenever    Priority = "do-whenever"
)

// PriorityOrder lists priorities from most to least pressing.
var PriorityOrder = []Priority{
	PriorityImmediate,
	PriorityUrgent,
	PriorityUsual,
	PriorityIfYouHaveTime,
	PriorityDoWhenever,
}

// Rank returns the position of p in PriorityOrder. Unknown values rank
// after every known priority.
func (p Priority) Rank() int {
	for i, candidate := range PriorityOrder {
		if candidate == p {
			return i
		}
	}
	return len(PriorityOrder)
}

func (p Priority) Valid() bool {
	return p.Rank() < len(PriorityOrder)
}

// ParsePriority accepts the canonical hyphenated names as well as the
// space separated spellings ("if you have time").
func ParsePriority(s string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.Join(strings.Fields(normalized), "-")
	p := Priority(normalized)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (want one of %s)", s, joinPriorities())
	}
	return p, nil
}

func joinPriorities() string {
	names := make([]string, len(PriorityOrder))
	for i, p := range PriorityOrder {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

type Category string

const (
	CategoryProfessional Category = "professional"
	CategoryPersonal     Category = "personal"
	CategoryHome         Category = "home"
	CategorySocial       Category = "social"
)

var Categories = []Category{
	CategoryProfessional,
	CategoryPersonal,
	CategoryHome,
	CategorySocial,
}

func (c Category) Valid() bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		names := make([]string, len(Categories))
		for i, cat := range Categories {
			names[i] = string(cat)
		}
		return "", fmt.Errorf("invalid category %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return c, nil
}

type Project struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Name               string    `json:"name"`
	Priority           Priority  `json:"priority"`
	Category           Category  `json:"category"`
	DueDate            string    `json:"dueDate,omitempty"` // YYYY-MM-DD format
	HasSequentialTasks bool      `json:"hasSequentialTasks"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Tasks              []Task    `json:"tasks"`
}

// IncompleteTasks returns the project's incomplete tasks in their stored order.
func (p Project) IncompleteTasks() []Task {
	var incomplete []Task
	for _, t := range p.Tasks {
		if !t.Completed {
			incomplete = append(incomplete, t)
		}
	}
	return incomplete
}

func (p Project) HasDueDate() bool {
	return p.DueDate != ""
}
