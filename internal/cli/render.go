package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/taskflow/internal/models"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(16)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(22)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

var priorityColors = map[models.Priority]lipgloss.Color{
	models.PriorityImmediate:     lipgloss.Color("196"),
	models.PriorityUrgent:        lipgloss.Color("208"),
	models.PriorityUsual:         lipgloss.Color("39"),
	models.PriorityIfYouHaveTime: lipgloss.Color("245"),
	models.PriorityDoWhenever:    lipgloss.Color("240"),
}

func priorityBadge(p models.Priority) string {
	return lipgloss.NewStyle().Foreground(priorityColors[p]).Render(string(p))
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderSchedule(w io.Writer, result models.ScheduleResult) {
	if len(result.Schedule) == 0 {
		fmt.Fprintln(w, warningStyle.Render("No working days in range. Check your hours with 'taskflow hours show'."))
		return
	}

	for i, day := range result.Schedule {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, dayStyle.Render(fmt.Sprintf("%s %s", day.DayName, day.Date)))
		if len(day.Slots) == 0 {
			fmt.Fprintln(w, "  "+openStyle.Render("(window too short for a block)"))
		}
		for _, slot := range day.Slots {
			fmt.Fprintln(w, "  "+renderSlot(slot))
		}
	}

	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d of %d blocks scheduled across %d project(s)",
		result.ScheduledBlocks, result.TotalTaskBlocks, result.AvailableProjects)
	if result.ScheduledBlocks < result.TotalTaskBlocks {
		summary = warningStyle.Render(summary + "; extend --days or your hours to fit the rest")
	}
	fmt.Fprintln(w, summary)
}

func renderSlot(slot models.Slot) string {
	if slot.IsOpen() {
		return timeStyle.Render(slot.Time) + openStyle.Render(slot.Task)
	}

	details := []string{*slot.Project, *slot.BlockInfo}
	if slot.IsSequential && slot.TaskOrder != nil {
		details = append(details, fmt.Sprintf("step %d", *slot.TaskOrder))
	}
	return timeStyle.Render(slot.Time) +
		taskStyle.Render(slot.Task) + " " +
		priorityBadge(*slot.Priority) + " " +
		detailStyle.Render("("+strings.Join(details, ", ")+")")
}

func renderStats(w io.Writer, stats models.Stats) {
	rows := []struct {
		label string
		value string
	}{
		{"Projects", fmt.Sprintf("%d (%d active)", stats.TotalProjects, stats.ActiveProjects)},
		{"Tasks", fmt.Sprintf("%d (%d completed)", stats.TotalTasks, stats.CompletedTasks)},
		{"Remaining hours", fmt.Sprintf("%.1f", stats.TotalEstimatedHours)},
		{"Blocked tasks", fmt.Sprintf("%d", stats.BlockedTasks)},
		{"Completion rate", fmt.Sprintf("%d%%", stats.CompletionRate)},
	}
	for _, row := range rows {
		fmt.Fprintln(w, labelStyle.Render(row.label)+row.value)
	}
}

func renderProjects(w io.Writer, projects []models.Project, showCompleted bool) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found")
		return
	}

	for i, p := range projects {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := taskStyle.Render(p.Name) + " " + priorityBadge(p.Priority)
		meta := []string{string(p.Category)}
		if p.HasDueDate() {
			meta = append(meta, "due "+p.DueDate)
		}
		if p.HasSequentialTasks {
			meta = append(meta, "sequential")
		}
		fmt.Fprintln(w, header+" "+detailStyle.Render("("+strings.Join(meta, ", ")+")"))
		fmt.Fprintln(w, "  "+openStyle.Render(p.ID))

		for _, t := range p.Tasks {
			if t.Completed && !showCompleted {
				continue
			}
			fmt.Fprintln(w, "  "+renderTask(t))
		}
	}
}

func renderTask(t models.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = doneStyle.Render("[x]")
	}
	order := ""
	if t.TaskOrder != nil {
		order = fmt.Sprintf("%d. ", *t.TaskOrder)
	}
	return fmt.Sprintf("%s %s%s %s %s", mark, order, t.Name,
		detailStyle.Render(strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)+"h"), openStyle.Render(t.ID))
}

func renderWorkSchedule(w io.Writer, schedule models.WorkSchedule) {
	for _, day := range models.Weekdays {
		window, ok := schedule[day]
		value := openStyle.Render("off")
		if ok && window.Enabled {
			value = fmt.Sprintf("%s - %s", window.Start, window.End)
		}
		fmt.Fprintln(w, labelStyle.Render(day)+value)
	}
}
