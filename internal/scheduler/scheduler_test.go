package scheduler

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/models"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

func mondayOnly() models.WorkSchedule {
	schedule := models.DefaultWorkSchedule()
	for _, day := range models.Weekdays[1:] {
		window := schedule[day]
		window.Enabled = false
		schedule[day] = window
	}
	return schedule
}

func TestExpandTask_BlockCount(t *testing.T) {
	s := New()
	project := models.Project{ID: "p1", Name: "Thesis", Priority: models.PriorityUsual}

	tests := []struct {
		hours float64
		want  int
	}{
		{0.1, 1},
		{1, 1},
		{2, 1},
		{2.5, 2},
		{4, 2},
		{6, 3},
		{7.9, 4},
		{99.99, 50},
	}

	for _, tt := range tests {
		blocks := s.ExpandTask(models.Task{ID: "t", Name: "Work", EstimatedHours: tt.hours}, project)
		if len(blocks) != tt.want {
			t.Errorf("ExpandTask(%.2fh) = %d blocks, want %d", tt.hours, len(blocks), tt.want)
			continue
		}
		for i, b := range blocks {
			if b.BlockNumber != i+1 || b.TotalBlocks != tt.want {
				t.Errorf("block %d numbered %d of %d", i, b.BlockNumber, b.TotalBlocks)
			}
			if b.EstimatedHours != tt.hours {
				t.Errorf("block carries %.2fh, want %.2fh", b.EstimatedHours, tt.hours)
			}
		}
	}

	if got := s.ExpandTask(models.Task{ID: "z"}, project); len(got) != 1 {
		t.Errorf("ExpandTask(0h) = %d blocks, want at least 1", len(got))
	}
}

func TestEligibleTasks_Sequential(t *testing.T) {
	s := New()

	project := models.Project{
		HasSequentialTasks: true,
		Tasks: []models.Task{
			{ID: "none", Name: "Unordered"},
			{ID: "two", Name: "Second", TaskOrder: models.IntPtr(2)},
			{ID: "one", Name: "First", TaskOrder: models.IntPtr(1)},
		},
	}

	got := s.EligibleTasks(project)
	if len(got) != 1 || got[0].ID != "one" {
		t.Fatalf("EligibleTasks() = %+v, want only task with order 1", got)
	}

	project.Tasks[2].Completed = true
	project.Tasks[1].Completed = true
	got = s.EligibleTasks(project)
	if len(got) != 1 || got[0].ID != "none" {
		t.Errorf("unordered task should be eligible last, got %+v", got)
	}

	project.Tasks[0].Completed = true
	if got := s.EligibleTasks(project); len(got) != 0 {
		t.Errorf("EligibleTasks() on completed project = %+v, want empty", got)
	}
}

func TestEligibleTasks_EqualOrderKeepsInputOrder(t *testing.T) {
	s := New()
	project := models.Project{
		HasSequentialTasks: true,
		Tasks: []models.Task{
			{ID: "b", TaskOrder: models.IntPtr(3)},
			{ID: "a", TaskOrder: models.IntPtr(3)},
			{ID: "c", TaskOrder: models.IntPtr(3)},
		},
	}

	for i := 0; i < 10; i++ {
		if got := s.EligibleTasks(project); got[0].ID != "b" {
			t.Fatalf("EligibleTasks() picked %q, want first in input order", got[0].ID)
		}
	}
}

func TestEligibleTasks_NonSequential(t *testing.T) {
	s := New()
	project := models.Project{
		Tasks: []models.Task{
			{ID: "a", TaskOrder: models.IntPtr(5)},
			{ID: "b", Completed: true},
			{ID: "c", TaskOrder: models.IntPtr(1)},
		},
	}

	got := s.EligibleTasks(project)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("EligibleTasks() = %+v, want [a c] in input order", got)
	}
}

func TestSortBlocks_PriorityFirst(t *testing.T) {
	s := New()
	projects := []models.Project{
		{ID: "usual", Name: "Garden", Priority: models.PriorityUsual, Tasks: []models.Task{
			{ID: "u1", EstimatedHours: 4},
			{ID: "u2", EstimatedHours: 2},
		}},
		{ID: "urgent", Name: "Taxes", Priority: models.PriorityUrgent, Tasks: []models.Task{
			{ID: "x1", EstimatedHours: 3},
		}},
	}

	blocks := s.BuildBlocks(projects)
	if len(blocks) != 5 {
		t.Fatalf("BuildBlocks() = %d blocks, want 5", len(blocks))
	}
	for i, b := range blocks[:2] {
		if b.ProjectID != "urgent" {
			t.Errorf("block %d from %q, want urgent project first", i, b.ProjectID)
		}
	}
	wantTasks := []string{"x1", "x1", "u1", "u1", "u2"}
	for i, b := range blocks {
		if b.TaskID != wantTasks[i] {
			t.Errorf("block %d task = %q, want %q", i, b.TaskID, wantTasks[i])
		}
	}
}

func TestSortBlocks_DueDateOnlyWhenBothPresent(t *testing.T) {
	s := New()
	blocks := []models.TaskBlock{
		{TaskID: "late", Priority: models.PriorityUsual, DueDate: "2026-06-01"},
		{TaskID: "early", Priority: models.PriorityUsual, DueDate: "2026-04-01"},
		{TaskID: "immediate", Priority: models.PriorityImmediate},
		{TaskID: "whenever", Priority: models.PriorityDoWhenever, DueDate: "2026-01-01"},
	}

	s.SortBlocks(blocks)

	want := []string{"immediate", "early", "late", "whenever"}
	for i, b := range blocks {
		if b.TaskID != want[i] {
			t.Errorf("position %d = %q, want %q", i, b.TaskID, want[i])
		}
	}

	// Without due dates on one side, equal priorities keep their order.
	ties := []models.TaskBlock{
		{TaskID: "first", Priority: models.PriorityUrgent, DueDate: "2026-09-01"},
		{TaskID: "second", Priority: models.PriorityUrgent},
		{TaskID: "third", Priority: models.PriorityUrgent},
	}
	s.SortBlocks(ties)
	for i, want := range []string{"first", "second", "third"} {
		if ties[i].TaskID != want {
			t.Errorf("tie position %d = %q, want %q", i, ties[i].TaskID, want)
		}
	}
}

func TestSlotCount(t *testing.T) {
	tests := []struct {
		name      string
		window    models.WorkWindow
		wantStart int
		wantCount int
		wantErr   bool
	}{
		{"full day", models.WorkWindow{Start: "09:00", End: "17:00"}, 9, 4, false},
		// Known limitation: minutes are ignored, so the trailing half hour is dropped.
		{"half hour dropped", models.WorkWindow{Start: "09:00", End: "16:30"}, 9, 3, false},
		{"late start minutes ignored", models.WorkWindow{Start: "09:45", End: "11:00"}, 9, 1, false},
		{"odd span", models.WorkWindow{Start: "10:00", End: "13:00"}, 10, 1, false},
		{"too short", models.WorkWindow{Start: "10:00", End: "11:00"}, 10, 0, false},
		{"negative span", models.WorkWindow{Start: "17:00", End: "09:00"}, 17, 0, false},
		{"bad start", models.WorkWindow{Start: "nine", End: "17:00"}, 0, 0, true},
		{"bad end", models.WorkWindow{Start: "09:00", End: "17"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, count, err := SlotCount(tt.window)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SlotCount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if start != tt.wantStart || count != tt.wantCount {
				t.Errorf("SlotCount() = (%d, %d), want (%d, %d)", start, count, tt.wantStart, tt.wantCount)
			}
		})
	}
}

func TestPackDays_SkipsDisabledDays(t *testing.T) {
	s := New()
	days, placed, err := s.PackDays(monday, 7, models.DefaultWorkSchedule(), nil)
	if err != nil {
		t.Fatalf("PackDays() error = %v", err)
	}
	if placed != 0 {
		t.Errorf("placed = %d, want 0", placed)
	}
	if len(days) != 5 {
		t.Fatalf("PackDays() produced %d days, want 5 weekdays", len(days))
	}
	if days[0].Date != "2026-03-02" || days[0].DayName != "Monday" {
		t.Errorf("first day = %s %s, want 2026-03-02 Monday", days[0].Date, days[0].DayName)
	}
	if days[4].Date != "2026-03-06" || days[4].DayName != "Friday" {
		t.Errorf("last day = %s %s, want 2026-03-06 Friday", days[4].Date, days[4].DayName)
	}
	for _, day := range days {
		if len(day.Slots) != 4 {
			t.Errorf("%s has %d slots, want 4", day.DayName, len(day.Slots))
		}
		for _, slot := range day.Slots {
			if !slot.IsOpen() {
				t.Errorf("%s %s should be open", day.DayName, slot.Time)
			}
		}
	}
}

func TestPackDays_CursorSpansDays(t *testing.T) {
	s := New()
	schedule := models.WorkSchedule{
		"monday":  {Start: "09:00", End: "13:00", Enabled: true},
		"tuesday": {Start: "14:00", End: "18:00", Enabled: true},
	}
	blocks := s.ExpandTask(models.Task{ID: "t1", Name: "Report", EstimatedHours: 6}, models.Project{Name: "Work", Priority: models.PriorityUrgent})

	days, placed, err := s.PackDays(monday, 3, schedule, blocks)
	if err != nil {
		t.Fatalf("PackDays() error = %v", err)
	}
	if placed != 3 {
		t.Errorf("placed = %d, want 3", placed)
	}
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2 (wednesday missing from schedule)", len(days))
	}

	tuesday := days[1].Slots
	if tuesday[0].Time != "14:00 - 16:00" || *tuesday[0].BlockInfo != "Block 3 of 3" {
		t.Errorf("tuesday first slot = %s %v, want 14:00 - 16:00 Block 3 of 3", tuesday[0].Time, *tuesday[0].BlockInfo)
	}
	if !tuesday[1].IsOpen() || tuesday[1].Time != "16:00 - 18:00" {
		t.Errorf("tuesday second slot should be open at 16:00 - 18:00, got %+v", tuesday[1])
	}
}

func TestPackDays_NegativeWindowStillEmitsDay(t *testing.T) {
	s := New()
	schedule := models.WorkSchedule{"monday": {Start: "17:00", End: "09:00", Enabled: true}}

	days, _, err := s.PackDays(monday, 1, schedule, nil)
	if err != nil {
		t.Fatalf("PackDays() error = %v", err)
	}
	if len(days) != 1 || len(days[0].Slots) != 0 {
		t.Errorf("PackDays() = %+v, want one day with no slots", days)
	}
}

func TestPackDays_InvalidWindow(t *testing.T) {
	s := New()
	schedule := models.WorkSchedule{"monday": {Start: "late", End: "17:00", Enabled: true}}

	_, _, err := s.PackDays(monday, 1, schedule, nil)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("PackDays() error = %v, want validation error", err)
	}
}

func sequentialProject() models.Project {
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return models.Project{
		ID:                 "p1",
		Name:               "Book",
		Priority:           models.PriorityUsual,
		Category:           models.CategoryPersonal,
		HasSequentialTasks: true,
		Tasks: []models.Task{
			{ID: "t1", ProjectID: "p1", Name: "Outline", EstimatedHours: 2, TaskOrder: models.IntPtr(1), Completed: true, CreatedAt: created},
			{ID: "t2", ProjectID: "p1", Name: "Draft", EstimatedHours: 4, TaskOrder: models.IntPtr(2), CreatedAt: created},
			{ID: "t3", ProjectID: "p1", Name: "Edit", EstimatedHours: 6, TaskOrder: models.IntPtr(3), CreatedAt: created},
		},
	}
}

func TestGenerate_MondayScenario(t *testing.T) {
	s := New()

	result, err := s.Generate([]models.Project{sequentialProject()}, monday, 1, mondayOnly())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.TotalTaskBlocks != 2 || result.ScheduledBlocks != 2 || result.AvailableProjects != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/2/1", result.TotalTaskBlocks, result.ScheduledBlocks, result.AvailableProjects)
	}
	if len(result.Schedule) != 1 {
		t.Fatalf("days = %d, want 1", len(result.Schedule))
	}

	slots := result.Schedule[0].Slots
	if len(slots) != 4 {
		t.Fatalf("slots = %d, want 4", len(slots))
	}

	wantTimes := []string{"09:00 - 11:00", "11:00 - 13:00", "13:00 - 15:00", "15:00 - 17:00"}
	for i, slot := range slots {
		if slot.Time != wantTimes[i] {
			t.Errorf("slot %d time = %q, want %q", i, slot.Time, wantTimes[i])
		}
	}

	for i, wantInfo := range []string{"Block 1 of 2", "Block 2 of 2"} {
		slot := slots[i]
		if slot.Task != "Draft" || slot.TaskID == nil || *slot.TaskID != "t2" {
			t.Errorf("slot %d = %+v, want Draft (t2)", i, slot)
			continue
		}
		if *slot.BlockInfo != wantInfo || *slot.Project != "Book" || !slot.IsSequential || *slot.TaskOrder != 2 {
			t.Errorf("slot %d details = %s %s %v %d", i, *slot.BlockInfo, *slot.Project, slot.IsSequential, *slot.TaskOrder)
		}
	}

	for _, slot := range slots[2:] {
		if slot.Task != "Open slot" || !slot.IsOpen() || slot.Priority != nil || slot.BlockInfo != nil || slot.IsSequential {
			t.Errorf("expected open slot, got %+v", slot)
		}
	}
}

func TestGenerate_OpenSlotJSON(t *testing.T) {
	s := New()
	result, err := s.Generate(nil, monday, 1, mondayOnly())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := json.Marshal(result.Schedule[0].Slots[0])
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"time":"09:00 - 11:00","task":"Open slot","taskId":null,"project":null,"priority":null,"blockInfo":null,"isSequential":false,"taskOrder":null}`
	if string(data) != want {
		t.Errorf("open slot JSON =\n%s\nwant\n%s", data, want)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	s := New()
	projects := []models.Project{
		sequentialProject(),
		{ID: "p2", Name: "Chores", Priority: models.PriorityUrgent, DueDate: "2026-03-10", Tasks: []models.Task{
			{ID: "c1", Name: "Laundry", EstimatedHours: 1},
			{ID: "c2", Name: "Dishes", EstimatedHours: 3},
		}},
		{ID: "p3", Name: "Reading", Priority: models.PriorityUrgent, DueDate: "2026-03-05", Tasks: []models.Task{
			{ID: "r1", Name: "Novel", EstimatedHours: 8},
		}},
	}

	first, err := s.Generate(projects, monday, 7, models.DefaultWorkSchedule())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := s.Generate(projects, monday, 7, models.DefaultWorkSchedule())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Error("Generate() is not deterministic for identical inputs")
	}

	// Urgent project due first leads; its four blocks fill Monday.
	if got := *first.Schedule[0].Slots[0].TaskID; got != "r1" {
		t.Errorf("first slot task = %q, want r1", got)
	}
}

func TestStats(t *testing.T) {
	s := New()

	empty := s.Stats(nil)
	if empty.CompletionRate != 0 || empty.TotalTasks != 0 {
		t.Errorf("Stats(nil) = %+v, want zero rate", empty)
	}

	projects := []models.Project{
		{HasSequentialTasks: true, Tasks: []models.Task{
			{EstimatedHours: 2, Completed: true},
			{EstimatedHours: 4},
			{EstimatedHours: 6},
			{EstimatedHours: 1},
		}},
		{Tasks: []models.Task{
			{EstimatedHours: 3, Completed: true},
			{EstimatedHours: 5, Completed: true},
			{EstimatedHours: 0.5},
		}},
		{Name: "finished", Tasks: []models.Task{}},
	}

	got := s.Stats(projects)
	want := models.Stats{
		TotalProjects:       3,
		ActiveProjects:      2,
		TotalTasks:          7,
		CompletedTasks:      3,
		TotalEstimatedHours: 11.5,
		BlockedTasks:        2,
		CompletionRate:      43,
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestCompletionUpdate(t *testing.T) {
	s := New()

	project := sequentialProject()
	update := s.CompletionUpdate(project)
	if update.ProjectCompleted || update.NextTaskUnlocked == nil || update.NextTaskUnlocked.ID != "t2" {
		t.Errorf("CompletionUpdate() = %+v, want t2 unlocked", update)
	}

	for i := range project.Tasks {
		project.Tasks[i].Completed = true
	}
	update = s.CompletionUpdate(project)
	if !update.ProjectCompleted || update.NextTaskUnlocked != nil {
		t.Errorf("CompletionUpdate() = %+v, want completed project", update)
	}

	loose := models.Project{Tasks: []models.Task{{ID: "a", Completed: true}, {ID: "b"}}}
	update = s.CompletionUpdate(loose)
	if update.ProjectCompleted || update.NextTaskUnlocked != nil {
		t.Errorf("non-sequential CompletionUpdate() = %+v, want nothing unlocked", update)
	}
	loose.Tasks[1].Completed = true
	if update = s.CompletionUpdate(loose); !update.ProjectCompleted {
		t.Error("non-sequential project with all tasks complete should be completed")
	}
}
