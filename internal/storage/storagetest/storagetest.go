// Package storagetest holds behaviour checks shared by every storage.Provider.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/storage"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func project(id, user, name, due string, sequential bool, created time.Time) models.Project {
	return models.Project{
		ID:                 id,
		UserID:             user,
		Name:               name,
		Priority:           models.PriorityUsual,
		Category:           models.CategoryHome,
		DueDate:            due,
		HasSequentialTasks: sequential,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

func task(id, projectID, name string, hours float64, order *int, created time.Time) models.Task {
	return models.Task{
		ID:             id,
		ProjectID:      projectID,
		Name:           name,
		EstimatedHours: hours,
		TaskOrder:      order,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// Run exercises a freshly initialized provider. newProvider must return a
// provider on which Init has already succeeded.
func Run(t *testing.T, newProvider func(t *testing.T) storage.Provider) {
	t.Run("ProjectCRUD", func(t *testing.T) { testProjectCRUD(t, newProvider(t)) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, newProvider(t)) })
	t.Run("CompleteTask", func(t *testing.T) { testCompleteTask(t, newProvider(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newProvider(t)) })
	t.Run("WorkSchedule", func(t *testing.T) { testWorkSchedule(t, newProvider(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newProvider(t)) })
}

func testProjectCRUD(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	p := project("p1", "u1", "Garden", "2026-04-01", true, base)
	if err := store.AddProject(ctx, p); err != nil {
		t.Fatalf("AddProject() error = %v", err)
	}

	got, err := store.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Name != "Garden" || got.DueDate != "2026-04-01" || !got.HasSequentialTasks || got.Priority != models.PriorityUsual {
		t.Errorf("GetProject() = %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}
	if len(got.Tasks) != 0 {
		t.Errorf("new project has %d tasks", len(got.Tasks))
	}

	got.Name = "Vegetable garden"
	got.DueDate = ""
	got.Priority = models.PriorityUrgent
	got.UpdatedAt = base.Add(time.Hour)
	if err := store.UpdateProject(ctx, got); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	got, err = store.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Name != "Vegetable garden" || got.DueDate != "" || got.Priority != models.PriorityUrgent {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := store.AddTask(ctx, task("t1", "p1", "Dig", 2.5, models.IntPtr(1), base)); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	tk, err := store.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if tk.EstimatedHours != 2.5 || tk.TaskOrder == nil || *tk.TaskOrder != 1 || tk.Completed {
		t.Errorf("GetTask() = %+v", tk)
	}

	tk.Name = "Dig beds"
	tk.TaskOrder = nil
	if err := store.UpdateTask(ctx, tk); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	tk, _ = store.GetTask(ctx, "t1")
	if tk.Name != "Dig beds" || tk.TaskOrder != nil {
		t.Errorf("task update not persisted: %+v", tk)
	}

	if err := store.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := store.GetTask(ctx, "t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTask() after delete error = %v, want ErrNotFound", err)
	}
}

func testOrdering(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	projects := []models.Project{
		project("undated-old", "u1", "Undated old", "", false, base),
		project("late", "u1", "Late", "2026-06-01", false, base.Add(time.Minute)),
		project("undated-new", "u1", "Undated new", "", true, base.Add(2*time.Minute)),
		project("early", "u1", "Early", "2026-04-01", false, base.Add(3*time.Minute)),
		project("other", "u2", "Someone else", "2026-01-01", false, base),
	}
	for _, p := range projects {
		if err := store.AddProject(ctx, p); err != nil {
			t.Fatalf("AddProject(%s) error = %v", p.ID, err)
		}
	}

	tasks := []models.Task{
		task("none-1", "undated-new", "Unordered first", 1, nil, base),
		task("two", "undated-new", "Two", 1, models.IntPtr(2), base.Add(time.Second)),
		task("one", "undated-new", "One", 1, models.IntPtr(1), base.Add(2*time.Second)),
		task("none-2", "undated-new", "Unordered second", 1, nil, base.Add(3*time.Second)),
		task("done", "undated-new", "Done", 1, models.IntPtr(1), base.Add(-time.Second)),
	}
	for _, tk := range tasks {
		if err := store.AddTask(ctx, tk); err != nil {
			t.Fatalf("AddTask(%s) error = %v", tk.ID, err)
		}
	}
	if _, err := store.CompleteTask(ctx, "done", base); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}

	list, err := store.ListProjectsWithIncompleteTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListProjectsWithIncompleteTasks() error = %v", err)
	}
	wantProjects := []string{"early", "late", "undated-old", "undated-new"}
	if len(list) != len(wantProjects) {
		t.Fatalf("got %d projects, want %d", len(list), len(wantProjects))
	}
	for i, id := range wantProjects {
		if list[i].ID != id {
			t.Errorf("project %d = %s, want %s", i, list[i].ID, id)
		}
	}

	wantTasks := []string{"one", "two", "none-1", "none-2"}
	got := list[3].Tasks
	if len(got) != len(wantTasks) {
		t.Fatalf("got %d incomplete tasks, want %d", len(got), len(wantTasks))
	}
	for i, id := range wantTasks {
		if got[i].ID != id {
			t.Errorf("task %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if list[0].Tasks == nil || len(list[0].Tasks) != 0 {
		t.Errorf("project without tasks should carry an empty list, got %#v", list[0].Tasks)
	}

	all, err := store.ListProjects(ctx, "u1")
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if n := len(all[3].Tasks); n != 5 {
		t.Errorf("ListProjects() carries %d tasks, want 5 including completed", n)
	}
	if all[3].Tasks[0].ID != "done" {
		t.Errorf("completed task with order 1 created first should lead, got %s", all[3].Tasks[0].ID)
	}
}

func testCompleteTask(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	if err := store.AddProject(ctx, project("p1", "u1", "Move", "", true, base)); err != nil {
		t.Fatalf("AddProject() error = %v", err)
	}
	for _, tk := range []models.Task{
		task("a", "p1", "Pack", 3, models.IntPtr(1), base),
		task("b", "p1", "Drive", 5, models.IntPtr(2), base),
	} {
		if err := store.AddTask(ctx, tk); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}

	at := base.Add(48 * time.Hour)
	done, err := store.CompleteTask(ctx, "a", at)
	if err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	if !done.Completed || done.ActualHours != 3 || done.EstimatedHours != 3 {
		t.Errorf("CompleteTask() = %+v", done)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(at) {
		t.Errorf("CompletedAt = %v, want %v", done.CompletedAt, at)
	}

	again, err := store.CompleteTask(ctx, "a", at.Add(time.Hour))
	if err != nil {
		t.Fatalf("CompleteTask() again error = %v", err)
	}
	if !again.CompletedAt.Equal(at) {
		t.Errorf("second completion changed CompletedAt to %v", again.CompletedAt)
	}

	tk, p, err := store.GetTaskWithProject(ctx, "a")
	if err != nil {
		t.Fatalf("GetTaskWithProject() error = %v", err)
	}
	if tk.ID != "a" || p.ID != "p1" || len(p.Tasks) != 2 {
		t.Errorf("GetTaskWithProject() = %s, %s with %d tasks", tk.ID, p.ID, len(p.Tasks))
	}
}

func testDeleteCascades(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	if err := store.AddProject(ctx, project("p1", "u1", "Trip", "", false, base)); err != nil {
		t.Fatalf("AddProject() error = %v", err)
	}
	if err := store.AddTask(ctx, task("t1", "p1", "Book", 1, nil, base)); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	if err := store.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if _, err := store.GetProject(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProject() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetTask(ctx, "t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("task should be deleted with its project, got %v", err)
	}
}

func testWorkSchedule(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	if _, err := store.GetWorkSchedule(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetWorkSchedule() before save error = %v, want ErrNotFound", err)
	}

	schedule := models.WorkSchedule{"monday": {Start: "08:00", End: "12:00", Enabled: true}}
	if err := store.SaveWorkSchedule(ctx, "u1", schedule); err != nil {
		t.Fatalf("SaveWorkSchedule() error = %v", err)
	}
	schedule["monday"] = models.WorkWindow{Start: "07:00", End: "15:00", Enabled: true}
	if err := store.SaveWorkSchedule(ctx, "u1", schedule); err != nil {
		t.Fatalf("SaveWorkSchedule() overwrite error = %v", err)
	}

	got, err := store.GetWorkSchedule(ctx, "u1")
	if err != nil {
		t.Fatalf("GetWorkSchedule() error = %v", err)
	}
	if got["monday"] != schedule["monday"] || len(got) != 1 {
		t.Errorf("GetWorkSchedule() = %+v, want %+v", got, schedule)
	}

	if _, err := store.GetWorkSchedule(ctx, "u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("schedules must be per user, got %v", err)
	}
}

func testNotFound(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	checks := map[string]error{
		"GetProject":    func() error { _, err := store.GetProject(ctx, "missing"); return err }(),
		"UpdateProject": store.UpdateProject(ctx, project("missing", "u1", "x", "", false, base)),
		"DeleteProject": store.DeleteProject(ctx, "missing"),
		"AddTask":       store.AddTask(ctx, task("t", "missing", "x", 1, nil, base)),
		"GetTask":       func() error { _, err := store.GetTask(ctx, "missing"); return err }(),
		"UpdateTask":    store.UpdateTask(ctx, task("missing", "p", "x", 1, nil, base)),
		"DeleteTask":    store.DeleteTask(ctx, "missing"),
		"CompleteTask":  func() error { _, err := store.CompleteTask(ctx, "missing", base); return err }(),
		"GetTaskWithProject": func() error {
			_, _, err := store.GetTaskWithProject(ctx, "missing")
			return err
		}(),
	}

	for name, err := range checks {
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("%s error = %v, want ErrNotFound", name, err)
		}
	}
}
