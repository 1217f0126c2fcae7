package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
)

// Snapshot is the on-disk layout of a JSONStore file.
type Snapshot struct {
	Version  int                          `json:"version"`
	Projects map[string]models.Project    `json:"projects"` // tasks stored separately
	Tasks    map[string]models.Task       `json:"tasks"`
	Settings map[string]map[string]string `json:"settings"` // user -> key -> value
}

// JSONStore keeps everything in a single JSON file rewritten on every change.
type JSONStore struct {
	path string

	mu    sync.Mutex
	store *Snapshot
}

var _ Provider = (*JSONStore)(nil)

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	snapshot := &Snapshot{
		Version:  1,
		Projects: make(map[string]models.Project),
		Tasks:    make(map[string]models.Task),
		Settings: make(map[string]map[string]string),
	}
	if err := writeSnapshot(s.path, snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.store = snapshot
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	snapshot := &Snapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if snapshot.Projects == nil {
		snapshot.Projects = make(map[string]models.Project)
	}
	if snapshot.Tasks == nil {
		snapshot.Tasks = make(map[string]models.Task)
	}
	if snapshot.Settings == nil {
		snapshot.Settings = make(map[string]map[string]string)
	}

	s.mu.Lock()
	s.store = snapshot
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (snap *Snapshot) clone() *Snapshot {
	settings := make(map[string]map[string]string, len(snap.Settings))
	for user, values := range snap.Settings {
		settings[user] = maps.Clone(values)
	}
	return &Snapshot{
		Version:  snap.Version,
		Projects: maps.Clone(snap.Projects),
		Tasks:    maps.Clone(snap.Tasks),
		Settings: settings,
	}
}

func writeSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// apply runs mutate on a copy of the snapshot and keeps the copy only once
// it is on disk, so a failed write leaves memory matching the file. It must
// be called with mu held.
func (s *JSONStore) apply(mutate func(*Snapshot)) error {
	next := s.store.clone()
	mutate(next)
	if err := writeSnapshot(s.path, next); err != nil {
		return err
	}
	s.store = next
	return nil
}

// lock acquires mu and fails when nothing has been loaded yet.
func (s *JSONStore) lock() error {
	s.mu.Lock()
	if s.store == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	return nil
}

func (s *JSONStore) AddProject(_ context.Context, p models.Project) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	p.Tasks = nil
	return s.apply(func(snap *Snapshot) {
		snap.Projects[p.ID] = p
	})
}

func (s *JSONStore) GetProject(_ context.Context, id string) (models.Project, error) {
	if err := s.lock(); err != nil {
		return models.Project{}, err
	}
	defer s.mu.Unlock()

	return s.projectWithTasks(id, false)
}

func (s *JSONStore) projectWithTasks(id string, incompleteOnly bool) (models.Project, error) {
	p, ok := s.store.Projects[id]
	if !ok {
		return models.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	p.Tasks = []models.Task{}
	for _, t := range s.store.Tasks {
		if t.ProjectID != id || (incompleteOnly && t.Completed) {
			continue
		}
		p.Tasks = append(p.Tasks, t)
	}
	SortTasks(p.Tasks)
	return p, nil
}

func (s *JSONStore) UpdateProject(_ context.Context, p models.Project) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	p.Tasks = nil
	return s.apply(func(snap *Snapshot) {
		snap.Projects[p.ID] = p
	})
}

func (s *JSONStore) DeleteProject(_ context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return s.apply(func(snap *Snapshot) {
		delete(snap.Projects, id)
		for taskID, t := range snap.Tasks {
			if t.ProjectID == id {
				delete(snap.Tasks, taskID)
			}
		}
	})
}

func (s *JSONStore) ListProjects(_ context.Context, userID string) ([]models.Project, error) {
	return s.listProjects(userID, false)
}

func (s *JSONStore) ListProjectsWithIncompleteTasks(_ context.Context, userID string) ([]models.Project, error) {
	return s.listProjects(userID, true)
}

func (s *JSONStore) listProjects(userID string, incompleteOnly bool) ([]models.Project, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	projects := []models.Project{}
	for id, p := range s.store.Projects {
		if p.UserID != userID {
			continue
		}
		withTasks, err := s.projectWithTasks(id, incompleteOnly)
		if err != nil {
			return nil, err
		}
		projects = append(projects, withTasks)
	}
	SortProjects(projects)
	return projects, nil
}

func (s *JSONStore) AddTask(_ context.Context, t models.Task) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Projects[t.ProjectID]; !ok {
		return fmt.Errorf("project %s: %w", t.ProjectID, ErrNotFound)
	}
	return s.apply(func(snap *Snapshot) {
		snap.Tasks[t.ID] = t
	})
}

func (s *JSONStore) GetTask(_ context.Context, id string) (models.Task, error) {
	if err := s.lock(); err != nil {
		return models.Task{}, err
	}
	defer s.mu.Unlock()

	t, ok := s.store.Tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *JSONStore) GetTaskWithProject(_ context.Context, id string) (models.Task, models.Project, error) {
	if err := s.lock(); err != nil {
		return models.Task{}, models.Project{}, err
	}
	defer s.mu.Unlock()

	t, ok := s.store.Tasks[id]
	if !ok {
		return models.Task{}, models.Project{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	p, err := s.projectWithTasks(t.ProjectID, false)
	if err != nil {
		return models.Task{}, models.Project{}, err
	}
	return t, p, nil
}

func (s *JSONStore) UpdateTask(_ context.Context, t models.Task) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return s.apply(func(snap *Snapshot) {
		snap.Tasks[t.ID] = t
	})
}

func (s *JSONStore) DeleteTask(_ context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.store.Tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.apply(func(snap *Snapshot) {
		delete(snap.Tasks, id)
	})
}

func (s *JSONStore) CompleteTask(_ context.Context, id string, at time.Time) (models.Task, error) {
	if err := s.lock(); err != nil {
		return models.Task{}, err
	}
	defer s.mu.Unlock()

	t, ok := s.store.Tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if t.Completed {
		return t, nil
	}
	t.Complete(at)
	if err := s.apply(func(snap *Snapshot) {
		snap.Tasks[id] = t
	}); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (s *JSONStore) GetWorkSchedule(_ context.Context, userID string) (models.WorkSchedule, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	raw, ok := s.store.Settings[userID][constants.SettingWorkSchedule]
	if !ok {
		return nil, fmt.Errorf("work schedule for user %s: %w", userID, ErrNotFound)
	}
	return DecodeWorkSchedule(raw)
}

func (s *JSONStore) SaveWorkSchedule(_ context.Context, userID string, schedule models.WorkSchedule) error {
	raw, err := EncodeWorkSchedule(schedule)
	if err != nil {
		return err
	}

	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.apply(func(snap *Snapshot) {
		if snap.Settings[userID] == nil {
			snap.Settings[userID] = make(map[string]string)
		}
		snap.Settings[userID][constants.SettingWorkSchedule] = raw
	})
}

// SortTasks orders tasks the way every store returns them: by task order
// with unordered tasks last, then by creation time and id.
func SortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if (a.TaskOrder == nil) != (b.TaskOrder == nil) {
			return a.TaskOrder != nil
		}
		if a.TaskOrder != nil && *a.TaskOrder != *b.TaskOrder {
			return *a.TaskOrder < *b.TaskOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortProjects orders projects by due date with undated projects last,
// then by creation time and id.
func SortProjects(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if a.HasDueDate() != b.HasDueDate() {
			return a.HasDueDate()
		}
		if a.DueDate != b.DueDate {
			return a.DueDate < b.DueDate
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// EncodeWorkSchedule serializes a schedule for a settings row.
func EncodeWorkSchedule(schedule models.WorkSchedule) (string, error) {
	data, err := json.Marshal(schedule)
	if err != nil {
		return "", fmt.Errorf("failed to encode work schedule: %w", err)
	}
	return string(data), nil
}

// DecodeWorkSchedule parses a settings row written by EncodeWorkSchedule.
func DecodeWorkSchedule(raw string) (models.WorkSchedule, error) {
	schedule := models.WorkSchedule{}
	if err := json.Unmarshal([]byte(raw), &schedule); err != nil {
		return nil, fmt.Errorf("failed to decode work schedule: %w", err)
	}
	return schedule, nil
}
