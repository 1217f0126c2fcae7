package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/taskflow/internal/storage"
	"github.com/julianstephens/taskflow/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "taskflow.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider { return newTestStore(t) })
}

func TestStore_InitIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}

	status, err := store.MigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if !status.UpToDate() || status.Current != status.Latest {
		t.Errorf("MigrationStatus() = %+v, want up to date", status)
	}
}

func TestStore_LoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.db"))
	err := store.Load()
	if err == nil || !strings.Contains(err.Error(), "init") {
		t.Errorf("Load() error = %v, want hint to run init", err)
	}
}

func TestStore_LoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer second.Close()

	if second.GetDB() == nil {
		t.Error("GetDB() is nil after Load")
	}
	if second.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", second.GetConfigPath(), path)
	}
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	store := newTestStore(t)

	var enabled int
	if err := store.GetDB().QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}
}
