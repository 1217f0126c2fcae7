// Package backup keeps rotating snapshots of a SQLite database file.
package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/logger"
)

const (
	// MaxBackups is the number of snapshots kept by rotation
	MaxBackups    = 14
	BackupDirName = "backups"
	FilePrefix    = constants.AppName + "-"
	FileSuffix    = ".db"

	stampFormat = "20060102-150405"
)

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	Name      string
	Timestamp time.Time
	Size      int64
}

// Manager creates, lists and restores snapshots of dbPath. Snapshots live
// in a "backups" directory next to the database.
type Manager struct {
	dbPath    string
	backupDir string
	now       func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), BackupDirName),
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a new snapshot and prunes the oldest beyond MaxBackups.
func (m *Manager) Create() (Info, error) {
	info, err := m.create()
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate backups", "dir", m.backupDir, "error", err)
	}
	return info, nil
}

func (m *Manager) create() (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}
	if err := m.snapshot(path); err != nil {
		return Info{}, fmt.Errorf("failed to backup database: %w", err)
	}

	logger.Info("Created backup", "path", path)
	return m.stat(filepath.Base(path))
}

// nextPath picks an unused file name for the current second.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().UTC().Format(stampFormat)
	for n := 0; n < 100; n++ {
		name := FilePrefix + stamp + FileSuffix
		if n > 0 {
			name = fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, n, FileSuffix)
		}
		path := filepath.Join(m.backupDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

// snapshot copies the database with VACUUM INTO so a live connection
// elsewhere does not produce a torn copy.
func (m *Manager) snapshot(dest string) error {
	db, err := sql.Open("sqlite", m.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verify(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		return err
	}
	return nil
}

// List returns the snapshots, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := m.stat(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		// Same second: the higher sequence suffix is newer.
		a, b := backups[i].Name, backups[j].Name
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a > b
	})
	return backups, nil
}

func (m *Manager) stat(name string) (Info, error) {
	ts, err := parseName(name)
	if err != nil {
		return Info{}, err
	}
	path := filepath.Join(m.backupDir, name)
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: path, Name: name, Timestamp: ts, Size: fi.Size()}, nil
}

// parseName extracts the timestamp from "taskflow-YYYYMMDD-HHMMSS[-N].db".
func parseName(name string) (time.Time, error) {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
		return time.Time{}, fmt.Errorf("not a backup file: %s", name)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileSuffix)
	if len(stamp) > len(stampFormat) {
		stamp = stamp[:len(stampFormat)]
	}
	return time.Parse(stampFormat, stamp)
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for _, old := range backups[min(len(backups), MaxBackups):] {
		if err := os.Remove(old.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", old.Name, err)
		}
	}
	return nil
}

// Resolve accepts either a path or the bare name of a file in Dir.
func (m *Manager) Resolve(nameOrPath string) string {
	if !filepath.IsAbs(nameOrPath) {
		candidate := filepath.Join(m.backupDir, nameOrPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return nameOrPath
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first and that snapshot is returned. Callers
// must close their own connections beforehand.
func (m *Manager) Restore(path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		return Info{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	src, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return Info{}, fmt.Errorf("failed to open backup: %w", err)
	}
	verifyErr := verify(src)
	src.Close()
	if verifyErr != nil {
		return Info{}, fmt.Errorf("backup file is corrupted or invalid: %w", verifyErr)
	}

	var safety Info
	if _, err := os.Stat(m.dbPath); err == nil {
		// No rotation here so the safety copy can never evict the source.
		if safety, err = m.create(); err != nil {
			return Info{}, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return Info{}, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Restored database", "from", path, "safety_backup", safety.Path)
	return safety, nil
}

func verify(db *sql.DB) error {
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
