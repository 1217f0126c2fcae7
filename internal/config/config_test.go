package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/taskflow/internal/constants"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.UserID != constants.DefaultUserID || cfg.DefaultDays != 7 || cfg.ServerAddr != constants.DefaultServerAddr {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if !cfg.BaseWorkSchedule()["monday"].Enabled || cfg.BaseWorkSchedule()["sunday"].Enabled {
		t.Errorf("BaseWorkSchedule() = %+v, want built-in hours", cfg.BaseWorkSchedule())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `user_id: alice
timezone: UTC
default_days: 10
log_level: info
work_schedule:
  saturday:
    start: "09:00"
    end: "13:00"
    enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UserID != "alice" || cfg.Timezone != "UTC" || cfg.DefaultDays != 10 || cfg.LogLevel != "info" {
		t.Errorf("Load() = %+v", cfg)
	}
	// Unset fields keep their defaults.
	if cfg.ServerAddr != constants.DefaultServerAddr {
		t.Errorf("ServerAddr = %q, want default", cfg.ServerAddr)
	}

	schedule := cfg.BaseWorkSchedule()
	if !schedule["saturday"].Enabled || schedule["saturday"].End != "13:00" {
		t.Errorf("saturday = %+v, want override", schedule["saturday"])
	}
	if !schedule["friday"].Enabled || schedule["friday"].Start != "09:00" {
		t.Errorf("friday = %+v, want default", schedule["friday"])
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKFLOW_USER_ID", "bob")
	t.Setenv("TASKFLOW_DEFAULT_DAYS", "3")
	t.Setenv("TASKFLOW_LOG_CONSOLE", "true")
	t.Setenv("TASKFLOW_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UserID != "bob" || cfg.DefaultDays != 3 || !cfg.LogConsole || cfg.ServerAddr != "127.0.0.1:9000" {
		t.Errorf("Load() = %+v, want env overrides", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{name: "bad yaml", content: "user_id: [", wantErr: "failed to parse config"},
		{name: "days out of range", content: "default_days: 30", wantErr: "default_days"},
		{name: "bad timezone", content: "timezone: Mars/Olympus", wantErr: "invalid timezone"},
		{name: "bad window", content: "work_schedule:\n  monday:\n    start: nine\n    end: \"17:00\"\n", wantErr: "workSchedule.monday.start"},
		{name: "unknown weekday", content: "work_schedule:\n  caturday:\n    start: \"09:00\"\n    end: \"17:00\"\n", wantErr: "unknown weekday"},
		{name: "bad env days", env: map[string]string{"TASKFLOW_DEFAULT_DAYS": "many"}, wantErr: "DEFAULT_DAYS"},
		{name: "blank user", content: "user_id: \"  \"", wantErr: "user_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			if tt.content != "" {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatalf("failed to write config: %v", err)
				}
			}

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.UserID = "carol"
	cfg.DefaultDays = 14
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.UserID != "carol" || loaded.DefaultDays != 14 {
		t.Errorf("Load() after Save() = %+v", loaded)
	}
}
