package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	err := Init(Config{
		Debug:     false,
		ConfigDir: configDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message", "key", "value")
	Error("Test error message")
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message in debug mode")
}

func TestInitWithLevel(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir, Level: "info"}); err != nil {
		t.Fatalf("Init() with level info: %v", err)
	}
	if got := Logger.GetLevel().String(); got != "info" {
		t.Errorf("level = %q, want info", got)
	}

	if err := Init(Config{ConfigDir: configDir, Level: "loud"}); err == nil {
		t.Error("Init() with invalid level should fail")
	}
}

func TestLogFileReceivesEntries(t *testing.T) {
	configDir := t.TempDir()
	if err := Init(Config{ConfigDir: configDir, Level: "info"}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	Info("schedule generated", "days", 7)

	data, err := os.ReadFile(filepath.Join(configDir, "logs", "taskflow.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "schedule generated") {
		t.Errorf("log file missing entry, got %q", string(data))
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
