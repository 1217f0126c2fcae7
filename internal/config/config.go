package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/utils"
	"github.com/julianstephens/taskflow/internal/validation"
)

// Config holds user preferences read from config.yaml
type Config struct {
	UserID      string `yaml:"user_id" json:"user_id"`         // Owner of projects created from the CLI
	Timezone    string `yaml:"timezone" json:"timezone"`       // IANA name or "Local"; decides what "today" is
	ServerAddr  string `yaml:"server_addr" json:"server_addr"` // Listen address for `taskflow serve`
	DefaultDays int    `yaml:"default_days" json:"default_days"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // debug, info, warn, error
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Mirror log output to stderr

	// WorkSchedule overrides the built-in working hours per weekday.
	WorkSchedule models.WorkSchedule `yaml:"work_schedule,omitempty" json:"work_schedule,omitempty"`
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	return &Config{
		UserID:      constants.DefaultUserID,
		Timezone:    constants.DefaultTimezone,
		ServerAddr:  constants.DefaultServerAddr,
		DefaultDays: constants.DefaultScheduleDays,
		LogLevel:    "warn",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(constants.EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// applyEnv lets TASKFLOW_* variables override file values.
func (c *Config) applyEnv() error {
	c.UserID = getEnv("USER_ID", c.UserID)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if raw := getEnv("DEFAULT_DAYS", ""); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %sDEFAULT_DAYS %q: %w", constants.EnvPrefix, raw, err)
		}
		c.DefaultDays = days
	}
	if raw := getEnv("LOG_CONSOLE", ""); raw != "" {
		console, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %sLOG_CONSOLE %q: %w", constants.EnvPrefix, raw, err)
		}
		c.LogConsole = console
	}
	return nil
}

// Validate checks every field that later code relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if err := validation.ValidateDays(c.DefaultDays); err != nil {
		return fmt.Errorf("default_days: %w", err)
	}
	if err := validation.ValidateWorkSchedule(c.WorkSchedule); err != nil {
		return err
	}
	return nil
}

// Load reads the config file at path. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// BaseWorkSchedule is the built-in schedule with the config's overrides applied.
func (c *Config) BaseWorkSchedule() models.WorkSchedule {
	return models.DefaultWorkSchedule().Merge(c.WorkSchedule)
}
