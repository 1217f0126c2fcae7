package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/taskflow/internal/cli"
	"github.com/julianstephens/taskflow/internal/config"
	"github.com/julianstephens/taskflow/internal/constants"
	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/keyring"
	"github.com/julianstephens/taskflow/internal/logger"
	"github.com/julianstephens/taskflow/internal/storage"
	"github.com/julianstephens/taskflow/internal/storage/postgres"
	"github.com/julianstephens/taskflow/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database file path, PostgreSQL connection string, or 'keyring'. PostgreSQL credentials must NOT be embedded in the connection string." type:"string" default:"${db_path}"`
	Settings string `help:"Settings file path." type:"path" default:"${settings_path}"`
	User     string `help:"User ID to act as (overrides user_id from settings)."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize taskflow storage."`
	Migrate cli.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   cli.ServeCmd   `cmd:"" help:"Run the HTTP API."`

	Schedule cli.ScheduleCmd `cmd:"" help:"Generate the block schedule." default:"1"`
	Stats    cli.StatsCmd    `cmd:"" help:"Show scheduling statistics."`

	Project struct {
		Add    cli.ProjectAddCmd    `cmd:"" help:"Add a project."`
		List   cli.ProjectListCmd   `cmd:"" help:"List projects and their tasks." default:"1"`
		Edit   cli.ProjectEditCmd   `cmd:"" help:"Edit a project."`
		Delete cli.ProjectDeleteCmd `cmd:"" help:"Delete a project and its tasks."`
	} `cmd:"" help:"Manage projects."`
	Task struct {
		Add    cli.TaskAddCmd    `cmd:"" help:"Add a task to a project."`
		Edit   cli.TaskEditCmd   `cmd:"" help:"Edit a task."`
		Done   cli.TaskDoneCmd   `cmd:"" help:"Mark a task completed."`
		Delete cli.TaskDeleteCmd `cmd:"" help:"Delete a task."`
	} `cmd:"" help:"Manage tasks."`
	Hours struct {
		Show cli.HoursShowCmd `cmd:"" help:"Show working hours." default:"1"`
		Set  cli.HoursSetCmd  `cmd:"" help:"Set working hours for a weekday."`
	} `cmd:"" help:"Manage weekly working hours."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Priority-driven two-hour block scheduler for projects and tasks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"db_path":       constants.DefaultConfigPath,
			"settings_path": filepath.Join(constants.DefaultConfigDir, constants.DefaultSettingsFile),
		},
	)

	cfg, err := config.Load(CLI.Settings)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.User != "" {
		cfg.UserID = CLI.User
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Settings),
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := openStore(CLI.Config)
	if err != nil {
		apperrors.Fatalf("failed to open storage: %v", err)
	}

	appCtx, err := cli.NewContext(store, cfg, CLI.Settings)
	if err != nil {
		apperrors.Fatal(err)
	}

	apperrors.Fatal(ctx.Run(appCtx))
}

// openStore picks a backend for the --config value without connecting.
func openStore(config string) (storage.Provider, error) {
	resolved, err := keyring.ResolveConfig(config)
	if err != nil {
		return nil, err
	}

	if config == constants.KeyringConfigValue || postgres.IsConnString(resolved) {
		if _, err := postgres.ValidateConnString(resolved); err != nil {
			return nil, fmt.Errorf("%w\n  store the password in the OS keyring ('%s keyring set'), %s, or .pgpass",
				err, constants.AppName, constants.EnvDBConnection)
		}
		logger.Debug("Using PostgreSQL storage")
		return postgres.New(resolved), nil
	}

	path := expandHome(resolved)
	if strings.HasSuffix(path, ".json") {
		logger.Debug("Using JSON storage", "path", path)
		return storage.NewJSONStore(path), nil
	}
	logger.Debug("Using SQLite storage", "path", path)
	return sqlite.NewStore(path), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
