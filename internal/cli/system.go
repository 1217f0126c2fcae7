package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/taskflow/internal/backup"
	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/keyring"
	"github.com/julianstephens/taskflow/internal/migration"
	"github.com/julianstephens/taskflow/internal/storage/sqlite"
	"github.com/julianstephens/taskflow/internal/utils"
	"github.com/julianstephens/taskflow/internal/validation"
)

// migrator is implemented by the SQL stores.
type migrator interface {
	Migrate(ctx context.Context) (int, error)
	MigrationStatus(ctx context.Context) (migration.Status, error)
}

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if ctx.SettingsPath == "" {
		return nil
	}
	if _, err := os.Stat(ctx.SettingsPath); os.IsNotExist(err) {
		if err := ctx.Config.Save(ctx.SettingsPath); err != nil {
			return err
		}
		ctx.printf("Wrote default settings to: %s\n", ctx.SettingsPath)
	}
	return nil
}

type MigrateCmd struct {
	Status bool `help:"Only report the schema version."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	m, ok := ctx.Store.(migrator)
	if !ok {
		ctx.println("This storage backend has no schema migrations.")
		return nil
	}

	if c.Status {
		status, err := m.MigrationStatus(background())
		if err != nil {
			return err
		}
		ctx.printf("Schema version %d of %d (%d pending)\n", status.Current, status.Latest, status.Pending)
		return nil
	}

	applied, err := m.Migrate(background())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if applied == 0 {
		ctx.println("Schema is up to date.")
		return nil
	}
	ctx.printf("Applied %d migration(s).\n", applied)
	return nil
}

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*Context) error
	warning bool // failures are reported but do not fail the command
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	reachable := true
	if err := checkStorageReachable(ctx); err != nil {
		ctx.printf("❌ Storage reachable: FAIL\n   Error: %v\n", err)
		reachable = false
	} else {
		ctx.println("✓ Storage reachable: OK")
		defer ctx.Store.Close()
	}

	checks := []check{
		{name: "Schema version", run: checkSchema},
		{name: "Backups present", run: checkBackups, warning: true},
		{name: "Data validation", run: checkData, warning: true},
		{name: "Work schedule", run: checkWorkSchedule, warning: true},
	}

	hasError := !reachable
	for _, chk := range checks {
		if !reachable {
			ctx.printf("⊘ %s: SKIPPED (storage not reachable)\n", chk.name)
			continue
		}
		err := chk.run(ctx)
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", chk.name)
		case chk.warning:
			ctx.printf("⚠ %s: WARNING\n   %v\n", chk.name, err)
		default:
			ctx.printf("❌ %s: FAIL\n   Error: %v\n", chk.name, err)
			hasError = true
		}
	}

	if err := checkClockTimezone(ctx); err != nil {
		ctx.printf("❌ Clock/timezone: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		ctx.println("✓ Clock/timezone: OK")
	}

	if !keyring.IsAvailable() {
		ctx.println("⚠ OS keyring: unavailable (use " + constants.EnvDBConnection + " for PostgreSQL credentials)")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.ListProjects(background(), ctx.UserID); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchema(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	status, err := m.MigrationStatus(background())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !status.UpToDate() {
		return fmt.Errorf("migrations incomplete: version %d of %d, run '%s migrate'", status.Current, status.Latest, constants.AppName)
	}
	return nil
}

func checkBackups(ctx *Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	backups, err := backup.NewManager(store.GetConfigPath()).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkData(ctx *Context) error {
	projects, err := ctx.Store.ListProjects(background(), ctx.UserID)
	if err != nil {
		return err
	}
	today := ctx.Service.Today().Format(constants.DateFormat)
	result := validation.New().ValidateProjects(projects, today)
	if result.HasConflicts() {
		return fmt.Errorf("%s", result.FormatReport())
	}
	return nil
}

func checkWorkSchedule(ctx *Context) error {
	schedule, err := ctx.Service.GetWorkSchedule(background(), ctx.UserID)
	if err != nil {
		return err
	}
	result := validation.New().ValidateWorkSchedule(schedule)
	if result.HasConflicts() {
		return fmt.Errorf("%s", result.FormatReport())
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now, err := utils.NowInTimezone(ctx.Config.Timezone)
	if err != nil {
		return err
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
