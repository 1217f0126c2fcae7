package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/taskflow/internal/backup"
	"github.com/julianstephens/taskflow/internal/storage/sqlite"
)

// backupManager returns a manager for the SQLite database behind ctx.Store.
func backupManager(ctx *Context) (*backup.Manager, error) {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite storage")
	}
	return backup.NewManager(store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.printf("Created backup: %s\n", info.Path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		ctx.printf("No backups in %s\n", mgr.Dir())
		return nil
	}

	ctx.println(labelStyle.Render(fmt.Sprintf("Backups in %s", mgr.Dir())))
	for _, b := range backups {
		ctx.printf("  %s  %s (%s)  %s\n", b.Name, b.Timestamp.Local().Format(time.DateTime),
			humanize.Time(b.Timestamp), humanize.IBytes(uint64(b.Size)))
	}
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Backup file name or path."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path := mgr.Resolve(c.File)

	if !c.Yes {
		ok, err := confirm(ctx, fmt.Sprintf("Replace the current database with %s?", path))
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return err
	}
	safety, err := mgr.Restore(path)
	if err != nil {
		return err
	}
	if safety.Path != "" {
		ctx.printf("Previous database saved to: %s\n", safety.Path)
	}
	ctx.printf("Restored from: %s\n", path)
	return nil
}
