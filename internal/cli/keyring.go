package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/taskflow/internal/constants"
	"github.com/julianstephens/taskflow/internal/keyring"
	"github.com/julianstephens/taskflow/internal/storage/postgres"
)

type KeyringSetCmd struct {
	ConnString string `arg:"" help:"PostgreSQL connection string without a password."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if _, err := postgres.ValidateConnString(c.ConnString); err != nil {
		return err
	}
	if err := keyring.SetConnectionString(c.ConnString); err != nil {
		return err
	}
	ctx.printf("Stored connection string in the OS keyring. Use --config=%s to connect.\n", constants.KeyringConfigValue)
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	err := keyring.DeleteConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		ctx.println("No connection string stored.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("keyring delete: %w", err)
	}
	ctx.println("Removed connection string from the OS keyring.")
	return nil
}
