package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"bugtrack/internal/migration"
	"bugtrack/internal/tracker"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	env      *Env
	migrator migration.Migrator
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(env *Env, migrator migration.Migrator) *MigrateCommand {
	return &MigrateCommand{
		env:      env,
		migrator: migrator,
	}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, fresh bool) error {
	if t := mc.env.Config.Tracker.Type; t != tracker.TypeMySQL {
		logger := mc.env.Log()
		logger.Warn().Str("tracker", t).Msg("migrating the mysql tracker database, but another tracker is configured")
	}
	if err := mc.migrator.Run(cmd.Context(), fresh); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
