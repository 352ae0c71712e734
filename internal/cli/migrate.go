package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/querydesk/internal/config"
	"github.com/spec-kit/querydesk/internal/observability"
	"github.com/spec-kit/querydesk/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	migrateCmd.AddCommand(
		newMigrateDirectionCommand(persistence.MigrateUp, "Apply all up migrations"),
		newMigrateDirectionCommand(persistence.MigrateDown, "Roll back all migrations"),
	)
	return migrateCmd
}

func newMigrateDirectionCommand(direction persistence.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Postgres.DSN == "" {
				return fmt.Errorf("POSTGRES_DSN is required to run migrations")
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			return persistence.RunMigrations(cfg.Postgres.DSN, direction, logger)
		},
	}
}
