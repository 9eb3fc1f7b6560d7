package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(_ *config.Config, pg *persistence.Postgres, logger *zap.Logger) error {
				if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), logger); err != nil {
					return err
				}
				return printVersion(cmd, pg)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(_ *config.Config, pg *persistence.Postgres, _ *zap.Logger) error {
				if err := persistence.RollbackMigration(cmd.Context(), pg.PoolHandle()); err != nil {
					return err
				}
				return printVersion(cmd, pg)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres(cmd.Context(), func(_ *config.Config, pg *persistence.Postgres, _ *zap.Logger) error {
				return printVersion(cmd, pg)
			})
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command, pg *persistence.Postgres) error {
	version, err := persistence.MigrationVersion(cmd.Context(), pg.PoolHandle())
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(),
		map[string]int64{"schema_version": version},
		fmt.Sprintf("schema version %d", version))
}
