// Package cli implements helpdeskctl, the admin command line for the
// helpdesk service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// Version is set at build time via ldflags.
var Version = "dev"

var jsonOut bool

// loadConfig is swapped in tests.
var loadConfig = config.Load

// NewRootCommand builds the helpdeskctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "helpdeskctl",
		Short: "Admin tooling for the helpdesk service",
		Long: `helpdeskctl manages the helpdesk database and identities.

It reads the same environment (and .env file) as the API server.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")

	root.AddCommand(newMigrateCommand())
	root.AddCommand(newSeedCommand())
	root.AddCommand(newTokenCommand())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// withPostgres loads config, connects and hands the pool to fn. Admin
// commands always need a real database.
func withPostgres(ctx context.Context, fn func(*config.Config, *persistence.Postgres, *zap.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	return fn(cfg, pg, logger)
}

func printResult(w io.Writer, value any, text string) error {
	if jsonOut {
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
