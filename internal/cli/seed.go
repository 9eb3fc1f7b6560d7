package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/seed"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load departments, categories, employees and agents from a file",
		Long: `Seed reads a TOML or YAML file and creates the reference data it lists.
Entries that already exist are skipped, so the same file can be applied again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := seed.LoadFile(file)
			if err != nil {
				return err
			}
			return withPostgres(cmd.Context(), func(_ *config.Config, pg *persistence.Postgres, logger *zap.Logger) error {
				directory := service.NewDirectoryService(repository.NewPostgresStore(pg.PoolHandle()))
				result, err := seed.Apply(cmd.Context(), directory, doc)
				if err != nil {
					return err
				}
				logger.Info("seed applied", zap.String("file", file), zap.Int("created", result.Created), zap.Int("skipped", result.Skipped))
				return printResult(cmd.OutOrStdout(), result,
					fmt.Sprintf("created %d, skipped %d", result.Created, result.Skipped))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (.toml, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
