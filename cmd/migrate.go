package cmd

import (
	"kargo/internal/adapters/out/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := OpenDatabase(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(db); err != nil {
				return err
			}
			a.logger.Info("schema migrated", "driver", a.cfg.DBDriver)
			return nil
		},
	}
}
