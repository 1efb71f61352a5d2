package cmd

import (
	"fmt"

	"anoa.com/campushub/internal/bootstrap"
	"anoa.com/campushub/internal/config"
	"anoa.com/campushub/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Logging)

			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := bootstrap.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			logger.Info().Msg("schema is up to date")
			return nil
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the sample course catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			config.NewLogger(cfg.Logging)

			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := bootstrap.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return bootstrap.SeedCourses(db)
		},
	}
}
