package main

import (
	"fmt"

	"github.com/dafibh/fluxo/fluxo-backend/internal/config"
	"github.com/dafibh/fluxo/fluxo-backend/internal/repository/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			return logVersion(cfg.DatabaseURL)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the latest migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
				return err
			}
			return logVersion(cfg.DatabaseURL)
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to revert")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			return logVersion(cfg.DatabaseURL)
		},
	})

	return cmd
}

func logVersion(databaseURL string) error {
	version, dirty, err := postgres.MigrationVersion(databaseURL)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
	return nil
}
