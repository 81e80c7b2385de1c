package main

import (
	"github.com/spf13/cobra"

	"flipyard/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(cmd.Context(), cfg.Postgres.DSN); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
		return nil
	},
}
