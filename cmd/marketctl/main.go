// Command marketctl is the operator tool for a flipyard deployment.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"flipyard/internal/config"
	"flipyard/internal/log"
)

var (
	cfg    *config.AppConfig
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "marketctl",
	Short:         "Operator tasks for the flipyard marketplace",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if loaded.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required")
		}
		cfg = loaded
		logger = log.New(cfg.Environment, "marketctl")
		return nil
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd, usersCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "marketctl:", err)
		os.Exit(1)
	}
}
