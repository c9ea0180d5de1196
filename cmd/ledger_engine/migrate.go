package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/spf13/cobra"
)

var errMissingDatabaseURL = errors.New("PGSQL_URL is not set")

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		direction := database.MigrateUp
		if args[0] == "down" {
			direction = database.MigrateDown
		}
		if err := database.RunMigrations(cfg.DatabaseURL, direction, slog.Default()); err != nil {
			return fmt.Errorf("migrate %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
