// Command ledger_engine runs the double-entry ledger API and its
// maintenance tasks.
package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/spf13/cobra"
)

//go:generate swag init -g main.go -d ./,../../internal/handlers,../../internal/dto,../../internal/core/domain -o ../docs

// @title Ledger Engine API
// @version 1.0
// @description Double-entry ledger posting engine with vouchers, financial years and ratio snapshots.

// @BasePath /api/v1

// @securityDefinitions.apikey CallerID
// @in header
// @name X-User-ID
// @description Identifier of the acting user, recorded on every mutation.

var rootCmd = &cobra.Command{
	Use:           "ledger_engine",
	Short:         "Double-entry ledger posting engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errMissingDatabaseURL
	}
	return cfg, nil
}
