package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/spf13/cobra"
)

var verifyBusinesses []int64

// verifyCmd compares every stored ledger balance against the posted journal
// entries. It exits non-zero when any ledger drifts.
var verifyCmd = &cobra.Command{
	Use:   "verify-balances",
	Short: "Check stored ledger balances against posted journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
		if err != nil {
			return err
		}
		defer database.ClosePgxPool(pool)

		reports := services.NewReportingService(pgsql.NewRepositoryProvider(pool, cfg.LockTimeout))
		logger := slog.Default()
		drifted := 0
		for _, businessID := range verifyBusinesses {
			discrepancies, err := reports.VerifyBalances(ctx, businessID)
			if err != nil {
				return fmt.Errorf("business %d: %w", businessID, err)
			}
			for _, d := range discrepancies {
				drifted++
				logger.Warn("Ledger balance drift",
					slog.Int64("business_id", businessID),
					slog.Int64("ledger_id", d.LedgerAccountID),
					slog.String("ledger", d.Name),
					slog.String("stored", d.Stored.String()),
					slog.String("computed", d.Computed.String()))
			}
			logger.Info("Balances verified", slog.Int64("business_id", businessID), slog.Int("discrepancies", len(discrepancies)))
		}
		if drifted > 0 {
			return fmt.Errorf("%d ledger balances differ from their journal entries", drifted)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Int64SliceVar(&verifyBusinesses, "business", nil, "Business ID to verify (repeatable)")
	_ = verifyCmd.MarkFlagRequired("business")
	rootCmd.AddCommand(verifyCmd)
}
