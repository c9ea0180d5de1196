package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingService builds read-only views over posted data.
type ReportingService interface {
	// TrialBalance rolls every ledger balance as of date up the group tree.
	TrialBalance(ctx context.Context, businessID int64, asOf time.Time) (*domain.TrialBalance, error)
	// VerifyBalances recomputes each ledger's balance from its lines and
	// reports the ledgers whose stored balance differs.
	VerifyBalances(ctx context.Context, businessID int64) ([]domain.BalanceDiscrepancy, error)
}
