package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

type reportingService struct {
	BaseService
	repos portsrepo.TxRepositories
}

// NewReportingService creates the trial balance and verification service.
func NewReportingService(repos portsrepo.RepositoryProvider) portssvc.ReportingService {
	return &reportingService{repos: repos.TxRepositories}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) TrialBalance(ctx context.Context, businessID int64, asOf time.Time) (*domain.TrialBalance, error) {
	asOf = domain.DateOnly(asOf)
	sheet, err := sumBalances(ctx, s.repos, businessID, nil, asOf, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute trial balance", slog.Int64("business_id", businessID))
		return nil, err
	}

	ledgersByGroup := make(map[int64][]domain.LedgerAccount)
	for _, l := range sheet.ledgers {
		ledgersByGroup[l.GroupID] = append(ledgersByGroup[l.GroupID], l)
	}

	tb := &domain.TrialBalance{BusinessID: businessID, AsOf: asOf}
	sheet.tree.Walk(func(g domain.AccountGroup, depth int) {
		balance := sheet.byGroup[g.ID]
		debit, credit := domain.SplitBySide(balance, g.Nature)
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			GroupID: g.ID, Name: g.Name, Nature: g.Nature, Depth: depth,
			Balance: balance, Debit: debit, Credit: credit,
		})
		for _, l := range ledgersByGroup[g.ID] {
			lb := sheet.byLedger[l.ID]
			if l.IsDeleted() && lb.IsZero() {
				continue
			}
			ld, lc := domain.SplitBySide(lb, g.Nature)
			tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
				GroupID: g.ID, LedgerAccountID: ptr(l.ID), Name: l.Name, Nature: g.Nature, Depth: depth + 1,
				Balance: lb, Debit: ld, Credit: lc,
			})
			tb.TotalDebit = tb.TotalDebit.Add(ld)
			tb.TotalCredit = tb.TotalCredit.Add(lc)
		}
	})
	return tb, nil
}

func (s *reportingService) VerifyBalances(ctx context.Context, businessID int64) ([]domain.BalanceDiscrepancy, error) {
	// Posted lines may be dated up to the end of the latest year.
	years, err := s.repos.Year.ListFinancialYears(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list financial years: %w", err)
	}
	upTo := s.now()
	for _, y := range years {
		if y.EndDate.After(upTo) {
			upTo = y.EndDate
		}
	}
	sheet, err := sumBalances(ctx, s.repos, businessID, nil, upTo, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to recompute balances", slog.Int64("business_id", businessID))
		return nil, err
	}
	out := []domain.BalanceDiscrepancy{}
	for _, l := range sheet.ledgers {
		computed := sheet.byLedger[l.ID]
		if !computed.Equal(l.CurrentBalance) {
			out = append(out, domain.BalanceDiscrepancy{
				LedgerAccountID: l.ID, Name: l.Name, Stored: l.CurrentBalance, Computed: computed,
			})
		}
	}
	if len(out) > 0 {
		s.LogInfo(ctx, "Ledger balance discrepancies found", slog.Int64("business_id", businessID), slog.Int("count", len(out)))
	}
	return out, nil
}
