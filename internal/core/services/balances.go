package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// balanceSheet holds ledger and group totals over one date range.
type balanceSheet struct {
	tree    *domain.GroupTree
	ledgers []domain.LedgerAccount
	// byLedger is each ledger's total signed in its group's nature.
	byLedger map[int64]decimal.Decimal
	// byGroup is each group's rolled-up total signed in its own nature.
	byGroup map[int64]decimal.Decimal
}

// sumBalances totals posted lines dated in [from, to] for every ledger of a
// business and rolls them up the group tree. Opening balances are included
// when withOpening is set.
func sumBalances(ctx context.Context, repos portsrepo.TxRepositories, businessID int64, from *time.Time, to time.Time, withOpening bool) (*balanceSheet, error) {
	groups, err := repos.Group.ListGroups(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account groups: %w", err)
	}
	tree, err := domain.NewGroupTree(groups)
	if err != nil {
		return nil, err
	}
	ledgers, err := repos.Ledger.ListLedgerAccounts(ctx, businessID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger accounts: %w", err)
	}
	movements, err := repos.Reporting.SumLines(ctx, businessID, from, domain.DateOnly(to), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum journal lines: %w", err)
	}
	byMovement := make(map[int64]domain.LedgerMovement, len(movements))
	for _, m := range movements {
		byMovement[m.LedgerAccountID] = m
	}

	sheet := &balanceSheet{
		tree:     tree,
		ledgers:  ledgers,
		byLedger: make(map[int64]decimal.Decimal, len(ledgers)),
	}
	direct := make(map[int64]decimal.Decimal)
	for _, l := range ledgers {
		g, ok := tree.Get(l.GroupID)
		if !ok {
			return nil, fmt.Errorf("group %d of ledger account %d not found", l.GroupID, l.ID)
		}
		total := byMovement[l.ID].Net(g.Nature)
		if withOpening {
			total = total.Add(l.OpeningBalance)
		}
		sheet.byLedger[l.ID] = total
		direct[l.GroupID] = direct[l.GroupID].Add(total)
	}
	sheet.byGroup = tree.Rollup(direct)
	return sheet, nil
}
