package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountGroupSvc manages the group hierarchy of a chart of accounts.
type AccountGroupSvc interface {
	// SeedDefaultChart creates the system groups and voucher types for a
	// business. Existing system groups are left untouched.
	SeedDefaultChart(ctx context.Context, businessID int64, userID string) ([]domain.AccountGroup, error)
	CreateGroup(ctx context.Context, businessID int64, req dto.CreateAccountGroupRequest, userID string) (*domain.AccountGroup, error)
	UpdateGroup(ctx context.Context, businessID, groupID int64, req dto.UpdateAccountGroupRequest, userID string) (*domain.AccountGroup, error)
	DeleteGroup(ctx context.Context, businessID, groupID int64, userID string) error
	GetGroup(ctx context.Context, businessID, groupID int64) (*domain.AccountGroup, error)
	GetGroupTree(ctx context.Context, businessID int64) (*domain.GroupTree, error)
}

// LedgerAccountSvc manages ledger accounts and their balances.
type LedgerAccountSvc interface {
	CreateLedgerAccount(ctx context.Context, businessID int64, req dto.CreateLedgerAccountRequest, userID string) (*domain.LedgerAccount, error)
	UpdateLedgerAccount(ctx context.Context, businessID, ledgerID int64, req dto.UpdateLedgerAccountRequest, userID string) (*domain.LedgerAccount, error)
	// DeleteLedgerAccount soft deletes a ledger account.
	DeleteLedgerAccount(ctx context.Context, businessID, ledgerID int64, userID string) error
	// RestoreLedgerAccount reverses a soft delete.
	RestoreLedgerAccount(ctx context.Context, businessID, ledgerID int64, userID string) (*domain.LedgerAccount, error)
	GetLedgerAccount(ctx context.Context, businessID, ledgerID int64) (*domain.LedgerAccount, error)
	ListLedgerAccounts(ctx context.Context, businessID int64, includeDeleted bool) ([]domain.LedgerAccount, error)
	// BalanceAsOf returns the opening balance plus every posted line dated on
	// or before date. Drafts are excluded.
	BalanceAsOf(ctx context.Context, businessID, ledgerID int64, date time.Time) (decimal.Decimal, error)
}

// ChartSvcFacade combines group and ledger account operations.
type ChartSvcFacade interface {
	AccountGroupSvc
	LedgerAccountSvc
}
