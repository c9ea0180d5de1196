package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountGroupReader defines read operations for account groups.
type AccountGroupReader interface {
	FindGroupByID(ctx context.Context, businessID, groupID int64) (*domain.AccountGroup, error)
	// ListGroups retrieves every group of a business.
	ListGroups(ctx context.Context, businessID int64) ([]domain.AccountGroup, error)
	// CountGroupDependents returns how many child groups and ledger
	// accounts (deleted ones included) reference the group.
	CountGroupDependents(ctx context.Context, businessID, groupID int64) (children int, ledgers int, err error)
}

// AccountGroupWriter defines write operations for account groups.
type AccountGroupWriter interface {
	SaveGroup(ctx context.Context, group domain.AccountGroup) (int64, error)
	UpdateGroup(ctx context.Context, group domain.AccountGroup) error
	DeleteGroup(ctx context.Context, businessID, groupID int64) error
	// ListGroupsForUpdate locks every group of the business so concurrent
	// reparenting cannot interleave.
	ListGroupsForUpdate(ctx context.Context, businessID int64) ([]domain.AccountGroup, error)
}

// AccountGroupRepositoryFacade combines all account group repository interfaces.
type AccountGroupRepositoryFacade interface {
	AccountGroupReader
	AccountGroupWriter
}

// LedgerAccountReader defines read operations for ledger accounts.
type LedgerAccountReader interface {
	FindLedgerAccountByID(ctx context.Context, businessID, ledgerID int64) (*domain.LedgerAccount, error)
	// ListLedgerAccounts lists the ledger accounts of a business.
	ListLedgerAccounts(ctx context.Context, businessID int64, includeDeleted bool) ([]domain.LedgerAccount, error)
}

// LedgerAccountWriter defines write operations for ledger accounts.
type LedgerAccountWriter interface {
	SaveLedgerAccount(ctx context.Context, ledger domain.LedgerAccount) (int64, error)
	UpdateLedgerAccount(ctx context.Context, ledger domain.LedgerAccount) error
}

// LedgerAccountTransactionSupport defines operations used while posting.
type LedgerAccountTransactionSupport interface {
	// FindLedgerAccountsForUpdate selects ledger accounts and locks them in
	// ascending id order.
	FindLedgerAccountsForUpdate(ctx context.Context, businessID int64, ledgerIDs []int64) (map[int64]domain.LedgerAccount, error)
	// ApplyBalanceDeltas adds each delta to the ledger's current balance.
	ApplyBalanceDeltas(ctx context.Context, businessID int64, deltas map[int64]decimal.Decimal, userID string, now time.Time) error
}

// LedgerAccountRepositoryFacade combines all ledger account repository interfaces.
type LedgerAccountRepositoryFacade interface {
	LedgerAccountReader
	LedgerAccountWriter
	LedgerAccountTransactionSupport
}
