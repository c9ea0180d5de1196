package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Nature defines the fundamental accounting classification of a group.
type Nature string

const (
	Asset     Nature = "ASSET"
	Liability Nature = "LIABILITY"
	Equity    Nature = "EQUITY"
	Income    Nature = "INCOME"
	Expense   Nature = "EXPENSE"
)

// Valid reports whether n is one of the known natures.
func (n Nature) Valid() bool {
	switch n {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// DebitNormal reports whether debits increase balances of this nature.
func (n Nature) DebitNormal() bool {
	return n == Asset || n == Expense
}

// IsProfitAndLoss reports whether balances of this nature reset each year.
func (n Nature) IsProfitAndLoss() bool {
	return n == Income || n == Expense
}

// ConvertSign re-expresses a balance signed in nature from into the sign
// convention of nature to.
func ConvertSign(amount decimal.Decimal, from, to Nature) decimal.Decimal {
	if from.DebitNormal() == to.DebitNormal() {
		return amount
	}
	return amount.Neg()
}

// AccountGroup is a node in a business's chart of accounts.
type AccountGroup struct {
	ID                 int64  `json:"id"`
	BusinessID         int64  `json:"businessID"`
	ParentID           *int64 `json:"parentID,omitempty"`
	Name               string `json:"name"`
	Nature             Nature `json:"nature"`
	AffectsGrossProfit bool   `json:"affectsGrossProfit"`
	Sequence           int    `json:"sequence"`
	IsSystem           bool   `json:"isSystem"`
	SystemKey          string `json:"systemKey,omitempty"` // stable key for seeded groups
	AuditFields
}

// ValidateChildNature checks a child's nature against its parent. Under the
// strict policy a child must share the parent's nature; otherwise the child
// may override it.
func ValidateChildNature(parent AccountGroup, child Nature, strict bool) error {
	if !child.Valid() {
		return fmt.Errorf("%w: unknown nature %q", apperrors.ErrValidation, child)
	}
	if strict && parent.Nature != child {
		return fmt.Errorf("%w: %s group cannot sit under %s group %d", apperrors.ErrInvalidHierarchy, child, parent.Nature, parent.ID)
	}
	return nil
}

// LedgerAccount is a leaf account that journal lines post to. Balances are
// signed in the nature convention of the owning group: positive means a
// normal balance.
type LedgerAccount struct {
	ID             int64           `json:"id"`
	BusinessID     int64           `json:"businessID"`
	GroupID        int64           `json:"groupID"`
	Name           string          `json:"name"`
	Code           string          `json:"code,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsBankAccount  bool            `json:"isBankAccount"`
	IsCashAccount  bool            `json:"isCashAccount"`
	IsActive       bool            `json:"isActive"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}

// IsDeleted reports whether the ledger account has been soft deleted.
func (l LedgerAccount) IsDeleted() bool {
	return l.DeletedAt != nil
}

// Postable reports whether journal lines may be posted to the account.
func (l LedgerAccount) Postable() bool {
	return l.IsActive && !l.IsDeleted()
}

// IsCashOrBank reports whether the account holds cash or a bank balance.
func (l LedgerAccount) IsCashOrBank() bool {
	return l.IsBankAccount || l.IsCashAccount
}
