package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerMovement is the sum of base amounts posted to one ledger account
// over a date range.
type LedgerMovement struct {
	LedgerAccountID int64           `json:"ledgerAccountID"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
}

// Net returns the movement signed in the convention of nature.
func (m LedgerMovement) Net(nature Nature) decimal.Decimal {
	if nature.DebitNormal() {
		return m.Debit.Sub(m.Credit)
	}
	return m.Credit.Sub(m.Debit)
}

// TrialBalanceRow is one group or ledger line of a trial balance.
// Balance is signed in the row's nature; Debit and Credit split it by side.
type TrialBalanceRow struct {
	GroupID         int64           `json:"groupID"`
	LedgerAccountID *int64          `json:"ledgerAccountID,omitempty"`
	Name            string          `json:"name"`
	Nature          Nature          `json:"nature"`
	Depth           int             `json:"depth"`
	Balance         decimal.Decimal `json:"balance"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
}

// TrialBalance lists every group with its rolled-up balance and the ledger
// accounts under it, as of a date.
type TrialBalance struct {
	BusinessID  int64             `json:"businessID"`
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// SplitBySide places a nature-signed balance on its debit or credit side.
func SplitBySide(balance decimal.Decimal, nature Nature) (debit, credit decimal.Decimal) {
	debitSigned := balance
	if !nature.DebitNormal() {
		debitSigned = balance.Neg()
	}
	if debitSigned.IsNegative() {
		return decimal.Zero, debitSigned.Neg()
	}
	return debitSigned, decimal.Zero
}

// BalanceDiscrepancy reports a ledger whose stored balance disagrees with
// the balance recomputed from its posted lines.
type BalanceDiscrepancy struct {
	LedgerAccountID int64           `json:"ledgerAccountID"`
	Name            string          `json:"name"`
	Stored          decimal.Decimal `json:"stored"`
	Computed        decimal.Decimal `json:"computed"`
}
