package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// EntryKind distinguishes the lines a voucher was posted with from the
// mirror lines written when it is voided.
type EntryKind string

const (
	EntryOriginal EntryKind = "original"
	EntryReversal EntryKind = "reversal"
)

// JournalEntry is one line of a voucher. Exactly one of DebitAmount and
// CreditAmount is non-zero. Amounts are in the voucher currency; the Base
// amounts are in the default currency and are set at posting.
type JournalEntry struct {
	ID              int64           `json:"id"`
	VoucherID       int64           `json:"voucherID"`
	LineNo          int             `json:"lineNo"`
	LedgerAccountID int64           `json:"ledgerAccountID"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	BaseDebit       decimal.Decimal `json:"baseDebit"`
	BaseCredit      decimal.Decimal `json:"baseCredit"`
	CostCenterID    *int64          `json:"costCenterID,omitempty"`
	PartyID         *int64          `json:"partyID,omitempty"`
	Narration       string          `json:"narration,omitempty"`
	Kind            EntryKind       `json:"kind"`
	EntryDate       time.Time       `json:"entryDate"`
}

// IsDebit reports whether the line is on the debit side.
func (e JournalEntry) IsDebit() bool {
	return e.DebitAmount.IsPositive()
}

// UnbalancedVoucherError reports the two totals of a voucher that failed
// the balance check.
type UnbalancedVoucherError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Diff returns debits minus credits.
func (e *UnbalancedVoucherError) Diff() decimal.Decimal {
	return e.Debits.Sub(e.Credits)
}

func (e *UnbalancedVoucherError) Error() string {
	return fmt.Sprintf("voucher is unbalanced: debits %s, credits %s, difference %s", e.Debits, e.Credits, e.Diff())
}

func (e *UnbalancedVoucherError) Unwrap() error {
	return apperrors.ErrUnbalancedVoucher
}

// ValidateLines checks line shape: at least one line, each line carrying
// exactly one positive amount with no more than precision decimal places.
func ValidateLines(lines []JournalEntry, precision int32) error {
	if len(lines) == 0 {
		return apperrors.ErrEmptyVoucher
	}
	for _, l := range lines {
		if l.LedgerAccountID == 0 {
			return fmt.Errorf("%w: line %d has no ledger account", apperrors.ErrInvalidLine, l.LineNo)
		}
		if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrInvalidLine, l.LineNo)
		}
		if l.DebitAmount.IsZero() == l.CreditAmount.IsZero() {
			return fmt.Errorf("%w: line %d", apperrors.ErrInvalidLine, l.LineNo)
		}
		for _, amt := range []decimal.Decimal{l.DebitAmount, l.CreditAmount} {
			if !amt.Equal(amt.Truncate(precision)) {
				return fmt.Errorf("%w: line %d amount %s exceeds %d places", apperrors.ErrPrecisionExceeded, l.LineNo, amt, precision)
			}
		}
	}
	return nil
}

// CheckBalanced compares debit and credit totals exactly. There is no
// rounding tolerance.
func CheckBalanced(lines []JournalEntry) error {
	debits, credits := Totals(lines)
	if !debits.Equal(credits) {
		return &UnbalancedVoucherError{Debits: debits, Credits: credits}
	}
	return nil
}

// Totals returns the debit and credit totals of lines.
func Totals(lines []JournalEntry) (debits, credits decimal.Decimal) {
	for _, l := range lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	return debits, credits
}

// AllocateBase sets the base amounts of balanced lines entered at rate.
// Each side is rounded by largest remainder: every line gets its amount
// floored to precision and the missing minor units go one per line to the
// largest remainders, so base debits equal base credits and no base amount
// is negative.
func AllocateBase(lines []JournalEntry, rate decimal.Decimal, precision int32) {
	for i := range lines {
		lines[i].BaseDebit = decimal.Zero
		lines[i].BaseCredit = decimal.Zero
	}
	debits, _ := Totals(lines)
	target := debits.Mul(rate).Round(precision)
	allocateSide(lines, true, rate, precision, target)
	allocateSide(lines, false, rate, precision, target)
}

func allocateSide(lines []JournalEntry, debit bool, rate decimal.Decimal, precision int32, target decimal.Decimal) {
	type share struct {
		idx       int
		remainder decimal.Decimal
	}
	var shares []share
	sum := decimal.Zero
	for i := range lines {
		amt := lines[i].CreditAmount
		if debit {
			amt = lines[i].DebitAmount
		}
		if amt.IsZero() {
			continue
		}
		exact := amt.Mul(rate)
		base := exact.RoundFloor(precision)
		setBase(&lines[i], debit, base)
		sum = sum.Add(base)
		shares = append(shares, share{idx: i, remainder: exact.Sub(base)})
	}
	if len(shares) == 0 {
		return
	}
	// floor(sum) <= target <= floor(sum) + len(shares) minor units
	unit := decimal.New(1, -precision)
	missing := int(target.Sub(sum).Div(unit).IntPart())
	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].remainder.GreaterThan(shares[b].remainder)
	})
	for k := 0; k < missing && k < len(shares); k++ {
		line := &lines[shares[k].idx]
		if debit {
			setBase(line, true, line.BaseDebit.Add(unit))
		} else {
			setBase(line, false, line.BaseCredit.Add(unit))
		}
	}
}

func setBase(line *JournalEntry, debit bool, base decimal.Decimal) {
	if debit {
		line.BaseDebit = base
	} else {
		line.BaseCredit = base
	}
}
