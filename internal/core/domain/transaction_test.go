package domain_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debitLine(no int, ledger int64, amt string) domain.JournalEntry {
	return domain.JournalEntry{LineNo: no, LedgerAccountID: ledger, DebitAmount: dec(amt)}
}

func creditLine(no int, ledger int64, amt string) domain.JournalEntry {
	return domain.JournalEntry{LineNo: no, LedgerAccountID: ledger, CreditAmount: dec(amt)}
}

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalEntry
		wantErr error
	}{
		{name: "no lines", lines: nil, wantErr: apperrors.ErrEmptyVoucher},
		{
			name:    "both amounts zero",
			lines:   []domain.JournalEntry{{LineNo: 1, LedgerAccountID: 1}},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name: "both amounts set",
			lines: []domain.JournalEntry{
				{LineNo: 1, LedgerAccountID: 1, DebitAmount: dec("1"), CreditAmount: dec("1")},
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:    "negative amount",
			lines:   []domain.JournalEntry{debitLine(1, 1, "-5")},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:    "too many decimals",
			lines:   []domain.JournalEntry{debitLine(1, 1, "1.005"), creditLine(2, 2, "1.005")},
			wantErr: apperrors.ErrPrecisionExceeded,
		},
		{
			name:  "valid",
			lines: []domain.JournalEntry{debitLine(1, 1, "10.25"), creditLine(2, 2, "10.25")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateLines(tt.lines, 2)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestCheckBalanced_ReportsDifference(t *testing.T) {
	lines := []domain.JournalEntry{
		debitLine(1, 1, "100"),
		creditLine(2, 2, "99.99"),
	}

	err := domain.CheckBalanced(lines)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedVoucher)
	var unbalanced *domain.UnbalancedVoucherError
	require.True(t, errors.As(err, &unbalanced))
	assert.True(t, unbalanced.Diff().Equal(dec("0.01")))
}

func TestCheckBalanced_NoTolerance(t *testing.T) {
	lines := []domain.JournalEntry{
		debitLine(1, 1, "0.000001"),
		creditLine(2, 2, "0.000002"),
	}
	assert.ErrorIs(t, domain.CheckBalanced(lines), apperrors.ErrUnbalancedVoucher)
}

// Randomly generated balanced line sets must always pass, and perturbing
// any single line by the smallest unit must always fail.
func TestCheckBalanced_RandomVouchers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	unit := dec("0.01")
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(6)
		var lines []domain.JournalEntry
		total := decimal.Zero
		for j := 0; j < n; j++ {
			amt := decimal.New(int64(1+rng.Intn(1_000_000)), -2)
			total = total.Add(amt)
			lines = append(lines, domain.JournalEntry{LineNo: j + 1, LedgerAccountID: int64(j + 1), DebitAmount: amt})
		}
		// split the total across a random number of credit lines
		m := 1 + rng.Intn(4)
		remaining := total
		for j := 0; j < m; j++ {
			amt := remaining
			if j < m-1 && remaining.GreaterThan(unit.Mul(decimal.NewFromInt(2))) {
				amt = remaining.Div(decimal.NewFromInt(2)).Truncate(2)
			}
			if amt.IsZero() {
				break
			}
			remaining = remaining.Sub(amt)
			lines = append(lines, domain.JournalEntry{LineNo: n + j + 1, LedgerAccountID: 100, CreditAmount: amt})
			if remaining.IsZero() {
				break
			}
		}
		require.NoError(t, domain.ValidateLines(lines, 2))
		require.NoError(t, domain.CheckBalanced(lines), "iteration %d", i)

		k := rng.Intn(len(lines))
		if lines[k].IsDebit() {
			lines[k].DebitAmount = lines[k].DebitAmount.Add(unit)
		} else {
			lines[k].CreditAmount = lines[k].CreditAmount.Add(unit)
		}
		assert.ErrorIs(t, domain.CheckBalanced(lines), apperrors.ErrUnbalancedVoucher, "iteration %d", i)
	}
}

func TestAllocateBase_SidesStayEqual(t *testing.T) {
	lines := []domain.JournalEntry{
		debitLine(1, 1, "0.01"),
		debitLine(2, 2, "0.01"),
		debitLine(3, 3, "0.01"),
		creditLine(4, 4, "0.03"),
	}

	domain.AllocateBase(lines, dec("0.3333333333"), 2)

	var baseDebit, baseCredit decimal.Decimal
	for _, l := range lines {
		baseDebit = baseDebit.Add(l.BaseDebit)
		baseCredit = baseCredit.Add(l.BaseCredit)
	}
	assert.True(t, baseDebit.Equal(baseCredit), "debit %s credit %s", baseDebit, baseCredit)
	assert.True(t, baseCredit.Equal(dec("0.01")))
}

func TestAllocateBase_SmallLinesNeverGoNegative(t *testing.T) {
	var lines []domain.JournalEntry
	for i := 1; i <= 10; i++ {
		lines = append(lines, debitLine(i, int64(i), "0.01"))
	}
	lines = append(lines, creditLine(11, 11, "0.10"))

	domain.AllocateBase(lines, dec("1.5"), 2)

	baseDebit := decimal.Zero
	for _, l := range lines[:10] {
		assert.True(t, l.BaseDebit.GreaterThanOrEqual(dec("0.01")), "line %d base debit %s", l.LineNo, l.BaseDebit)
		assert.True(t, l.BaseDebit.LessThanOrEqual(dec("0.02")), "line %d base debit %s", l.LineNo, l.BaseDebit)
		assert.True(t, l.BaseCredit.IsZero())
		baseDebit = baseDebit.Add(l.BaseDebit)
	}
	assert.True(t, baseDebit.Equal(dec("0.15")), "base debits %s", baseDebit)
	assert.True(t, lines[10].BaseCredit.Equal(dec("0.15")))
	assert.True(t, lines[10].BaseDebit.IsZero())
}

// Random balanced vouchers at random rates keep every base amount on its
// own side, non-negative, within one minor unit of the exact conversion,
// and balanced in total.
func TestAllocateBase_RandomVouchers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	unit := dec("0.01")
	for i := 0; i < 500; i++ {
		rate := decimal.New(int64(1+rng.Intn(2_000_000)), -6)
		var lines []domain.JournalEntry
		total := decimal.Zero
		n := 1 + rng.Intn(12)
		for j := 0; j < n; j++ {
			amt := decimal.New(int64(1+rng.Intn(500)), -2)
			total = total.Add(amt)
			lines = append(lines, debitLine(j+1, int64(j+1), amt.String()))
		}
		m := 1 + rng.Intn(12)
		remaining := total
		for j := 0; j < m && remaining.IsPositive(); j++ {
			amt := remaining
			if j < m-1 && remaining.GreaterThan(unit) {
				amt = decimal.New(int64(1+rng.Intn(int(remaining.Div(unit).IntPart()))), -2)
			}
			remaining = remaining.Sub(amt)
			lines = append(lines, creditLine(n+j+1, int64(100+j), amt.String()))
		}
		if remaining.IsPositive() {
			lines = append(lines, creditLine(len(lines)+1, 999, remaining.String()))
		}
		require.NoError(t, domain.CheckBalanced(lines), "iteration %d", i)

		domain.AllocateBase(lines, rate, 2)

		baseDebit, baseCredit := decimal.Zero, decimal.Zero
		for _, l := range lines {
			require.False(t, l.BaseDebit.IsNegative(), "iteration %d line %d", i, l.LineNo)
			require.False(t, l.BaseCredit.IsNegative(), "iteration %d line %d", i, l.LineNo)
			if l.IsDebit() {
				require.True(t, l.BaseCredit.IsZero(), "iteration %d line %d", i, l.LineNo)
				assert.True(t, l.BaseDebit.Sub(l.DebitAmount.Mul(rate)).Abs().LessThan(unit), "iteration %d line %d", i, l.LineNo)
			} else {
				require.True(t, l.BaseDebit.IsZero(), "iteration %d line %d", i, l.LineNo)
				assert.True(t, l.BaseCredit.Sub(l.CreditAmount.Mul(rate)).Abs().LessThan(unit), "iteration %d line %d", i, l.LineNo)
			}
			baseDebit = baseDebit.Add(l.BaseDebit)
			baseCredit = baseCredit.Add(l.BaseCredit)
		}
		require.True(t, baseDebit.Equal(baseCredit), "iteration %d: %s != %s", i, baseDebit, baseCredit)
		require.True(t, baseDebit.Equal(total.Mul(rate).Round(2)), "iteration %d", i)
	}
}

func TestAllocateBase_UnitRateIsIdentity(t *testing.T) {
	lines := []domain.JournalEntry{debitLine(1, 1, "12.34"), creditLine(2, 2, "12.34")}

	domain.AllocateBase(lines, decimal.NewFromInt(1), 2)

	assert.True(t, lines[0].BaseDebit.Equal(dec("12.34")))
	assert.True(t, lines[0].BaseCredit.IsZero())
	assert.True(t, lines[1].BaseCredit.Equal(dec("12.34")))
}
