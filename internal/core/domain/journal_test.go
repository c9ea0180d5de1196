package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucher_ReversalEntriesMirrorOriginals(t *testing.T) {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	v := domain.Voucher{
		ID:   9,
		Date: date,
		Entries: []domain.JournalEntry{
			{LineNo: 1, LedgerAccountID: 1, DebitAmount: dec("50"), BaseDebit: dec("50"), Kind: domain.EntryOriginal, EntryDate: date},
			{LineNo: 2, LedgerAccountID: 2, CreditAmount: dec("50"), BaseCredit: dec("50"), Kind: domain.EntryOriginal, EntryDate: date},
		},
	}
	voidDate := time.Date(2024, 6, 3, 15, 4, 0, 0, time.UTC)

	rev := v.ReversalEntries(voidDate)

	require.Len(t, rev, 2)
	assert.Equal(t, domain.EntryReversal, rev[0].Kind)
	assert.True(t, rev[0].CreditAmount.Equal(dec("50")))
	assert.True(t, rev[0].BaseCredit.Equal(dec("50")))
	assert.True(t, rev[0].DebitAmount.IsZero())
	assert.True(t, rev[1].DebitAmount.Equal(dec("50")))
	assert.Equal(t, 3, rev[0].LineNo)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), rev[0].EntryDate)
	assert.NoError(t, domain.CheckBalanced(append(v.Entries, rev...)))
}

func TestVoucher_DuplicateIsDraftWithoutPostingState(t *testing.T) {
	seq := int64(4)
	year := int64(2)
	v := domain.Voucher{
		ID:              11,
		BusinessID:      1,
		VoucherTypeID:   3,
		Status:          domain.VoucherVoid,
		ReferenceNumber: "JV-00004",
		SequenceNumber:  &seq,
		FinancialYearID: &year,
		CurrencyCode:    "USD",
		Entries: []domain.JournalEntry{
			{LineNo: 1, LedgerAccountID: 1, DebitAmount: dec("5"), Kind: domain.EntryOriginal},
			{LineNo: 2, LedgerAccountID: 2, CreditAmount: dec("5"), Kind: domain.EntryOriginal},
			{LineNo: 3, LedgerAccountID: 1, CreditAmount: dec("5"), Kind: domain.EntryReversal},
			{LineNo: 4, LedgerAccountID: 2, DebitAmount: dec("5"), Kind: domain.EntryReversal},
		},
	}

	dup := v.Duplicate()

	assert.Equal(t, domain.VoucherDraft, dup.Status)
	assert.Empty(t, dup.ReferenceNumber)
	assert.Nil(t, dup.SequenceNumber)
	assert.Nil(t, dup.FinancialYearID)
	require.NotNil(t, dup.DuplicatedFromID)
	assert.Equal(t, int64(11), *dup.DuplicatedFromID)
	assert.Len(t, dup.Entries, 2)
}

func TestVoucherType_FormatReference(t *testing.T) {
	vt := domain.VoucherType{Prefix: "RCT-", NumberWidth: 5}
	assert.Equal(t, "RCT-00042", vt.FormatReference(42))
	assert.Equal(t, "RCT-123456", vt.FormatReference(123456))
}

func TestVoucherType_CheckLines(t *testing.T) {
	ledgers := map[int64]domain.LedgerAccount{
		1: {ID: 1, IsCashAccount: true},
		2: {ID: 2},
		3: {ID: 3, IsBankAccount: true},
	}
	receipt := domain.VoucherType{Nature: domain.NatureReceipt}
	payment := domain.VoucherType{Nature: domain.NaturePayment}
	contra := domain.VoucherType{Nature: domain.NatureContra}
	journal := domain.VoucherType{Nature: domain.NatureJournal}

	cashIn := []domain.JournalEntry{debitLine(1, 1, "10"), creditLine(2, 2, "10")}
	cashOut := []domain.JournalEntry{debitLine(1, 2, "10"), creditLine(2, 1, "10")}
	transfer := []domain.JournalEntry{debitLine(1, 3, "10"), creditLine(2, 1, "10")}

	assert.NoError(t, receipt.CheckLines(cashIn, ledgers))
	assert.ErrorIs(t, receipt.CheckLines(cashOut, ledgers), apperrors.ErrVoucherTypeRule)
	assert.NoError(t, payment.CheckLines(cashOut, ledgers))
	assert.ErrorIs(t, payment.CheckLines(cashIn, ledgers), apperrors.ErrVoucherTypeRule)
	assert.NoError(t, contra.CheckLines(transfer, ledgers))
	assert.ErrorIs(t, contra.CheckLines(cashIn, ledgers), apperrors.ErrVoucherTypeRule)
	assert.NoError(t, journal.CheckLines(cashOut, ledgers))
}
