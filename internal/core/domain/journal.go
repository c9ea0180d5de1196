package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the lifecycle state of a voucher.
// Transitions are draft -> posted -> void only.
type VoucherStatus string

const (
	VoucherDraft  VoucherStatus = "draft"
	VoucherPosted VoucherStatus = "posted"
	VoucherVoid   VoucherStatus = "void"
)

// Voucher groups balanced journal lines under one transaction header.
type Voucher struct {
	ID               int64           `json:"id"`
	BusinessID       int64           `json:"businessID"`
	VoucherTypeID    int64           `json:"voucherTypeID"`
	Date             time.Time       `json:"date"`
	Narration        string          `json:"narration,omitempty"`
	Status           VoucherStatus   `json:"status"`
	ReferenceNumber  string          `json:"referenceNumber,omitempty"` // assigned at posting
	SequenceNumber   *int64          `json:"sequenceNumber,omitempty"`
	FinancialYearID  *int64          `json:"financialYearID,omitempty"`
	CurrencyCode     string          `json:"currencyCode"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"` // snapshot at posting
	PostedAt         *time.Time      `json:"postedAt,omitempty"`
	PostedBy         *string         `json:"postedBy,omitempty"`
	VoidedAt         *time.Time      `json:"voidedAt,omitempty"`
	VoidedBy         *string         `json:"voidedBy,omitempty"`
	VoidReason       string          `json:"voidReason,omitempty"`
	DuplicatedFromID *int64          `json:"duplicatedFromID,omitempty"`
	Entries          []JournalEntry  `json:"entries"`
	AuditFields
}

// OriginalEntries returns the lines the voucher was drafted with.
func (v Voucher) OriginalEntries() []JournalEntry {
	out := make([]JournalEntry, 0, len(v.Entries))
	for _, e := range v.Entries {
		if e.Kind != EntryReversal {
			out = append(out, e)
		}
	}
	return out
}

// ReversalEntries mirrors the original lines with debit and credit swapped,
// dated at date.
func (v Voucher) ReversalEntries(date time.Time) []JournalEntry {
	originals := v.OriginalEntries()
	out := make([]JournalEntry, 0, len(originals))
	for i, e := range originals {
		out = append(out, JournalEntry{
			VoucherID:       v.ID,
			LineNo:          len(originals) + i + 1,
			LedgerAccountID: e.LedgerAccountID,
			DebitAmount:     e.CreditAmount,
			CreditAmount:    e.DebitAmount,
			BaseDebit:       e.BaseCredit,
			BaseCredit:      e.BaseDebit,
			CostCenterID:    e.CostCenterID,
			PartyID:         e.PartyID,
			Narration:       e.Narration,
			Kind:            EntryReversal,
			EntryDate:       DateOnly(date),
		})
	}
	return out
}

// Duplicate returns a new draft carrying the same header and original lines.
func (v Voucher) Duplicate() Voucher {
	src := v.ID
	dup := Voucher{
		BusinessID:       v.BusinessID,
		VoucherTypeID:    v.VoucherTypeID,
		Date:             v.Date,
		Narration:        v.Narration,
		Status:           VoucherDraft,
		CurrencyCode:     v.CurrencyCode,
		DuplicatedFromID: &src,
	}
	for i, e := range v.OriginalEntries() {
		dup.Entries = append(dup.Entries, JournalEntry{
			LineNo:          i + 1,
			LedgerAccountID: e.LedgerAccountID,
			DebitAmount:     e.DebitAmount,
			CreditAmount:    e.CreditAmount,
			CostCenterID:    e.CostCenterID,
			PartyID:         e.PartyID,
			Narration:       e.Narration,
			Kind:            EntryOriginal,
			EntryDate:       v.Date,
		})
	}
	return dup
}

// VoucherFilter narrows a voucher listing. Zero values mean no filter.
type VoucherFilter struct {
	Status        VoucherStatus
	VoucherTypeID *int64
	From          *time.Time
	To            *time.Time
}
