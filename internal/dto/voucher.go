package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateVoucherTypeRequest defines the data needed to add a voucher type.
type CreateVoucherTypeRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Nature         string `json:"nature" binding:"required,oneof=receipt payment journal sales purchase contra credit_note debit_note"`
	Prefix         string `json:"prefix" binding:"max=20"`
	StartingNumber int64  `json:"startingNumber" binding:"omitempty,min=1"`
	NumberWidth    int    `json:"numberWidth" binding:"omitempty,min=1,max=12"`
}

// JournalLineRequest is one line of a voucher as submitted by the caller.
// Exactly one of DebitAmount and CreditAmount must be non-zero.
type JournalLineRequest struct {
	LedgerAccountID int64           `json:"ledgerAccountID" binding:"required"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	CostCenterID    *int64          `json:"costCenterID,omitempty"`
	PartyID         *int64          `json:"partyID,omitempty"`
	Narration       string          `json:"narration,omitempty" binding:"max=500"`
}

// CreateVoucherRequest defines the data needed to create a draft voucher.
// CurrencyCode defaults to the default currency.
type CreateVoucherRequest struct {
	VoucherTypeID int64                `json:"voucherTypeID" binding:"required"`
	Date          Date                 `json:"date"`
	Narration     string               `json:"narration" binding:"max=1000"`
	CurrencyCode  string               `json:"currencyCode" binding:"omitempty,alpha,len=3"`
	Lines         []JournalLineRequest `json:"lines" binding:"dive"`
}

// UpdateVoucherRequest replaces the header and lines of a draft.
type UpdateVoucherRequest = CreateVoucherRequest

// VoidVoucherRequest carries the optional reason for a void.
type VoidVoucherRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListVouchersParams defines the query parameters for listing vouchers.
type ListVouchersParams struct {
	Status        string `form:"status" binding:"omitempty,oneof=draft posted void"`
	VoucherTypeID *int64 `form:"voucherTypeID"`
	From          string `form:"from"`
	To            string `form:"to"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken     string `form:"nextToken"`
}

// JournalEntryResponse defines the data returned for one voucher line.
type JournalEntryResponse struct {
	ID              int64           `json:"id"`
	LineNo          int             `json:"lineNo"`
	LedgerAccountID int64           `json:"ledgerAccountID"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	BaseDebit       decimal.Decimal `json:"baseDebit"`
	BaseCredit      decimal.Decimal `json:"baseCredit"`
	CostCenterID    *int64          `json:"costCenterID,omitempty"`
	PartyID         *int64          `json:"partyID,omitempty"`
	Narration       string          `json:"narration,omitempty"`
	Kind            string          `json:"kind"`
	EntryDate       Date            `json:"entryDate"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	ID               int64                  `json:"id"`
	VoucherTypeID    int64                  `json:"voucherTypeID"`
	Date             Date                   `json:"date"`
	Narration        string                 `json:"narration,omitempty"`
	Status           string                 `json:"status"`
	ReferenceNumber  string                 `json:"referenceNumber,omitempty"`
	FinancialYearID  *int64                 `json:"financialYearID,omitempty"`
	CurrencyCode     string                 `json:"currencyCode"`
	ExchangeRate     decimal.Decimal        `json:"exchangeRate"`
	TotalDebit       decimal.Decimal        `json:"totalDebit"`
	TotalCredit      decimal.Decimal        `json:"totalCredit"`
	PostedAt         *time.Time             `json:"postedAt,omitempty"`
	PostedBy         *string                `json:"postedBy,omitempty"`
	VoidedAt         *time.Time             `json:"voidedAt,omitempty"`
	VoidedBy         *string                `json:"voidedBy,omitempty"`
	VoidReason       string                 `json:"voidReason,omitempty"`
	DuplicatedFromID *int64                 `json:"duplicatedFromID,omitempty"`
	Entries          []JournalEntryResponse `json:"entries,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	CreatedBy        string                 `json:"createdBy"`
}

// ListVouchersResponse is a page of vouchers.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToVoucherResponse converts a domain.Voucher to its DTO. Totals cover the
// original lines only.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	debits, credits := domain.Totals(v.OriginalEntries())
	res := VoucherResponse{
		ID:               v.ID,
		VoucherTypeID:    v.VoucherTypeID,
		Date:             NewDate(v.Date),
		Narration:        v.Narration,
		Status:           string(v.Status),
		ReferenceNumber:  v.ReferenceNumber,
		FinancialYearID:  v.FinancialYearID,
		CurrencyCode:     v.CurrencyCode,
		ExchangeRate:     v.ExchangeRate,
		TotalDebit:       debits,
		TotalCredit:      credits,
		PostedAt:         v.PostedAt,
		PostedBy:         v.PostedBy,
		VoidedAt:         v.VoidedAt,
		VoidedBy:         v.VoidedBy,
		VoidReason:       v.VoidReason,
		DuplicatedFromID: v.DuplicatedFromID,
		CreatedAt:        v.CreatedAt,
		CreatedBy:        v.CreatedBy,
	}
	for _, e := range v.Entries {
		res.Entries = append(res.Entries, JournalEntryResponse{
			ID:              e.ID,
			LineNo:          e.LineNo,
			LedgerAccountID: e.LedgerAccountID,
			DebitAmount:     e.DebitAmount,
			CreditAmount:    e.CreditAmount,
			BaseDebit:       e.BaseDebit,
			BaseCredit:      e.BaseCredit,
			CostCenterID:    e.CostCenterID,
			PartyID:         e.PartyID,
			Narration:       e.Narration,
			Kind:            string(e.Kind),
			EntryDate:       NewDate(e.EntryDate),
		})
	}
	return res
}

// ToVoucherEntries converts request lines into draft journal entries.
func ToVoucherEntries(lines []JournalLineRequest, date time.Time) []domain.JournalEntry {
	entries := make([]domain.JournalEntry, len(lines))
	for i, l := range lines {
		entries[i] = domain.JournalEntry{
			LineNo:          i + 1,
			LedgerAccountID: l.LedgerAccountID,
			DebitAmount:     l.DebitAmount,
			CreditAmount:    l.CreditAmount,
			CostCenterID:    l.CostCenterID,
			PartyID:         l.PartyID,
			Narration:       l.Narration,
			Kind:            domain.EntryOriginal,
			EntryDate:       domain.DateOnly(date),
		}
	}
	return entries
}
