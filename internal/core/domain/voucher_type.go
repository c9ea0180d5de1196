package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// VoucherNature drives the line rules a voucher type enforces at posting.
type VoucherNature string

const (
	NatureReceipt    VoucherNature = "receipt"
	NaturePayment    VoucherNature = "payment"
	NatureJournal    VoucherNature = "journal"
	NatureSales      VoucherNature = "sales"
	NaturePurchase   VoucherNature = "purchase"
	NatureContra     VoucherNature = "contra"
	NatureCreditNote VoucherNature = "credit_note"
	NatureDebitNote  VoucherNature = "debit_note"
)

// Valid reports whether n is a known voucher nature.
func (n VoucherNature) Valid() bool {
	switch n {
	case NatureReceipt, NaturePayment, NatureJournal, NatureSales,
		NaturePurchase, NatureContra, NatureCreditNote, NatureDebitNote:
		return true
	}
	return false
}

// VoucherType names a kind of voucher and its numbering scheme.
type VoucherType struct {
	ID             int64         `json:"id"`
	BusinessID     int64         `json:"businessID"`
	Name           string        `json:"name"`
	Nature         VoucherNature `json:"nature"`
	Prefix         string        `json:"prefix"`
	StartingNumber int64         `json:"startingNumber"`
	NumberWidth    int           `json:"numberWidth"`
	IsSystem       bool          `json:"isSystem"`
	AuditFields
}

// FormatReference renders a sequence number using the type's scheme.
func (t VoucherType) FormatReference(seq int64) string {
	return fmt.Sprintf("%s%0*d", t.Prefix, t.NumberWidth, seq)
}

// CheckLines enforces the nature rules on a voucher's lines. ledgers must
// contain every account the lines reference.
func (t VoucherType) CheckLines(lines []JournalEntry, ledgers map[int64]LedgerAccount) error {
	switch t.Nature {
	case NatureReceipt:
		if !anyLine(lines, func(l JournalEntry) bool { return l.IsDebit() && ledgers[l.LedgerAccountID].IsCashOrBank() }) {
			return fmt.Errorf("%w: a receipt must debit a cash or bank account", apperrors.ErrVoucherTypeRule)
		}
	case NaturePayment:
		if !anyLine(lines, func(l JournalEntry) bool { return !l.IsDebit() && ledgers[l.LedgerAccountID].IsCashOrBank() }) {
			return fmt.Errorf("%w: a payment must credit a cash or bank account", apperrors.ErrVoucherTypeRule)
		}
	case NatureContra:
		for _, l := range lines {
			if !ledgers[l.LedgerAccountID].IsCashOrBank() {
				return fmt.Errorf("%w: contra line %d uses ledger %d which is not cash or bank", apperrors.ErrVoucherTypeRule, l.LineNo, l.LedgerAccountID)
			}
		}
	}
	return nil
}

func anyLine(lines []JournalEntry, pred func(JournalEntry) bool) bool {
	for _, l := range lines {
		if pred(l) {
			return true
		}
	}
	return false
}

// DefaultVoucherTypes returns the system voucher types seeded for a business.
func DefaultVoucherTypes() []VoucherType {
	return []VoucherType{
		{Name: "Receipt", Nature: NatureReceipt, Prefix: "RCT-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Payment", Nature: NaturePayment, Prefix: "PMT-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Journal", Nature: NatureJournal, Prefix: "JV-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Sales", Nature: NatureSales, Prefix: "INV-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Purchase", Nature: NaturePurchase, Prefix: "BILL-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Contra", Nature: NatureContra, Prefix: "CTR-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Credit Note", Nature: NatureCreditNote, Prefix: "CN-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
		{Name: "Debit Note", Nature: NatureDebitNote, Prefix: "DN-", StartingNumber: 1, NumberWidth: 5, IsSystem: true},
	}
}
