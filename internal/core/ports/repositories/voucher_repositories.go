package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// VoucherTypeRepositoryFacade defines persistence for voucher types.
type VoucherTypeRepositoryFacade interface {
	SaveVoucherType(ctx context.Context, vt domain.VoucherType) (int64, error)
	FindVoucherTypeByID(ctx context.Context, businessID, typeID int64) (*domain.VoucherType, error)
	ListVoucherTypes(ctx context.Context, businessID int64) ([]domain.VoucherType, error)
}

// VoucherReader defines read operations for vouchers.
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher with all of its entries.
	FindVoucherByID(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error)
	// ListVouchers retrieves vouchers newest first, without entries.
	ListVouchers(ctx context.Context, businessID int64, filter domain.VoucherFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error)
}

// VoucherWriter defines write operations for vouchers.
type VoucherWriter interface {
	// SaveVoucher inserts a voucher and its entries.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) (int64, error)
	// ReplaceDraft rewrites a draft's header and entries.
	ReplaceDraft(ctx context.Context, voucher domain.Voucher) error
	DeleteVoucher(ctx context.Context, businessID, voucherID int64) error
}

// VoucherTransactionSupport defines operations used by the posting engine.
type VoucherTransactionSupport interface {
	// FindVoucherByIDForUpdate locks the voucher row and loads its entries.
	FindVoucherByIDForUpdate(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error)
	// MarkPosted stores posting state on the header and base amounts on
	// the entries.
	MarkPosted(ctx context.Context, voucher domain.Voucher) error
	// MarkVoid stores void state and inserts the reversal entries.
	MarkVoid(ctx context.Context, voucher domain.Voucher, reversals []domain.JournalEntry) error
	// NextSequenceNumber increments and returns the counter for
	// (business, type, year), starting at start.
	NextSequenceNumber(ctx context.Context, businessID, typeID, yearID, start int64) (int64, error)
}

// VoucherRepositoryFacade combines all voucher repository interfaces.
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
	VoucherTransactionSupport
}

// ReportingRepository aggregates posted journal lines.
type ReportingRepository interface {
	// SumLines totals base amounts of entries of posted vouchers per ledger
	// with entry_date in [from, to]. Draft and void vouchers are excluded.
	// A nil from means no lower bound and a non-nil ledgerID restricts the
	// result to that ledger.
	SumLines(ctx context.Context, businessID int64, from *time.Time, to time.Time, ledgerID *int64) ([]domain.LedgerMovement, error)
}
