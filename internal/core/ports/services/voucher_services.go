package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// VoucherTypeSvc manages voucher types.
type VoucherTypeSvc interface {
	CreateVoucherType(ctx context.Context, businessID int64, req dto.CreateVoucherTypeRequest, userID string) (*domain.VoucherType, error)
	ListVoucherTypes(ctx context.Context, businessID int64) ([]domain.VoucherType, error)
}

// VoucherReaderSvc defines read operations for vouchers.
type VoucherReaderSvc interface {
	GetVoucher(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error)
	ListVouchers(ctx context.Context, businessID int64, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)
}

// VoucherWriterSvc defines the voucher state machine: draft -> posted -> void.
type VoucherWriterSvc interface {
	// CreateDraft stores a voucher without balance validation.
	CreateDraft(ctx context.Context, businessID int64, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error)
	UpdateDraft(ctx context.Context, businessID, voucherID int64, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error)
	DeleteDraft(ctx context.Context, businessID, voucherID int64, userID string) error
	// PostVoucher validates and commits a draft, updating ledger balances.
	PostVoucher(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error)
	// VoidVoucher reverses a posted voucher with mirror lines.
	VoidVoucher(ctx context.Context, businessID, voucherID int64, reason string, userID string) (*domain.Voucher, error)
	// DuplicateVoucher copies any voucher into a new draft.
	DuplicateVoucher(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces.
type VoucherSvcFacade interface {
	VoucherTypeSvc
	VoucherReaderSvc
	VoucherWriterSvc
}
