package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, fromCode, toCode)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, code, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) DeleteCurrency(ctx context.Context, code string, userID string) error {
	return m.Called(ctx, code, userID).Error(0)
}
func (m *MockCurrencyService) SetDefaultCurrency(ctx context.Context, code string, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

// --- Mock VoucherService ---
type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) voucher(args mock.Arguments) (*domain.Voucher, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}
func (m *MockVoucherService) CreateVoucherType(ctx context.Context, businessID int64, req dto.CreateVoucherTypeRequest, userID string) (*domain.VoucherType, error) {
	args := m.Called(ctx, businessID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoucherType), args.Error(1)
}
func (m *MockVoucherService) ListVoucherTypes(ctx context.Context, businessID int64) ([]domain.VoucherType, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VoucherType), args.Error(1)
}
func (m *MockVoucherService) GetVoucher(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error) {
	return m.voucher(m.Called(ctx, businessID, voucherID))
}
func (m *MockVoucherService) ListVouchers(ctx context.Context, businessID int64, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	args := m.Called(ctx, businessID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListVouchersResponse), args.Error(1)
}
func (m *MockVoucherService) CreateDraft(ctx context.Context, businessID int64, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	return m.voucher(m.Called(ctx, businessID, req, userID))
}
func (m *MockVoucherService) UpdateDraft(ctx context.Context, businessID, voucherID int64, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	return m.voucher(m.Called(ctx, businessID, voucherID, req, userID))
}
func (m *MockVoucherService) DeleteDraft(ctx context.Context, businessID, voucherID int64, userID string) error {
	return m.Called(ctx, businessID, voucherID, userID).Error(0)
}
func (m *MockVoucherService) PostVoucher(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error) {
	return m.voucher(m.Called(ctx, businessID, voucherID, userID))
}
func (m *MockVoucherService) VoidVoucher(ctx context.Context, businessID, voucherID int64, reason string, userID string) (*domain.Voucher, error) {
	return m.voucher(m.Called(ctx, businessID, voucherID, reason, userID))
}
func (m *MockVoucherService) DuplicateVoucher(ctx context.Context, businessID, voucherID int64, userID string) (*domain.Voucher, error) {
	return m.voucher(m.Called(ctx, businessID, voucherID, userID))
}

var _ portssvc.VoucherSvcFacade = (*MockVoucherService)(nil)

// --- Mock FinancialYearService ---
type MockFinancialYearService struct {
	mock.Mock
}

func (m *MockFinancialYearService) year(args mock.Arguments) (*domain.FinancialYear, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialYear), args.Error(1)
}
func (m *MockFinancialYearService) CreateFinancialYear(ctx context.Context, businessID int64, req dto.CreateFinancialYearRequest, userID string) (*domain.FinancialYear, error) {
	return m.year(m.Called(ctx, businessID, req, userID))
}
func (m *MockFinancialYearService) GetFinancialYear(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error) {
	return m.year(m.Called(ctx, businessID, yearID))
}
func (m *MockFinancialYearService) ListFinancialYears(ctx context.Context, businessID int64) ([]domain.FinancialYear, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialYear), args.Error(1)
}
func (m *MockFinancialYearService) SetCurrentFinancialYear(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error) {
	return m.year(m.Called(ctx, businessID, yearID, userID))
}
func (m *MockFinancialYearService) LockFinancialYear(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error) {
	return m.year(m.Called(ctx, businessID, yearID, userID))
}
func (m *MockFinancialYearService) UnlockFinancialYear(ctx context.Context, businessID, yearID int64, confirm bool, userID string) (*domain.FinancialYear, error) {
	return m.year(m.Called(ctx, businessID, yearID, confirm, userID))
}
func (m *MockFinancialYearService) ValidatePostingDate(ctx context.Context, businessID int64, date time.Time) (*domain.FinancialYear, error) {
	return m.year(m.Called(ctx, businessID, date))
}

var _ portssvc.FinancialYearSvcFacade = (*MockFinancialYearService)(nil)

// --- Mock RatioService ---
type MockRatioService struct {
	mock.Mock
}

func (m *MockRatioService) ratio(args mock.Arguments) (*domain.FinancialRatio, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialRatio), args.Error(1)
}
func (m *MockRatioService) CalculateRatios(ctx context.Context, businessID, yearID int64, date time.Time, userID string) (*domain.FinancialRatio, error) {
	return m.ratio(m.Called(ctx, businessID, yearID, date, userID))
}
func (m *MockRatioService) RecalculateRatios(ctx context.Context, businessID, ratioID int64, userID string) (*domain.FinancialRatio, error) {
	return m.ratio(m.Called(ctx, businessID, ratioID, userID))
}
func (m *MockRatioService) GetRatios(ctx context.Context, businessID, ratioID int64) (*domain.FinancialRatio, error) {
	return m.ratio(m.Called(ctx, businessID, ratioID))
}
func (m *MockRatioService) ListRatios(ctx context.Context, businessID int64, yearID *int64) ([]domain.FinancialRatio, error) {
	args := m.Called(ctx, businessID, yearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialRatio), args.Error(1)
}
func (m *MockRatioService) DeleteRatios(ctx context.Context, businessID, ratioID int64, userID string) error {
	return m.Called(ctx, businessID, ratioID, userID).Error(0)
}

var _ portssvc.RatioSvcFacade = (*MockRatioService)(nil)
