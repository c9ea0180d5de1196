package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// ConvertAmount converts amount between two currencies through the
	// default currency.
	ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency. The first currency becomes the default.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error)

	// UpdateCurrency changes the name, symbol or rate of a currency.
	UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error)

	// DeleteCurrency removes a non-default currency.
	DeleteCurrency(ctx context.Context, code string, userID string) error

	// SetDefaultCurrency makes code the default and rebases the other rates.
	SetDefaultCurrency(ctx context.Context, code string, userID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
