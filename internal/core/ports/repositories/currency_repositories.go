package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CurrencyReader defines read operations for currency data.
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a currency by its 3-letter code.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	// FindDefaultCurrency retrieves the currency flagged as default.
	FindDefaultCurrency(ctx context.Context) (*domain.Currency, error)
	// ListCurrencies retrieves all currencies ordered by code.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data.
type CurrencyWriter interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	UpdateCurrency(ctx context.Context, currency domain.Currency) error
	DeleteCurrency(ctx context.Context, code string) error
	// ListCurrenciesForUpdate locks every currency row. Used when the
	// default currency changes.
	ListCurrenciesForUpdate(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyRepositoryFacade combines all currency repository interfaces.
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
