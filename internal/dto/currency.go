package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest defines the data needed to create a new currency.
type CreateCurrencyRequest struct {
	Code         string          `json:"code" binding:"required,alpha,len=3"`
	Name         string          `json:"name" binding:"required"`
	Symbol       string          `json:"symbol" binding:"required"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"` // ignored for the first currency, which becomes default
}

// UpdateCurrencyRequest carries the fields to change on a currency.
type UpdateCurrencyRequest struct {
	Name         *string          `json:"name,omitempty"`
	Symbol       *string          `json:"symbol,omitempty"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate,omitempty"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	IsDefault     bool            `json:"isDefault"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ConvertCurrencyResponse is the result of a conversion query.
type ConvertCurrencyResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Result decimal.Decimal `json:"result"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:          curr.Code,
		Name:          curr.Name,
		Symbol:        curr.Symbol,
		ExchangeRate:  curr.ExchangeRate,
		IsDefault:     curr.IsDefault,
		CreatedAt:     curr.CreatedAt,
		CreatedBy:     curr.CreatedBy,
		LastUpdatedAt: curr.LastUpdatedAt,
		LastUpdatedBy: curr.LastUpdatedBy,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}
