package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

const (
	// RateScale is the number of fractional digits stored for exchange rates.
	RateScale int32 = 10
	// ConversionScale is the scale converted amounts are carried at before
	// they are rounded to a business amount precision.
	ConversionScale int32 = 10
)

// MinExchangeRate is the smallest rate a currency may carry.
var MinExchangeRate = decimal.New(1, -6)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency represents a supported currency. ExchangeRate is the number of
// default-currency units one unit of this currency is worth.
type Currency struct {
	Code         string          `json:"code"` // Primary Key (e.g., "USD")
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	IsDefault    bool            `json:"isDefault"`
	AuditFields
}

// NormalizeCurrencyCode upper-cases and validates a 3-letter code.
func NormalizeCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: currency code %q must be 3 letters", apperrors.ErrValidation, code)
	}
	return code, nil
}

// ValidateExchangeRate rejects rates below MinExchangeRate.
func ValidateExchangeRate(rate decimal.Decimal) error {
	if rate.LessThan(MinExchangeRate) {
		return fmt.Errorf("%w: exchange rate must be at least %s", apperrors.ErrValidation, MinExchangeRate)
	}
	return nil
}

// Rate returns the effective rate against the default currency.
func (c Currency) Rate() decimal.Decimal {
	if c.IsDefault {
		return decimal.NewFromInt(1)
	}
	return c.ExchangeRate
}

// Convert converts amount from one currency to another using the default
// currency as the pivot: amount * from.rate / to.rate.
func Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from.Code == to.Code {
		return amount
	}
	return amount.Mul(from.Rate()).DivRound(to.Rate(), ConversionScale)
}

// RebaseRates returns the currencies with rates re-expressed against
// newDefault, which ends up with rate 1 and IsDefault set. Cross rates
// between any two currencies are preserved; a currency whose rebased rate
// falls below MinExchangeRate fails the rebase with ErrValidation.
func RebaseRates(currencies []Currency, newDefault string) ([]Currency, error) {
	var pivot *Currency
	for i := range currencies {
		if currencies[i].Code == newDefault {
			pivot = &currencies[i]
			break
		}
	}
	if pivot == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, newDefault)
	}
	pivotRate := pivot.Rate()

	out := make([]Currency, len(currencies))
	for i, c := range currencies {
		c.ExchangeRate = c.Rate().DivRound(pivotRate, RateScale)
		c.IsDefault = c.Code == newDefault
		if c.IsDefault {
			c.ExchangeRate = decimal.NewFromInt(1)
		} else if c.ExchangeRate.LessThan(MinExchangeRate) {
			return nil, fmt.Errorf("%w: %s would be worth %s %s, below the minimum rate %s",
				apperrors.ErrValidation, c.Code, c.ExchangeRate, newDefault, MinExchangeRate)
		}
		out[i] = c
	}
	return out, nil
}
