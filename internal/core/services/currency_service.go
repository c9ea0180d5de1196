package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	uow          portsrepo.UnitOfWork
}

// NewCurrencyService creates the currency and exchange service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, uow portsrepo.UnitOfWork, audit portssvc.AuditRecorder) portssvc.CurrencySvcFacade {
	return &currencyService{
		BaseService:  BaseService{Audit: audit},
		currencyRepo: currencyRepo,
		uow:          uow,
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// findCurrency maps a missing code to ErrInvalidCurrency.
func findCurrency(ctx context.Context, repo portsrepo.CurrencyReader, code string) (*domain.Currency, error) {
	normalized, err := domain.NormalizeCurrencyCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, code)
	}
	currency, err := repo.FindCurrencyByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCurrency, normalized)
		}
		return nil, fmt.Errorf("failed to find currency %s: %w", normalized, err)
	}
	return currency, nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := findCurrency(ctx, s.currencyRepo, code)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get currency", slog.String("currency_code", code))
		return nil, err
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

func (s *currencyService) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	from, err := findCurrency(ctx, s.currencyRepo, fromCode)
	if err != nil {
		s.LogFailure(ctx, err, "Conversion source currency lookup failed", slog.String("currency_code", fromCode))
		return decimal.Zero, err
	}
	to, err := findCurrency(ctx, s.currencyRepo, toCode)
	if err != nil {
		s.LogFailure(ctx, err, "Conversion target currency lookup failed", slog.String("currency_code", toCode))
		return decimal.Zero, err
	}
	return domain.Convert(amount, *from, *to), nil
}

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	code, err := domain.NormalizeCurrencyCode(req.Code)
	if err != nil {
		return nil, err
	}
	now := s.now()
	currency := domain.Currency{
		Code:         code,
		Name:         req.Name,
		Symbol:       req.Symbol,
		ExchangeRate: req.ExchangeRate,
		AuditFields:  newAuditFields(userID, now),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		// Lock the table's rows so two first currencies cannot both become default.
		existing, err := repos.Currency.ListCurrenciesForUpdate(ctx)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			currency.IsDefault = true
			currency.ExchangeRate = decimal.NewFromInt(1)
		} else if err := domain.ValidateExchangeRate(currency.ExchangeRate); err != nil {
			return err
		}
		return repos.Currency.SaveCurrency(ctx, currency)
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create currency", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to create currency %s: %w", code, err)
	}

	s.record(ctx, nil, domain.ActionCreate, domain.EntityRef{Kind: domain.EntityCurrency, ID: code}, nil, currency, userID)
	s.LogInfo(ctx, "Currency created", slog.String("currency_code", code), slog.Bool("is_default", currency.IsDefault))
	return &currency, nil
}

func (s *currencyService) UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error) {
	current, err := findCurrency(ctx, s.currencyRepo, code)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find currency for update", slog.String("currency_code", code))
		return nil, err
	}
	before := *current
	updated := *current

	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Symbol != nil {
		updated.Symbol = *req.Symbol
	}
	if req.ExchangeRate != nil {
		if updated.IsDefault && !req.ExchangeRate.Equal(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: the default currency rate is fixed at 1", apperrors.ErrValidation)
		}
		if err := domain.ValidateExchangeRate(*req.ExchangeRate); err != nil {
			return nil, err
		}
		updated.ExchangeRate = *req.ExchangeRate
	}
	touch(&updated.AuditFields, userID, s.now())

	if err := s.currencyRepo.UpdateCurrency(ctx, updated); err != nil {
		s.LogFailure(ctx, err, "Failed to update currency", slog.String("currency_code", updated.Code))
		return nil, fmt.Errorf("failed to update currency %s: %w", updated.Code, err)
	}

	s.record(ctx, nil, domain.ActionUpdate, domain.EntityRef{Kind: domain.EntityCurrency, ID: updated.Code}, before, updated, userID)
	return &updated, nil
}

func (s *currencyService) DeleteCurrency(ctx context.Context, code string, userID string) error {
	current, err := findCurrency(ctx, s.currencyRepo, code)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find currency for delete", slog.String("currency_code", code))
		return err
	}
	if current.IsDefault {
		return fmt.Errorf("%w: %s", apperrors.ErrCannotDeleteDefault, current.Code)
	}
	if err := s.currencyRepo.DeleteCurrency(ctx, current.Code); err != nil {
		s.LogFailure(ctx, err, "Failed to delete currency", slog.String("currency_code", current.Code))
		return fmt.Errorf("failed to delete currency %s: %w", current.Code, err)
	}
	s.record(ctx, nil, domain.ActionDelete, domain.EntityRef{Kind: domain.EntityCurrency, ID: current.Code}, *current, nil, userID)
	s.LogInfo(ctx, "Currency deleted", slog.String("currency_code", current.Code))
	return nil
}

func (s *currencyService) SetDefaultCurrency(ctx context.Context, code string, userID string) (*domain.Currency, error) {
	normalized, err := domain.NormalizeCurrencyCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, code)
	}
	now := s.now()
	var before, after []domain.Currency

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := repos.Currency.ListCurrenciesForUpdate(ctx)
		if err != nil {
			return err
		}
		rebased, err := domain.RebaseRates(current, normalized)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidCurrency) {
				return fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, normalized)
			}
			return err
		}
		// Unset the old default before setting the new one so a partial
		// unique index on is_default never sees two defaults.
		ordered := make([]int, 0, len(rebased))
		for i := range rebased {
			if !rebased[i].IsDefault {
				ordered = append(ordered, i)
			}
		}
		for i := range rebased {
			if rebased[i].IsDefault {
				ordered = append(ordered, i)
			}
		}
		for _, i := range ordered {
			if rebased[i].IsDefault == current[i].IsDefault && rebased[i].ExchangeRate.Equal(current[i].ExchangeRate) {
				continue
			}
			touch(&rebased[i].AuditFields, userID, now)
			if err := repos.Currency.UpdateCurrency(ctx, rebased[i]); err != nil {
				return err
			}
			before = append(before, current[i])
			after = append(after, rebased[i])
		}
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to set default currency", slog.String("currency_code", normalized))
		return nil, fmt.Errorf("failed to set default currency %s: %w", normalized, err)
	}

	var result *domain.Currency
	for i := range after {
		s.record(ctx, nil, domain.ActionUpdate, domain.EntityRef{Kind: domain.EntityCurrency, ID: after[i].Code}, before[i], after[i], userID)
		if after[i].Code == normalized {
			result = &after[i]
		}
	}
	if result == nil {
		// Already the default; nothing changed.
		return findCurrency(ctx, s.currencyRepo, normalized)
	}
	s.LogInfo(ctx, "Default currency changed", slog.String("currency_code", normalized), slog.Int("rebased", len(after)))
	return result, nil
}
