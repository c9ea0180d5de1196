package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

type financialYearService struct {
	BaseService
	yearRepo portsrepo.FinancialYearRepositoryFacade
	uow      portsrepo.UnitOfWork
}

// NewFinancialYearService creates the financial year manager.
func NewFinancialYearService(yearRepo portsrepo.FinancialYearRepositoryFacade, uow portsrepo.UnitOfWork, audit portssvc.AuditRecorder) portssvc.FinancialYearSvcFacade {
	return &financialYearService{
		BaseService: BaseService{Audit: audit},
		yearRepo:    yearRepo,
		uow:         uow,
	}
}

var _ portssvc.FinancialYearSvcFacade = (*financialYearService)(nil)

func (s *financialYearService) CreateFinancialYear(ctx context.Context, businessID int64, req dto.CreateFinancialYearRequest, userID string) (*domain.FinancialYear, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", apperrors.ErrValidation)
	}
	start, end := domain.DateOnly(req.StartDate.Time), domain.DateOnly(req.EndDate.Time)
	if err := domain.ValidateYearRange(start, end); err != nil {
		return nil, err
	}
	now := s.now()
	year := domain.FinancialYear{
		BusinessID:  businessID,
		Name:        req.Name,
		StartDate:   start,
		EndDate:     end,
		IsCurrent:   req.IsCurrent,
		AuditFields: newAuditFields(userID, now),
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		overlapping, err := repos.Year.FindOverlappingYears(ctx, businessID, start, end)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w: %s overlaps %s", apperrors.ErrOverlappingPeriod, year.Name, overlapping[0].Name)
		}
		existing, err := repos.Year.ListFinancialYears(ctx, businessID)
		if err != nil {
			return err
		}
		// The first year of a business is always current.
		if len(existing) == 0 {
			year.IsCurrent = true
		}
		if year.IsCurrent {
			if err := repos.Year.ClearCurrentYear(ctx, businessID, userID, now); err != nil {
				return err
			}
		}
		id, err := repos.Year.SaveFinancialYear(ctx, year)
		if err != nil {
			return err
		}
		year.ID = id
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to create financial year", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to create financial year: %w", err)
	}

	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityFinancialYear, year.ID), nil, year, userID)
	s.LogInfo(ctx, "Financial year created", slog.Int64("business_id", businessID), slog.Int64("financial_year_id", year.ID))
	return &year, nil
}

func (s *financialYearService) GetFinancialYear(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error) {
	year, err := s.yearRepo.FindFinancialYearByID(ctx, businessID, yearID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get financial year", slog.Int64("financial_year_id", yearID))
		return nil, err
	}
	return year, nil
}

func (s *financialYearService) ListFinancialYears(ctx context.Context, businessID int64) ([]domain.FinancialYear, error) {
	years, err := s.yearRepo.ListFinancialYears(ctx, businessID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list financial years", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to list financial years: %w", err)
	}
	if years == nil {
		return []domain.FinancialYear{}, nil
	}
	return years, nil
}

// mutateYear locks one year, applies fn and stores the result.
func (s *financialYearService) mutateYear(ctx context.Context, businessID, yearID int64, userID string, fn func(ctx context.Context, repos portsrepo.TxRepositories, y *domain.FinancialYear) error) (before, after domain.FinancialYear, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		current, err := repos.Year.FindFinancialYearByIDForUpdate(ctx, businessID, yearID)
		if err != nil {
			return err
		}
		before, after = *current, *current
		if err := fn(ctx, repos, &after); err != nil {
			return err
		}
		touch(&after.AuditFields, userID, s.now())
		return repos.Year.UpdateFinancialYear(ctx, after)
	})
	return before, after, err
}

func (s *financialYearService) SetCurrentFinancialYear(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error) {
	before, after, err := s.mutateYear(ctx, businessID, yearID, userID, func(ctx context.Context, repos portsrepo.TxRepositories, y *domain.FinancialYear) error {
		if err := repos.Year.ClearCurrentYear(ctx, businessID, userID, s.now()); err != nil {
			return err
		}
		y.IsCurrent = true
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to set current financial year", slog.Int64("financial_year_id", yearID))
		return nil, fmt.Errorf("failed to set current financial year %d: %w", yearID, err)
	}
	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityFinancialYear, yearID), before, after, userID)
	s.LogInfo(ctx, "Current financial year changed", slog.Int64("business_id", businessID), slog.Int64("financial_year_id", yearID))
	return &after, nil
}

func (s *financialYearService) LockFinancialYear(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error) {
	before, after, err := s.mutateYear(ctx, businessID, yearID, userID, func(_ context.Context, _ portsrepo.TxRepositories, y *domain.FinancialYear) error {
		if y.IsLocked {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyLocked, y.Name)
		}
		now := s.now()
		y.IsLocked = true
		y.LockedAt = &now
		y.LockedBy = ptr(userID)
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to lock financial year", slog.Int64("financial_year_id", yearID))
		return nil, fmt.Errorf("failed to lock financial year %d: %w", yearID, err)
	}
	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityFinancialYear, yearID), before, after, userID)
	s.LogInfo(ctx, "Financial year locked", slog.Int64("business_id", businessID), slog.Int64("financial_year_id", yearID))
	return &after, nil
}

func (s *financialYearService) UnlockFinancialYear(ctx context.Context, businessID, yearID int64, confirm bool, userID string) (*domain.FinancialYear, error) {
	if !confirm {
		return nil, fmt.Errorf("%w: unlocking financial year %d", apperrors.ErrConfirmationRequired, yearID)
	}
	before, after, err := s.mutateYear(ctx, businessID, yearID, userID, func(_ context.Context, _ portsrepo.TxRepositories, y *domain.FinancialYear) error {
		if !y.IsLocked {
			return fmt.Errorf("%w: %s", apperrors.ErrNotLocked, y.Name)
		}
		y.IsLocked = false
		y.LockedAt = nil
		y.LockedBy = nil
		return nil
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to unlock financial year", slog.Int64("financial_year_id", yearID))
		return nil, fmt.Errorf("failed to unlock financial year %d: %w", yearID, err)
	}
	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityFinancialYear, yearID), before, after, userID)
	s.LogInfo(ctx, "Financial year unlocked", slog.Int64("business_id", businessID), slog.Int64("financial_year_id", yearID))
	return &after, nil
}

func (s *financialYearService) ValidatePostingDate(ctx context.Context, businessID int64, date time.Time) (*domain.FinancialYear, error) {
	year, err := postableYear(ctx, s.yearRepo, businessID, date)
	if err != nil {
		s.LogFailure(ctx, err, "Posting date rejected", slog.Int64("business_id", businessID), slog.String("date", date.Format(time.DateOnly)))
		return nil, err
	}
	return year, nil
}

// postableYear finds the year containing date and checks it accepts postings.
func postableYear(ctx context.Context, repo portsrepo.FinancialYearRepositoryFacade, businessID int64, date time.Time) (*domain.FinancialYear, error) {
	year, err := repo.FindFinancialYearForDate(ctx, businessID, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDateOutsideFinancialYear, date.Format(time.DateOnly))
		}
		return nil, err
	}
	if err := year.CheckPostable(date); err != nil {
		return nil, err
	}
	return year, nil
}
