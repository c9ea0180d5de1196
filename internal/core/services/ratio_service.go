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
)

type ratioService struct {
	BaseService
	repos   portsrepo.TxRepositories
	uow     portsrepo.UnitOfWork
	locker  portssvc.Locker
	lockTTL time.Duration
}

// RatioOption configures the ratio service.
type RatioOption func(*ratioService)

// WithRatioLocker serializes calculations of the same snapshot across
// instances.
func WithRatioLocker(locker portssvc.Locker, ttl time.Duration) RatioOption {
	return func(s *ratioService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// NewRatioService creates the financial ratio calculator.
func NewRatioService(repos portsrepo.RepositoryProvider, audit portssvc.AuditRecorder, options ...RatioOption) portssvc.RatioSvcFacade {
	svc := &ratioService{
		BaseService: BaseService{Audit: audit},
		repos:       repos.TxRepositories,
		uow:         repos.UnitOfWork,
		lockTTL:     30 * time.Second,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RatioSvcFacade = (*ratioService)(nil)

// guard holds the distributed lock for one snapshot while fn runs.
func (s *ratioService) guard(ctx context.Context, businessID, yearID int64, date time.Time, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	key := fmt.Sprintf("ledger_engine:ratios:%d:%d:%s", businessID, yearID, date.Format(time.DateOnly))
	lock, err := s.locker.Obtain(ctx, key, s.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.LogError(ctx, err, "Failed to release ratio lock", slog.String("key", key))
		}
	}()
	return fn()
}

// compute derives ratio values from balances as of date. repos must read
// from one snapshot so the closing and period sums agree.
func (s *ratioService) compute(ctx context.Context, repos portsrepo.TxRepositories, year domain.FinancialYear, date time.Time) (domain.RatioValues, error) {
	closing, err := sumBalances(ctx, repos, year.BusinessID, nil, date, true)
	if err != nil {
		return domain.RatioValues{}, err
	}
	start := domain.DateOnly(year.StartDate)
	period, err := sumBalances(ctx, repos, year.BusinessID, &start, date, false)
	if err != nil {
		return domain.RatioValues{}, err
	}
	inputs := domain.BuildRatioInputs(closing.tree, closing.byGroup, period.byGroup, year.DaysElapsed(date))
	return domain.CalculateRatios(inputs), nil
}

func (s *ratioService) loadYear(ctx context.Context, repos portsrepo.TxRepositories, businessID, yearID int64, date time.Time) (*domain.FinancialYear, error) {
	year, err := repos.Year.FindFinancialYearByID(ctx, businessID, yearID)
	if err != nil {
		return nil, fmt.Errorf("financial year %d: %w", yearID, err)
	}
	if !year.Contains(date) {
		return nil, fmt.Errorf("%w: %s is outside %s", apperrors.ErrDateOutsideFinancialYear, date.Format(time.DateOnly), year.Name)
	}
	return year, nil
}

func (s *ratioService) CalculateRatios(ctx context.Context, businessID, yearID int64, date time.Time, userID string) (*domain.FinancialRatio, error) {
	date = domain.DateOnly(date)
	var snapshot domain.FinancialRatio
	err := s.guard(ctx, businessID, yearID, date, func() error {
		return s.uow.WithinSnapshot(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
			year, err := s.loadYear(ctx, repos, businessID, yearID, date)
			if err != nil {
				return err
			}
			if _, err := repos.Ratio.FindRatioByDate(ctx, businessID, yearID, date); err == nil {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateSnapshot, date.Format(time.DateOnly))
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			values, err := s.compute(ctx, repos, *year, date)
			if err != nil {
				return err
			}
			snapshot = domain.FinancialRatio{
				BusinessID:      businessID,
				FinancialYearID: yearID,
				CalculationDate: date,
				RatioValues:     values,
				AuditFields:     newAuditFields(userID, s.now()),
			}
			id, err := repos.Ratio.SaveRatio(ctx, snapshot)
			if err != nil {
				return err
			}
			snapshot.ID = id
			return nil
		})
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to calculate ratios", slog.Int64("business_id", businessID), slog.Int64("financial_year_id", yearID))
		return nil, fmt.Errorf("failed to calculate ratios: %w", err)
	}
	s.record(ctx, &businessID, domain.ActionCreate, domain.RefOf(domain.EntityFinancialRatio, snapshot.ID), nil, snapshot, userID)
	s.LogInfo(ctx, "Ratio snapshot created", slog.Int64("business_id", businessID), slog.Int64("ratio_id", snapshot.ID))
	return &snapshot, nil
}

func (s *ratioService) RecalculateRatios(ctx context.Context, businessID, ratioID int64, userID string) (*domain.FinancialRatio, error) {
	current, err := s.repos.Ratio.FindRatioByID(ctx, businessID, ratioID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find ratio snapshot", slog.Int64("ratio_id", ratioID))
		return nil, err
	}
	before := *current
	updated := *current
	err = s.guard(ctx, businessID, current.FinancialYearID, current.CalculationDate, func() error {
		return s.uow.WithinSnapshot(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
			year, err := s.loadYear(ctx, repos, businessID, current.FinancialYearID, current.CalculationDate)
			if err != nil {
				return err
			}
			values, err := s.compute(ctx, repos, *year, current.CalculationDate)
			if err != nil {
				return err
			}
			updated.RatioValues = values
			touch(&updated.AuditFields, userID, s.now())
			return repos.Ratio.UpdateRatio(ctx, updated)
		})
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to recalculate ratios", slog.Int64("ratio_id", ratioID))
		return nil, fmt.Errorf("failed to recalculate ratios %d: %w", ratioID, err)
	}
	s.record(ctx, &businessID, domain.ActionUpdate, domain.RefOf(domain.EntityFinancialRatio, ratioID), before, updated, userID)
	return &updated, nil
}

func (s *ratioService) GetRatios(ctx context.Context, businessID, ratioID int64) (*domain.FinancialRatio, error) {
	ratio, err := s.repos.Ratio.FindRatioByID(ctx, businessID, ratioID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get ratio snapshot", slog.Int64("ratio_id", ratioID))
		return nil, err
	}
	return ratio, nil
}

func (s *ratioService) ListRatios(ctx context.Context, businessID int64, yearID *int64) ([]domain.FinancialRatio, error) {
	ratios, err := s.repos.Ratio.ListRatios(ctx, businessID, yearID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ratio snapshots", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to list ratios: %w", err)
	}
	if ratios == nil {
		return []domain.FinancialRatio{}, nil
	}
	return ratios, nil
}

func (s *ratioService) DeleteRatios(ctx context.Context, businessID, ratioID int64, userID string) error {
	current, err := s.repos.Ratio.FindRatioByID(ctx, businessID, ratioID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to find ratio snapshot", slog.Int64("ratio_id", ratioID))
		return err
	}
	if err := s.repos.Ratio.DeleteRatio(ctx, businessID, ratioID); err != nil {
		s.LogFailure(ctx, err, "Failed to delete ratio snapshot", slog.Int64("ratio_id", ratioID))
		return fmt.Errorf("failed to delete ratios %d: %w", ratioID, err)
	}
	s.record(ctx, &businessID, domain.ActionDelete, domain.RefOf(domain.EntityFinancialRatio, ratioID), *current, nil, userID)
	return nil
}
