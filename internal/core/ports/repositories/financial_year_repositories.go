package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// FinancialYearRepositoryFacade defines persistence for financial years.
type FinancialYearRepositoryFacade interface {
	SaveFinancialYear(ctx context.Context, year domain.FinancialYear) (int64, error)
	FindFinancialYearByID(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error)
	// FindFinancialYearByIDForUpdate locks the year row.
	FindFinancialYearByIDForUpdate(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error)
	// FindFinancialYearForDate returns the year containing date, holding a
	// share lock on it so it cannot be locked until the caller commits.
	FindFinancialYearForDate(ctx context.Context, businessID int64, date time.Time) (*domain.FinancialYear, error)
	// FindOverlappingYears returns years of the business intersecting [start, end].
	FindOverlappingYears(ctx context.Context, businessID int64, start, end time.Time) ([]domain.FinancialYear, error)
	ListFinancialYears(ctx context.Context, businessID int64) ([]domain.FinancialYear, error)
	UpdateFinancialYear(ctx context.Context, year domain.FinancialYear) error
	// ClearCurrentYear unsets the current flag on every year of the business.
	ClearCurrentYear(ctx context.Context, businessID int64, userID string, now time.Time) error
}
