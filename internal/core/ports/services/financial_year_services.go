package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// FinancialYearSvcFacade manages the posting periods of a business.
type FinancialYearSvcFacade interface {
	CreateFinancialYear(ctx context.Context, businessID int64, req dto.CreateFinancialYearRequest, userID string) (*domain.FinancialYear, error)
	GetFinancialYear(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error)
	ListFinancialYears(ctx context.Context, businessID int64) ([]domain.FinancialYear, error)
	// SetCurrentFinancialYear atomically makes yearID the only current year.
	SetCurrentFinancialYear(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error)
	LockFinancialYear(ctx context.Context, businessID, yearID int64, userID string) (*domain.FinancialYear, error)
	// UnlockFinancialYear requires confirm to be true.
	UnlockFinancialYear(ctx context.Context, businessID, yearID int64, confirm bool, userID string) (*domain.FinancialYear, error)
	// ValidatePostingDate returns the open year containing date.
	ValidatePostingDate(ctx context.Context, businessID int64, date time.Time) (*domain.FinancialYear, error)
}
