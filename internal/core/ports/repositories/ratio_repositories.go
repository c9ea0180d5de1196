package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// RatioRepositoryFacade defines persistence for ratio snapshots.
type RatioRepositoryFacade interface {
	// SaveRatio inserts a snapshot. A second snapshot for the same year and
	// date yields apperrors.ErrDuplicateSnapshot.
	SaveRatio(ctx context.Context, ratio domain.FinancialRatio) (int64, error)
	FindRatioByID(ctx context.Context, businessID, ratioID int64) (*domain.FinancialRatio, error)
	FindRatioByDate(ctx context.Context, businessID, yearID int64, date time.Time) (*domain.FinancialRatio, error)
	ListRatios(ctx context.Context, businessID int64, yearID *int64) ([]domain.FinancialRatio, error)
	// UpdateRatio overwrites every ratio value of an existing snapshot.
	UpdateRatio(ctx context.Context, ratio domain.FinancialRatio) error
	DeleteRatio(ctx context.Context, businessID, ratioID int64) error
}
