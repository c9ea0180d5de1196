package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// RatioSvcFacade manages financial ratio snapshots.
type RatioSvcFacade interface {
	// CalculateRatios computes and stores a new snapshot.
	CalculateRatios(ctx context.Context, businessID, yearID int64, date time.Time, userID string) (*domain.FinancialRatio, error)
	// RecalculateRatios recomputes an existing snapshot in place.
	RecalculateRatios(ctx context.Context, businessID, ratioID int64, userID string) (*domain.FinancialRatio, error)
	GetRatios(ctx context.Context, businessID, ratioID int64) (*domain.FinancialRatio, error)
	ListRatios(ctx context.Context, businessID int64, yearID *int64) ([]domain.FinancialRatio, error)
	DeleteRatios(ctx context.Context, businessID, ratioID int64, userID string) error
}
