package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// SettingsRepositoryFacade defines persistence for business settings.
type SettingsRepositoryFacade interface {
	// FindSettings returns apperrors.ErrNotFound when the business has no row.
	FindSettings(ctx context.Context, businessID int64) (*domain.BusinessSettings, error)
	UpsertSettings(ctx context.Context, settings domain.BusinessSettings) error
}
