package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// SettingsSvcFacade reads and changes per-business posting policy.
type SettingsSvcFacade interface {
	// GetSettings returns the stored settings or the configured defaults.
	GetSettings(ctx context.Context, businessID int64) (*domain.BusinessSettings, error)
	UpdateSettings(ctx context.Context, businessID int64, req dto.UpdateSettingsRequest, userID string) (*domain.BusinessSettings, error)
}
