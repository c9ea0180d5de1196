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
)

// SettingsDefaults apply to businesses that never stored their own settings.
type SettingsDefaults struct {
	AmountPrecision   int32
	VoidDating        domain.VoidDating
	StrictGroupNature bool
}

// For returns the defaults as the settings of businessID.
func (d SettingsDefaults) For(businessID int64) domain.BusinessSettings {
	s := domain.BusinessSettings{
		BusinessID:        businessID,
		AmountPrecision:   d.AmountPrecision,
		VoidDating:        d.VoidDating,
		StrictGroupNature: d.StrictGroupNature,
	}
	if s.AmountPrecision == 0 {
		s.AmountPrecision = domain.MinAmountPrecision
	}
	if s.VoidDating == "" {
		s.VoidDating = domain.VoidOnVoidDate
	}
	return s
}

// loadSettings returns the stored settings of a business or the defaults.
func loadSettings(ctx context.Context, repo portsrepo.SettingsRepositoryFacade, defaults SettingsDefaults, businessID int64) (domain.BusinessSettings, error) {
	stored, err := repo.FindSettings(ctx, businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return defaults.For(businessID), nil
		}
		return domain.BusinessSettings{}, fmt.Errorf("failed to load settings for business %d: %w", businessID, err)
	}
	return *stored, nil
}

type settingsService struct {
	BaseService
	repo     portsrepo.SettingsRepositoryFacade
	defaults SettingsDefaults
}

// NewSettingsService creates a service over per-business settings.
func NewSettingsService(repo portsrepo.SettingsRepositoryFacade, defaults SettingsDefaults, audit portssvc.AuditRecorder) portssvc.SettingsSvcFacade {
	return &settingsService{
		BaseService: BaseService{Audit: audit},
		repo:        repo,
		defaults:    defaults,
	}
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

func (s *settingsService) GetSettings(ctx context.Context, businessID int64) (*domain.BusinessSettings, error) {
	settings, err := loadSettings(ctx, s.repo, s.defaults, businessID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load business settings", slog.Int64("business_id", businessID))
		return nil, err
	}
	return &settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, businessID int64, req dto.UpdateSettingsRequest, userID string) (*domain.BusinessSettings, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.repo.FindSettings(ctx, businessID)
	action := domain.ActionUpdate
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load business settings", slog.Int64("business_id", businessID))
			return nil, err
		}
		defaults := s.defaults.For(businessID)
		current = &defaults
		action = domain.ActionCreate
	}
	before := *current
	updated := *current
	now := s.now()

	if req.AmountPrecision != nil {
		updated.AmountPrecision = *req.AmountPrecision
	}
	if req.VoidDating != nil {
		updated.VoidDating = domain.VoidDating(*req.VoidDating)
	}
	if req.StrictGroupNature != nil {
		updated.StrictGroupNature = *req.StrictGroupNature
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if action == domain.ActionCreate {
		updated.AuditFields = newAuditFields(userID, now)
	} else {
		touch(&updated.AuditFields, userID, now)
	}

	if err := s.repo.UpsertSettings(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to save business settings", slog.Int64("business_id", businessID))
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	var old any
	if action == domain.ActionUpdate {
		old = before
	}
	s.record(ctx, &businessID, action, domain.RefOf(domain.EntityBusinessSettings, businessID), old, updated, userID)
	s.LogInfo(ctx, "Business settings updated", slog.Int64("business_id", businessID))
	return &updated, nil
}
