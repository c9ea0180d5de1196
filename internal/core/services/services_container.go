package services

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// DefaultsFromConfig builds the settings applied to businesses without a
// stored settings row.
func DefaultsFromConfig(cfg *config.Config) SettingsDefaults {
	return SettingsDefaults{
		AmountPrecision:   cfg.DefaultAmountPrecision,
		VoidDating:        domain.VoidDating(cfg.DefaultVoidDating),
		StrictGroupNature: cfg.StrictGroupNature,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// locker may be nil, in which case ratio calculations are only serialized by
// the database.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, audit portssvc.AuditRecorder, locker portssvc.Locker) *portssvc.ServiceContainer {
	defaults := DefaultsFromConfig(cfg)

	var ratioOpts []RatioOption
	if locker != nil {
		ratioOpts = append(ratioOpts, WithRatioLocker(locker, cfg.RatioLockTTL))
	}

	return &portssvc.ServiceContainer{
		Currency:      NewCurrencyService(repos.Currency, repos.UnitOfWork, audit),
		Chart:         NewChartService(repos, defaults, audit),
		FinancialYear: NewFinancialYearService(repos.Year, repos.UnitOfWork, audit),
		Settings:      NewSettingsService(repos.Settings, defaults, audit),
		Voucher:       NewVoucherService(repos, defaults, audit),
		Ratio:         NewRatioService(repos, audit, ratioOpts...),
		Reporting:     NewReportingService(repos),
		Audit:         NewAuditQueryService(repos.AuditLog),
	}
}
