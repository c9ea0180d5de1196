package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type PgxSettingsRepository struct {
	BaseRepository
}

func newPgxSettingsRepository(db DBTX) portsrepo.SettingsRepositoryFacade {
	return &PgxSettingsRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.SettingsRepositoryFacade = (*PgxSettingsRepository)(nil)

func (r *PgxSettingsRepository) FindSettings(ctx context.Context, businessID int64) (*domain.BusinessSettings, error) {
	query := `
		SELECT business_id, amount_precision, void_dating, strict_group_nature,
			created_at, created_by, last_updated_at, last_updated_by
		FROM business_settings
		WHERE business_id = $1
	`
	var s domain.BusinessSettings
	err := r.db.QueryRow(ctx, query, businessID).Scan(&s.BusinessID, &s.AmountPrecision, &s.VoidDating, &s.StrictGroupNature,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy)
	if err != nil {
		return nil, notFound(err, "settings for business", businessID)
	}
	return &s, nil
}

func (r *PgxSettingsRepository) UpsertSettings(ctx context.Context, s domain.BusinessSettings) error {
	query := `
		INSERT INTO business_settings (business_id, amount_precision, void_dating, strict_group_nature,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (business_id) DO UPDATE SET
			amount_precision = EXCLUDED.amount_precision,
			void_dating = EXCLUDED.void_dating,
			strict_group_nature = EXCLUDED.strict_group_nature,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
	`
	_, err := r.db.Exec(ctx, query, s.BusinessID, s.AmountPrecision, s.VoidDating, s.StrictGroupNature,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to save settings for business %d: %w", s.BusinessID, mapPgError(err))
	}
	return nil
}
