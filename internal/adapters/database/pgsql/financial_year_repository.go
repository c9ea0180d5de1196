package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxFinancialYearRepository struct {
	BaseRepository
}

func newPgxFinancialYearRepository(db DBTX) portsrepo.FinancialYearRepositoryFacade {
	return &PgxFinancialYearRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.FinancialYearRepositoryFacade = (*PgxFinancialYearRepository)(nil)

const yearColumns = `id, business_id, name, start_date, end_date, is_current, is_locked, locked_at, locked_by,
	created_at, created_by, last_updated_at, last_updated_by`

func scanYear(row pgx.Row) (domain.FinancialYear, error) {
	var y domain.FinancialYear
	err := row.Scan(&y.ID, &y.BusinessID, &y.Name, &y.StartDate, &y.EndDate, &y.IsCurrent, &y.IsLocked,
		&y.LockedAt, &y.LockedBy, &y.CreatedAt, &y.CreatedBy, &y.LastUpdatedAt, &y.LastUpdatedBy)
	return y, err
}

func (r *PgxFinancialYearRepository) queryYears(ctx context.Context, query string, args ...any) ([]domain.FinancialYear, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial years: %w", mapPgError(err))
	}
	defer rows.Close()

	var years []domain.FinancialYear
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial year row: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating financial year rows: %w", mapPgError(err))
	}
	return years, nil
}

func (r *PgxFinancialYearRepository) findOne(ctx context.Context, what string, id any, query string, args ...any) (*domain.FinancialYear, error) {
	y, err := scanYear(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, what, id)
	}
	return &y, nil
}

// SaveFinancialYear inserts a year. Overlaps are rejected by the exclusion
// constraint as apperrors.ErrOverlappingPeriod.
func (r *PgxFinancialYearRepository) SaveFinancialYear(ctx context.Context, y domain.FinancialYear) (int64, error) {
	query := `
		INSERT INTO financial_years (business_id, name, start_date, end_date, is_current, is_locked, locked_at, locked_by,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query, y.BusinessID, y.Name, y.StartDate, y.EndDate, y.IsCurrent, y.IsLocked, y.LockedAt, y.LockedBy,
		y.CreatedAt, y.CreatedBy, y.LastUpdatedAt, y.LastUpdatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save financial year %q: %w", y.Name, mapPgError(err))
	}
	return id, nil
}

func (r *PgxFinancialYearRepository) FindFinancialYearByID(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error) {
	return r.findOne(ctx, "financial year", yearID,
		`SELECT `+yearColumns+` FROM financial_years WHERE business_id = $1 AND id = $2`, businessID, yearID)
}

func (r *PgxFinancialYearRepository) FindFinancialYearByIDForUpdate(ctx context.Context, businessID, yearID int64) (*domain.FinancialYear, error) {
	return r.findOne(ctx, "financial year", yearID,
		`SELECT `+yearColumns+` FROM financial_years WHERE business_id = $1 AND id = $2 FOR UPDATE`, businessID, yearID)
}

// FindFinancialYearForDate takes a share lock so a concurrent lock request
// waits for the posting to commit.
func (r *PgxFinancialYearRepository) FindFinancialYearForDate(ctx context.Context, businessID int64, date time.Time) (*domain.FinancialYear, error) {
	day := domain.DateOnly(date)
	return r.findOne(ctx, "financial year for", day.Format(time.DateOnly),
		`SELECT `+yearColumns+` FROM financial_years
		 WHERE business_id = $1 AND start_date <= $2 AND end_date >= $2
		 FOR SHARE`, businessID, day)
}

func (r *PgxFinancialYearRepository) FindOverlappingYears(ctx context.Context, businessID int64, start, end time.Time) ([]domain.FinancialYear, error) {
	return r.queryYears(ctx, `SELECT `+yearColumns+` FROM financial_years
		WHERE business_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date`, businessID, domain.DateOnly(start), domain.DateOnly(end))
}

func (r *PgxFinancialYearRepository) ListFinancialYears(ctx context.Context, businessID int64) ([]domain.FinancialYear, error) {
	return r.queryYears(ctx, `SELECT `+yearColumns+` FROM financial_years WHERE business_id = $1 ORDER BY start_date`, businessID)
}

func (r *PgxFinancialYearRepository) UpdateFinancialYear(ctx context.Context, y domain.FinancialYear) error {
	query := `
		UPDATE financial_years
		SET name = $3, is_current = $4, is_locked = $5, locked_at = $6, locked_by = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE business_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, y.BusinessID, y.ID, y.Name, y.IsCurrent, y.IsLocked, y.LockedAt, y.LockedBy,
		y.LastUpdatedAt, y.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update financial year %d: %w", y.ID, mapPgError(err))
	}
	return expectOne(tag, "financial year", y.ID)
}

func (r *PgxFinancialYearRepository) ClearCurrentYear(ctx context.Context, businessID int64, userID string, now time.Time) error {
	query := `
		UPDATE financial_years
		SET is_current = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE business_id = $1 AND is_current
	`
	if _, err := r.db.Exec(ctx, query, businessID, now, userID); err != nil {
		return fmt.Errorf("failed to clear current financial year: %w", mapPgError(err))
	}
	return nil
}
