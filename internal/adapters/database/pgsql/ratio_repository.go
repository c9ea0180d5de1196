package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxRatioRepository struct {
	BaseRepository
}

func newPgxRatioRepository(db DBTX) portsrepo.RatioRepositoryFacade {
	return &PgxRatioRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.RatioRepositoryFacade = (*PgxRatioRepository)(nil)

const ratioValueColumns = `current_ratio, quick_ratio, cash_ratio, gross_profit_margin, net_profit_margin,
	return_on_assets, return_on_equity, asset_turnover, inventory_turnover, days_sales_outstanding,
	days_payables_outstanding, debt_ratio, debt_to_equity, interest_coverage`

const ratioColumns = `id, business_id, financial_year_id, calculation_date, ` + ratioValueColumns + `,
	created_at, created_by, last_updated_at, last_updated_by`

// ratioFields lists the value pointers in ratioValueColumns order.
func ratioFields(v *domain.RatioValues) []**decimal.Decimal {
	return []**decimal.Decimal{
		&v.CurrentRatio, &v.QuickRatio, &v.CashRatio, &v.GrossProfitMargin, &v.NetProfitMargin,
		&v.ReturnOnAssets, &v.ReturnOnEquity, &v.AssetTurnover, &v.InventoryTurnover, &v.DaysSalesOutstanding,
		&v.DaysPayablesOutstanding, &v.DebtRatio, &v.DebtToEquity, &v.InterestCoverage,
	}
}

// ratioArgs renders the values as nullable query arguments.
func ratioArgs(v domain.RatioValues) []any {
	fields := ratioFields(&v)
	args := make([]any, len(fields))
	for i, f := range fields {
		if *f == nil {
			args[i] = decimal.NullDecimal{}
		} else {
			args[i] = decimal.NewNullDecimal(**f)
		}
	}
	return args
}

func scanRatio(row pgx.Row) (domain.FinancialRatio, error) {
	var r domain.FinancialRatio
	fields := ratioFields(&r.RatioValues)
	nulls := make([]decimal.NullDecimal, len(fields))
	dest := []any{&r.ID, &r.BusinessID, &r.FinancialYearID, &r.CalculationDate}
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}
	dest = append(dest, &r.CreatedAt, &r.CreatedBy, &r.LastUpdatedAt, &r.LastUpdatedBy)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	for i, n := range nulls {
		if n.Valid {
			d := n.Decimal
			*fields[i] = &d
		}
	}
	return r, nil
}

// SaveRatio inserts a snapshot. The unique constraint on (business, year,
// date) surfaces as apperrors.ErrDuplicateSnapshot.
func (r *PgxRatioRepository) SaveRatio(ctx context.Context, ratio domain.FinancialRatio) (int64, error) {
	query := `
		INSERT INTO financial_ratios (business_id, financial_year_id, calculation_date, ` + ratioValueColumns + `,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id
	`
	args := []any{ratio.BusinessID, ratio.FinancialYearID, domain.DateOnly(ratio.CalculationDate)}
	args = append(args, ratioArgs(ratio.RatioValues)...)
	args = append(args, ratio.CreatedAt, ratio.CreatedBy, ratio.LastUpdatedAt, ratio.LastUpdatedBy)

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to save ratio snapshot: %w", mapPgError(err))
	}
	return id, nil
}

func (r *PgxRatioRepository) FindRatioByID(ctx context.Context, businessID, ratioID int64) (*domain.FinancialRatio, error) {
	ratio, err := scanRatio(r.db.QueryRow(ctx,
		`SELECT `+ratioColumns+` FROM financial_ratios WHERE business_id = $1 AND id = $2`, businessID, ratioID))
	if err != nil {
		return nil, notFound(err, "ratio snapshot", ratioID)
	}
	return &ratio, nil
}

func (r *PgxRatioRepository) FindRatioByDate(ctx context.Context, businessID, yearID int64, date time.Time) (*domain.FinancialRatio, error) {
	day := domain.DateOnly(date)
	ratio, err := scanRatio(r.db.QueryRow(ctx,
		`SELECT `+ratioColumns+` FROM financial_ratios WHERE business_id = $1 AND financial_year_id = $2 AND calculation_date = $3`,
		businessID, yearID, day))
	if err != nil {
		return nil, notFound(err, "ratio snapshot for", day.Format(time.DateOnly))
	}
	return &ratio, nil
}

func (r *PgxRatioRepository) ListRatios(ctx context.Context, businessID int64, yearID *int64) ([]domain.FinancialRatio, error) {
	query := `SELECT ` + ratioColumns + ` FROM financial_ratios
		WHERE business_id = $1 AND ($2::BIGINT IS NULL OR financial_year_id = $2)
		ORDER BY calculation_date DESC, id DESC`
	rows, err := r.db.Query(ctx, query, businessID, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratio snapshots: %w", mapPgError(err))
	}
	defer rows.Close()

	var ratios []domain.FinancialRatio
	for rows.Next() {
		ratio, err := scanRatio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ratio snapshot row: %w", err)
		}
		ratios = append(ratios, ratio)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratio snapshot rows: %w", mapPgError(err))
	}
	return ratios, nil
}

func (r *PgxRatioRepository) UpdateRatio(ctx context.Context, ratio domain.FinancialRatio) error {
	query := `
		UPDATE financial_ratios
		SET (` + ratioValueColumns + `, last_updated_at, last_updated_by) =
			($3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		WHERE business_id = $1 AND id = $2
	`
	args := []any{ratio.BusinessID, ratio.ID}
	args = append(args, ratioArgs(ratio.RatioValues)...)
	args = append(args, ratio.LastUpdatedAt, ratio.LastUpdatedBy)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ratio snapshot %d: %w", ratio.ID, mapPgError(err))
	}
	return expectOne(tag, "ratio snapshot", ratio.ID)
}

func (r *PgxRatioRepository) DeleteRatio(ctx context.Context, businessID, ratioID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM financial_ratios WHERE business_id = $1 AND id = $2`, businessID, ratioID)
	if err != nil {
		return fmt.Errorf("failed to delete ratio snapshot %d: %w", ratioID, mapPgError(err))
	}
	return expectOne(tag, "ratio snapshot", ratioID)
}
