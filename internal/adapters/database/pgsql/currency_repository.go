package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(db DBTX) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

const currencyColumns = `code, name, symbol, exchange_rate, is_default, created_at, created_by, last_updated_at, last_updated_by`

func scanCurrency(row pgx.Row) (domain.Currency, error) {
	var c domain.Currency
	err := row.Scan(&c.Code, &c.Name, &c.Symbol, &c.ExchangeRate, &c.IsDefault,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy)
	return c, err
}

func (r *PgxCurrencyRepository) listCurrencies(ctx context.Context, query string) ([]domain.Currency, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", mapPgError(err))
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency rows: %w", mapPgError(err))
	}
	return currencies, nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	c, err := scanCurrency(r.db.QueryRow(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE code = $1`, code))
	if err != nil {
		return nil, notFound(err, "currency", code)
	}
	return &c, nil
}

func (r *PgxCurrencyRepository) FindDefaultCurrency(ctx context.Context) (*domain.Currency, error) {
	c, err := scanCurrency(r.db.QueryRow(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE is_default`))
	if err != nil {
		return nil, notFound(err, "currency", "default")
	}
	return &c, nil
}

func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return r.listCurrencies(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY code`)
}

func (r *PgxCurrencyRepository) ListCurrenciesForUpdate(ctx context.Context) ([]domain.Currency, error) {
	return r.listCurrencies(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY code FOR UPDATE`)
}

func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, c domain.Currency) error {
	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, c.Code, c.Name, c.Symbol, c.ExchangeRate, c.IsDefault,
		c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to save currency %s: %w", c.Code, mapPgError(err))
	}
	return nil
}

func (r *PgxCurrencyRepository) UpdateCurrency(ctx context.Context, c domain.Currency) error {
	query := `
		UPDATE currencies
		SET name = $2, symbol = $3, exchange_rate = $4, is_default = $5, last_updated_at = $6, last_updated_by = $7
		WHERE code = $1
	`
	tag, err := r.db.Exec(ctx, query, c.Code, c.Name, c.Symbol, c.ExchangeRate, c.IsDefault, c.LastUpdatedAt, c.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update currency %s: %w", c.Code, mapPgError(err))
	}
	return expectOne(tag, "currency", c.Code)
}

// DeleteCurrency removes a currency. Currencies referenced by vouchers
// cannot be removed and yield apperrors.ErrConflict.
func (r *PgxCurrencyRepository) DeleteCurrency(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM currencies WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete currency %s: %w", code, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, code)
	}
	return nil
}
