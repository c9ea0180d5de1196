package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- account groups ---

type PgxAccountGroupRepository struct {
	BaseRepository
}

func newPgxAccountGroupRepository(db DBTX) portsrepo.AccountGroupRepositoryFacade {
	return &PgxAccountGroupRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.AccountGroupRepositoryFacade = (*PgxAccountGroupRepository)(nil)

const groupColumns = `id, business_id, parent_id, name, nature, affects_gross_profit, sequence, is_system, system_key,
	created_at, created_by, last_updated_at, last_updated_by`

func scanGroup(row pgx.Row) (domain.AccountGroup, error) {
	var g domain.AccountGroup
	var systemKey *string
	err := row.Scan(&g.ID, &g.BusinessID, &g.ParentID, &g.Name, &g.Nature, &g.AffectsGrossProfit, &g.Sequence,
		&g.IsSystem, &systemKey, &g.CreatedAt, &g.CreatedBy, &g.LastUpdatedAt, &g.LastUpdatedBy)
	g.SystemKey = fromNullable(systemKey)
	return g, err
}

func (r *PgxAccountGroupRepository) listGroups(ctx context.Context, query string, businessID int64) ([]domain.AccountGroup, error) {
	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account groups: %w", mapPgError(err))
	}
	defer rows.Close()

	var groups []domain.AccountGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account group rows: %w", mapPgError(err))
	}
	return groups, nil
}

func (r *PgxAccountGroupRepository) FindGroupByID(ctx context.Context, businessID, groupID int64) (*domain.AccountGroup, error) {
	g, err := scanGroup(r.db.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM account_groups WHERE business_id = $1 AND id = $2`, businessID, groupID))
	if err != nil {
		return nil, notFound(err, "account group", groupID)
	}
	return &g, nil
}

func (r *PgxAccountGroupRepository) ListGroups(ctx context.Context, businessID int64) ([]domain.AccountGroup, error) {
	return r.listGroups(ctx, `SELECT `+groupColumns+` FROM account_groups WHERE business_id = $1 ORDER BY sequence, id`, businessID)
}

func (r *PgxAccountGroupRepository) ListGroupsForUpdate(ctx context.Context, businessID int64) ([]domain.AccountGroup, error) {
	return r.listGroups(ctx, `SELECT `+groupColumns+` FROM account_groups WHERE business_id = $1 ORDER BY id FOR UPDATE`, businessID)
}

func (r *PgxAccountGroupRepository) CountGroupDependents(ctx context.Context, businessID, groupID int64) (int, int, error) {
	query := `
		SELECT
			(SELECT count(*) FROM account_groups WHERE business_id = $1 AND parent_id = $2),
			(SELECT count(*) FROM ledger_accounts WHERE business_id = $1 AND group_id = $2)
	`
	var children, ledgers int
	if err := r.db.QueryRow(ctx, query, businessID, groupID).Scan(&children, &ledgers); err != nil {
		return 0, 0, fmt.Errorf("failed to count dependents of account group %d: %w", groupID, mapPgError(err))
	}
	return children, ledgers, nil
}

func (r *PgxAccountGroupRepository) SaveGroup(ctx context.Context, g domain.AccountGroup) (int64, error) {
	query := `
		INSERT INTO account_groups (business_id, parent_id, name, nature, affects_gross_profit, sequence, is_system, system_key,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query, g.BusinessID, g.ParentID, g.Name, g.Nature, g.AffectsGrossProfit, g.Sequence,
		g.IsSystem, nullIfEmpty(g.SystemKey), g.CreatedAt, g.CreatedBy, g.LastUpdatedAt, g.LastUpdatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save account group %q: %w", g.Name, mapPgError(err))
	}
	return id, nil
}

func (r *PgxAccountGroupRepository) UpdateGroup(ctx context.Context, g domain.AccountGroup) error {
	query := `
		UPDATE account_groups
		SET parent_id = $3, name = $4, nature = $5, affects_gross_profit = $6, sequence = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE business_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, g.BusinessID, g.ID, g.ParentID, g.Name, g.Nature, g.AffectsGrossProfit, g.Sequence,
		g.LastUpdatedAt, g.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update account group %d: %w", g.ID, mapPgError(err))
	}
	return expectOne(tag, "account group", g.ID)
}

func (r *PgxAccountGroupRepository) DeleteGroup(ctx context.Context, businessID, groupID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM account_groups WHERE business_id = $1 AND id = $2`, businessID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete account group %d: %w", groupID, mapPgError(err))
	}
	return expectOne(tag, "account group", groupID)
}

// --- ledger accounts ---

type PgxLedgerAccountRepository struct {
	BaseRepository
}

func newPgxLedgerAccountRepository(db DBTX) portsrepo.LedgerAccountRepositoryFacade {
	return &PgxLedgerAccountRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.LedgerAccountRepositoryFacade = (*PgxLedgerAccountRepository)(nil)

const ledgerColumns = `id, business_id, group_id, name, code, opening_balance, current_balance, is_bank_account,
	is_cash_account, is_active, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

func scanLedger(row pgx.Row) (domain.LedgerAccount, error) {
	var l domain.LedgerAccount
	var code *string
	err := row.Scan(&l.ID, &l.BusinessID, &l.GroupID, &l.Name, &code, &l.OpeningBalance, &l.CurrentBalance,
		&l.IsBankAccount, &l.IsCashAccount, &l.IsActive, &l.DeletedAt,
		&l.CreatedAt, &l.CreatedBy, &l.LastUpdatedAt, &l.LastUpdatedBy)
	l.Code = fromNullable(code)
	return l, err
}

// FindLedgerAccountByID retrieves a ledger account, soft deleted or not.
func (r *PgxLedgerAccountRepository) FindLedgerAccountByID(ctx context.Context, businessID, ledgerID int64) (*domain.LedgerAccount, error) {
	l, err := scanLedger(r.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_accounts WHERE business_id = $1 AND id = $2`, businessID, ledgerID))
	if err != nil {
		return nil, notFound(err, "ledger account", ledgerID)
	}
	return &l, nil
}

func (r *PgxLedgerAccountRepository) ListLedgerAccounts(ctx context.Context, businessID int64, includeDeleted bool) ([]domain.LedgerAccount, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_accounts WHERE business_id = $1 AND ($2 OR deleted_at IS NULL) ORDER BY id`
	rows, err := r.db.Query(ctx, query, businessID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger accounts: %w", mapPgError(err))
	}
	defer rows.Close()

	var ledgers []domain.LedgerAccount
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger account row: %w", err)
		}
		ledgers = append(ledgers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger account rows: %w", mapPgError(err))
	}
	return ledgers, nil
}

func (r *PgxLedgerAccountRepository) SaveLedgerAccount(ctx context.Context, l domain.LedgerAccount) (int64, error) {
	query := `
		INSERT INTO ledger_accounts (business_id, group_id, name, code, opening_balance, current_balance,
			is_bank_account, is_cash_account, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query, l.BusinessID, l.GroupID, l.Name, nullIfEmpty(l.Code), l.OpeningBalance, l.CurrentBalance,
		l.IsBankAccount, l.IsCashAccount, l.IsActive, l.CreatedAt, l.CreatedBy, l.LastUpdatedAt, l.LastUpdatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save ledger account %q: %w", l.Name, mapPgError(err))
	}
	return id, nil
}

// UpdateLedgerAccount rewrites the editable columns, the soft delete marker
// and the balance, which changes when a ledger moves across natures.
func (r *PgxLedgerAccountRepository) UpdateLedgerAccount(ctx context.Context, l domain.LedgerAccount) error {
	query := `
		UPDATE ledger_accounts
		SET group_id = $3, name = $4, code = $5, opening_balance = $6, current_balance = $7,
			is_bank_account = $8, is_cash_account = $9, is_active = $10, deleted_at = $11,
			last_updated_at = $12, last_updated_by = $13
		WHERE business_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, l.BusinessID, l.ID, l.GroupID, l.Name, nullIfEmpty(l.Code), l.OpeningBalance,
		l.CurrentBalance, l.IsBankAccount, l.IsCashAccount, l.IsActive, l.DeletedAt, l.LastUpdatedAt, l.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update ledger account %d: %w", l.ID, mapPgError(err))
	}
	return expectOne(tag, "ledger account", l.ID)
}

// FindLedgerAccountsForUpdate locks the requested rows in ascending id
// order so concurrent postings touching the same ledgers cannot deadlock.
func (r *PgxLedgerAccountRepository) FindLedgerAccountsForUpdate(ctx context.Context, businessID int64, ledgerIDs []int64) (map[int64]domain.LedgerAccount, error) {
	if len(ledgerIDs) == 0 {
		return map[int64]domain.LedgerAccount{}, nil
	}
	ids := append([]int64(nil), ledgerIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_accounts
		WHERE business_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := r.db.Query(ctx, query, businessID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger accounts: %w", mapPgError(err))
	}
	defer rows.Close()

	ledgers := make(map[int64]domain.LedgerAccount, len(ids))
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger account row during lock: %w", err)
		}
		ledgers[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked ledger accounts: %w", mapPgError(err))
	}
	for _, id := range ids {
		if _, ok := ledgers[id]; !ok {
			return nil, fmt.Errorf("%w: ledger account %d", apperrors.ErrNotFound, id)
		}
	}
	return ledgers, nil
}

// ApplyBalanceDeltas adds every delta in one batch. Callers hold the row
// locks from FindLedgerAccountsForUpdate.
func (r *PgxLedgerAccountRepository) ApplyBalanceDeltas(ctx context.Context, businessID int64, deltas map[int64]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	query := `
		UPDATE ledger_accounts
		SET current_balance = current_balance + $3, last_updated_at = $4, last_updated_by = $5
		WHERE business_id = $1 AND id = $2
	`
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, businessID, id, deltas[id], now, userID)
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, id := range ids {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("failed to update balance of ledger account %d: %w", id, mapPgError(err))
		}
		if err := expectOne(tag, "ledger account", id); err != nil {
			return err
		}
	}
	return nil
}
