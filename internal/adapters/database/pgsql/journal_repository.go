package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxVoucherRepository struct {
	BaseRepository
}

// newPgxVoucherRepository creates a new repository for vouchers and their journal entries.
func newPgxVoucherRepository(db DBTX) portsrepo.VoucherRepositoryFacade {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

const voucherColumns = `id, business_id, voucher_type_id, voucher_date, narration, status, reference_number, sequence_number,
	financial_year_id, currency_code, exchange_rate, posted_at, posted_by, voided_at, voided_by, void_reason,
	duplicated_from_id, created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `id, voucher_id, line_no, ledger_account_id, debit_amount, credit_amount, base_debit, base_credit,
	cost_center_id, party_id, narration, kind, entry_date`

func scanVoucher(row pgx.Row) (domain.Voucher, error) {
	var v domain.Voucher
	var reference *string
	err := row.Scan(&v.ID, &v.BusinessID, &v.VoucherTypeID, &v.Date, &v.Narration, &v.Status, &reference, &v.SequenceNumber,
		&v.FinancialYearID, &v.CurrencyCode, &v.ExchangeRate, &v.PostedAt, &v.PostedBy, &v.VoidedAt, &v.VoidedBy, &v.VoidReason,
		&v.DuplicatedFromID, &v.CreatedAt, &v.CreatedBy, &v.LastUpdatedAt, &v.LastUpdatedBy)
	v.ReferenceNumber = fromNullable(reference)
	return v, err
}

func (r *PgxVoucherRepository) loadEntries(ctx context.Context, v *domain.Voucher) error {
	rows, err := r.db.Query(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE voucher_id = $1 ORDER BY kind, line_no`, v.ID)
	if err != nil {
		return fmt.Errorf("failed to query entries of voucher %d: %w", v.ID, mapPgError(err))
	}
	defer rows.Close()

	v.Entries = []domain.JournalEntry{}
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.ID, &e.VoucherID, &e.LineNo, &e.LedgerAccountID, &e.DebitAmount, &e.CreditAmount,
			&e.BaseDebit, &e.BaseCredit, &e.CostCenterID, &e.PartyID, &e.Narration, &e.Kind, &e.EntryDate); err != nil {
			return fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		v.Entries = append(v.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating journal entry rows: %w", mapPgError(err))
	}
	return nil
}

func (r *PgxVoucherRepository) findVoucher(ctx context.Context, businessID, voucherID int64, lock bool) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE business_id = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	v, err := scanVoucher(r.db.QueryRow(ctx, query, businessID, voucherID))
	if err != nil {
		return nil, notFound(err, "voucher", voucherID)
	}
	if err := r.loadEntries(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error) {
	return r.findVoucher(ctx, businessID, voucherID, false)
}

func (r *PgxVoucherRepository) FindVoucherByIDForUpdate(ctx context.Context, businessID, voucherID int64) (*domain.Voucher, error) {
	return r.findVoucher(ctx, businessID, voucherID, true)
}

// ListVouchers pages newest first by (voucher_date, id). The token points
// at the last voucher of the previous page.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, businessID int64, filter domain.VoucherFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	where := []string{"business_id = $1"}
	args := []any{businessID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.Status != "" {
		add("status = ?", filter.Status)
	}
	if filter.VoucherTypeID != nil {
		add("voucher_type_id = ?", *filter.VoucherTypeID)
	}
	if filter.From != nil {
		add("voucher_date >= ?", domain.DateOnly(*filter.From))
	}
	if filter.To != nil {
		add("voucher_date <= ?", domain.DateOnly(*filter.To))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		args = append(args, lastDate, lastID)
		where = append(where, fmt.Sprintf("(voucher_date, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, fetchLimit)
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY voucher_date DESC, id DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query vouchers: %w", mapPgError(err))
	}
	defer rows.Close()

	vouchers := make([]domain.Voucher, 0, fetchLimit)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan voucher row: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating voucher rows: %w", mapPgError(err))
	}

	var nextTokenVal *string
	if len(vouchers) > limit {
		last := vouchers[limit-1]
		token := pagination.EncodeToken(last.Date, last.ID)
		nextTokenVal = &token
		vouchers = vouchers[:limit]
	}
	return vouchers, nextTokenVal, nil
}

func (r *PgxVoucherRepository) insertEntries(ctx context.Context, voucherID int64, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO journal_entries (voucher_id, line_no, ledger_account_id, debit_amount, credit_amount, base_debit, base_credit,
			cost_center_id, party_id, narration, kind, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, voucherID, e.LineNo, e.LedgerAccountID, e.DebitAmount, e.CreditAmount, e.BaseDebit, e.BaseCredit,
			e.CostCenterID, e.PartyID, e.Narration, e.Kind, domain.DateOnly(e.EntryDate))
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, e := range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert line %d of voucher %d: %w", e.LineNo, voucherID, mapPgError(err))
		}
	}
	return nil
}

// SaveVoucher inserts the header and entries. Callers run it inside a
// unit of work when both must land together.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, v domain.Voucher) (int64, error) {
	query := `
		INSERT INTO vouchers (business_id, voucher_type_id, voucher_date, narration, status, reference_number, sequence_number,
			financial_year_id, currency_code, exchange_rate, posted_at, posted_by, voided_at, voided_by, void_reason,
			duplicated_from_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query, v.BusinessID, v.VoucherTypeID, domain.DateOnly(v.Date), v.Narration, v.Status,
		nullIfEmpty(v.ReferenceNumber), v.SequenceNumber, v.FinancialYearID, v.CurrencyCode, v.ExchangeRate,
		v.PostedAt, v.PostedBy, v.VoidedAt, v.VoidedBy, v.VoidReason, v.DuplicatedFromID,
		v.CreatedAt, v.CreatedBy, v.LastUpdatedAt, v.LastUpdatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save voucher: %w", mapPgError(err))
	}
	if err := r.insertEntries(ctx, id, v.Entries); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PgxVoucherRepository) ReplaceDraft(ctx context.Context, v domain.Voucher) error {
	query := `
		UPDATE vouchers
		SET voucher_type_id = $3, voucher_date = $4, narration = $5, currency_code = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE business_id = $1 AND id = $2 AND status = 'draft'
	`
	tag, err := r.db.Exec(ctx, query, v.BusinessID, v.ID, v.VoucherTypeID, domain.DateOnly(v.Date), v.Narration, v.CurrencyCode,
		v.LastUpdatedAt, v.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update draft voucher %d: %w", v.ID, mapPgError(err))
	}
	if err := expectOne(tag, "draft voucher", v.ID); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE voucher_id = $1`, v.ID); err != nil {
		return fmt.Errorf("failed to clear entries of draft voucher %d: %w", v.ID, mapPgError(err))
	}
	return r.insertEntries(ctx, v.ID, v.Entries)
}

func (r *PgxVoucherRepository) DeleteVoucher(ctx context.Context, businessID, voucherID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vouchers WHERE business_id = $1 AND id = $2 AND status = 'draft'`, businessID, voucherID)
	if err != nil {
		return fmt.Errorf("failed to delete voucher %d: %w", voucherID, mapPgError(err))
	}
	return expectOne(tag, "draft voucher", voucherID)
}

func (r *PgxVoucherRepository) MarkPosted(ctx context.Context, v domain.Voucher) error {
	query := `
		UPDATE vouchers
		SET status = $3, reference_number = $4, sequence_number = $5, financial_year_id = $6, exchange_rate = $7,
			posted_at = $8, posted_by = $9, last_updated_at = $10, last_updated_by = $11
		WHERE business_id = $1 AND id = $2 AND status = 'draft'
	`
	tag, err := r.db.Exec(ctx, query, v.BusinessID, v.ID, v.Status, v.ReferenceNumber, v.SequenceNumber, v.FinancialYearID,
		v.ExchangeRate, v.PostedAt, v.PostedBy, v.LastUpdatedAt, v.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to mark voucher %d posted: %w", v.ID, mapPgError(err))
	}
	if err := expectOne(tag, "draft voucher", v.ID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, e := range v.Entries {
		batch.Queue(`UPDATE journal_entries SET base_debit = $3, base_credit = $4, entry_date = $5 WHERE voucher_id = $1 AND id = $2`,
			v.ID, e.ID, e.BaseDebit, e.BaseCredit, domain.DateOnly(e.EntryDate))
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, e := range v.Entries {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("failed to store base amounts of line %d: %w", e.LineNo, mapPgError(err))
		}
		if err := expectOne(tag, "journal entry", e.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgxVoucherRepository) MarkVoid(ctx context.Context, v domain.Voucher, reversals []domain.JournalEntry) error {
	query := `
		UPDATE vouchers
		SET status = $3, voided_at = $4, voided_by = $5, void_reason = $6, last_updated_at = $7, last_updated_by = $8
		WHERE business_id = $1 AND id = $2 AND status = 'posted'
	`
	tag, err := r.db.Exec(ctx, query, v.BusinessID, v.ID, v.Status, v.VoidedAt, v.VoidedBy, v.VoidReason,
		v.LastUpdatedAt, v.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to mark voucher %d void: %w", v.ID, mapPgError(err))
	}
	if err := expectOne(tag, "posted voucher", v.ID); err != nil {
		return err
	}
	return r.insertEntries(ctx, v.ID, reversals)
}

// NextSequenceNumber increments the counter of (business, type, year). The
// upsert holds the counter row lock until the caller commits, so numbers
// are gap free and never reused.
func (r *PgxVoucherRepository) NextSequenceNumber(ctx context.Context, businessID, typeID, yearID, start int64) (int64, error) {
	query := `
		INSERT INTO voucher_sequences (business_id, voucher_type_id, financial_year_id, last_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (business_id, voucher_type_id, financial_year_id)
		DO UPDATE SET last_number = voucher_sequences.last_number + 1
		RETURNING last_number
	`
	var next int64
	if err := r.db.QueryRow(ctx, query, businessID, typeID, yearID, start).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence number: %w", mapPgError(err))
	}
	return next, nil
}
