package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type reportingRepository struct {
	BaseRepository
}

func newReportingRepository(db DBTX) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// SumLines totals base amounts of posted vouchers per ledger. Entries of
// void vouchers are skipped entirely since their reversals cancel them.
func (r *reportingRepository) SumLines(ctx context.Context, businessID int64, from *time.Time, to time.Time, ledgerID *int64) ([]domain.LedgerMovement, error) {
	query := `
		SELECT je.ledger_account_id, COALESCE(SUM(je.base_debit), 0), COALESCE(SUM(je.base_credit), 0)
		FROM journal_entries je
		JOIN vouchers v ON v.id = je.voucher_id
		WHERE v.business_id = $1
			AND v.status = 'posted'
			AND je.entry_date <= $2
			AND ($3::DATE IS NULL OR je.entry_date >= $3)
			AND ($4::BIGINT IS NULL OR je.ledger_account_id = $4)
		GROUP BY je.ledger_account_id
		ORDER BY je.ledger_account_id
	`
	var lower *time.Time
	if from != nil {
		d := domain.DateOnly(*from)
		lower = &d
	}
	rows, err := r.db.Query(ctx, query, businessID, domain.DateOnly(to), lower, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum journal entries: %w", mapPgError(err))
	}
	defer rows.Close()

	var movements []domain.LedgerMovement
	for rows.Next() {
		var m domain.LedgerMovement
		if err := rows.Scan(&m.LedgerAccountID, &m.Debit, &m.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan ledger movement row: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger movement rows: %w", mapPgError(err))
	}
	return movements, nil
}
