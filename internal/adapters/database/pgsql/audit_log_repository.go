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

type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(db DBTX) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

const auditLogColumns = `id, event_id, business_id, event, subject_type, subject_id, old_values, new_values, causer_id, created_at`

func scanAuditLog(row pgx.Row) (domain.AuditLogEntry, error) {
	var e domain.AuditLogEntry
	var subjectType string
	if err := row.Scan(&e.ID, &e.EventID, &e.BusinessID, &e.Action, &subjectType, &e.Subject.ID,
		&e.OldValues, &e.NewValues, &e.CauserID, &e.CreatedAt); err != nil {
		return e, err
	}
	kind, err := domain.ParseEntityKind(subjectType)
	if err != nil {
		return e, fmt.Errorf("audit log %d: %w", e.ID, err)
	}
	e.Subject.Kind = kind
	return e, nil
}

// SaveAuditLog appends an entry. Redelivery of the same event id is ignored.
func (r *PgxAuditLogRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (event_id, business_id, event, subject_type, subject_id, old_values, new_values, causer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		entry.EventID, entry.BusinessID, string(entry.Action), entry.Subject.Kind.String(), entry.Subject.ID,
		rawOrNil(entry.OldValues), rawOrNil(entry.NewValues), entry.CauserID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit log %s: %w", entry.EventID, mapPgError(err))
	}
	return nil
}

// ListAuditLogs pages newest first by (created_at, id).
func (r *PgxAuditLogRepository) ListAuditLogs(ctx context.Context, filter domain.AuditLogFilter, limit int, nextToken *string) ([]domain.AuditLogEntry, *string, error) {
	fetchLimit := limit + 1

	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.BusinessID != nil {
		add("business_id = ?", *filter.BusinessID)
	}
	if filter.CauserID != "" {
		add("causer_id = ?", filter.CauserID)
	}
	if filter.SubjectKind != domain.EntityUnknown {
		add("subject_type = ?", filter.SubjectKind.String())
	}
	if filter.SubjectID != "" {
		add("subject_id = ?", filter.SubjectID)
	}
	if filter.Action != "" {
		add("event = ?", string(filter.Action))
	}
	if filter.From != nil {
		add("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= ?", *filter.To)
	}
	if nextToken != nil && *nextToken != "" {
		lastAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		args = append(args, lastAt, lastID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query audit logs: %w", mapPgError(err))
	}
	defer rows.Close()

	entries := make([]domain.AuditLogEntry, 0, fetchLimit)
	for rows.Next() {
		e, err := scanAuditLog(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating audit log rows: %w", mapPgError(err))
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ID)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

// rawOrNil keeps absent JSON as SQL NULL rather than the literal null.
func rawOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
