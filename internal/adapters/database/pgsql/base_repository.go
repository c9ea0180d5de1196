package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// can run inside or outside a unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db DBTX
}

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgExclusionViolation   = "23P01"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
)

const ratioSnapshotConstraint = "financial_ratios_year_date_key"

// mapPgError translates Postgres failures into application error kinds.
// The original error stays in the chain.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == ratioSnapshotConstraint {
			return fmt.Errorf("%w: %w", apperrors.ErrDuplicateSnapshot, err)
		}
		return fmt.Errorf("%w: %w", apperrors.ErrDuplicate, err)
	case pgExclusionViolation:
		return fmt.Errorf("%w: %w", apperrors.ErrOverlappingPeriod, err)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected, pgQueryCanceled:
		return fmt.Errorf("%w: %w", apperrors.ErrContention, err)
	}
	return err
}

// notFound wraps pgx.ErrNoRows for a named record and maps anything else.
func notFound(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", apperrors.ErrNotFound, what, id)
	}
	return mapPgError(err)
}

// expectOne turns an update that touched no rows into ErrNotFound.
func expectOne(tag pgconn.CommandTag, what string, id any) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %v", apperrors.ErrNotFound, what, id)
	}
	return nil
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNullable(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
