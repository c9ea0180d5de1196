package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// newTxRepositories binds every transactional repository to db.
func newTxRepositories(db DBTX) portsrepo.TxRepositories {
	return portsrepo.TxRepositories{
		Currency:    newPgxCurrencyRepository(db),
		Group:       newPgxAccountGroupRepository(db),
		Ledger:      newPgxLedgerAccountRepository(db),
		Year:        newPgxFinancialYearRepository(db),
		Settings:    newPgxSettingsRepository(db),
		VoucherType: newPgxVoucherTypeRepository(db),
		Voucher:     newPgxVoucherRepository(db),
		Ratio:       newPgxRatioRepository(db),
		Reporting:   newReportingRepository(db),
	}
}

// NewRepositoryProvider wires the Postgres repositories. lockTimeout bounds
// how long a unit of work waits for a row lock before failing with
// apperrors.ErrContention; zero leaves the server default.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxRepositories: newTxRepositories(dbPool),
		UnitOfWork:     &unitOfWork{pool: dbPool, lockTimeout: lockTimeout},
		AuditLog:       newPgxAuditLogRepository(dbPool),
	}
}

type unitOfWork struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

var _ portsrepo.UnitOfWork = (*unitOfWork)(nil)

// WithinTx runs fn in a read committed transaction. Row locks are taken
// explicitly by the repositories fn calls.
func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	return u.run(ctx, pgx.ReadCommitted, fn)
}

// WithinSnapshot runs fn in a repeatable read transaction, so every query
// in fn reads from the snapshot taken by its first statement.
func (u *unitOfWork) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	return u.run(ctx, pgx.RepeatableRead, fn)
}

func (u *unitOfWork) run(ctx context.Context, isoLevel pgx.TxIsoLevel, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: isoLevel})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapPgError(err))
	}
	defer func() {
		// The rollback must run even when ctx is already cancelled.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to roll back transaction", slog.String("error", rbErr.Error()))
		}
	}()

	if u.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", u.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", timeout); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", mapPgError(err))
		}
	}

	if err := fn(ctx, newTxRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapPgError(err))
	}
	return nil
}
