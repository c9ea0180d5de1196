package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AuditRecorder accepts audit events. Record never fails the caller and
// never blocks on the sinks.
type AuditRecorder interface {
	Record(ctx context.Context, ev domain.AuditEvent) domain.AuditLogEntry
}

// AuditSink is a destination audit entries are written to.
type AuditSink interface {
	Name() string
	Write(ctx context.Context, entry domain.AuditLogEntry) error
}

// AuditQuerySvc lists audit entries.
type AuditQuerySvc interface {
	ListAuditLogs(ctx context.Context, businessID *int64, params dto.ListAuditLogsParams) (*dto.ListAuditLogsResponse, error)
}

// Lock is a held distributed lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains short-lived named locks shared across processes.
type Locker interface {
	// Obtain returns apperrors.ErrContention when the lock is held elsewhere.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
