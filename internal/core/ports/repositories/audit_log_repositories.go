package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// AuditLogRepositoryFacade persists and queries audit log entries. Entries
// are never updated or deleted.
type AuditLogRepositoryFacade interface {
	// SaveAuditLog inserts an entry. Re-inserting an entry with the same
	// event id is a no-op.
	SaveAuditLog(ctx context.Context, entry domain.AuditLogEntry) error
	ListAuditLogs(ctx context.Context, filter domain.AuditLogFilter, limit int, nextToken *string) ([]domain.AuditLogEntry, *string, error)
}
