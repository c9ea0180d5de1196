package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// AuditRecorderConfig tunes the background delivery of audit entries.
type AuditRecorderConfig struct {
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
}

type auditItem struct {
	entry   domain.AuditLogEntry
	flushed chan struct{} // set for flush markers only
}

// AuditRecorder turns audit events into log entries and delivers them to
// its sinks from a single background worker. Record never blocks on the
// sinks and never fails the caller; delivery failures are retried and
// then logged.
type AuditRecorder struct {
	cfg    AuditRecorderConfig
	sinks  []portssvc.AuditSink
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan auditItem
	done   chan struct{}
}

// NewAuditRecorder starts the delivery worker.
func NewAuditRecorder(cfg AuditRecorderConfig, logger *slog.Logger, sinks ...portssvc.AuditSink) *AuditRecorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &AuditRecorder{
		cfg:    cfg,
		sinks:  sinks,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		queue:  make(chan auditItem, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

var _ portssvc.AuditRecorder = (*AuditRecorder)(nil)

// Record builds the log entry for ev and queues it for delivery.
func (r *AuditRecorder) Record(ctx context.Context, ev domain.AuditEvent) domain.AuditLogEntry {
	logger := middleware.GetLoggerFromCtx(ctx)
	entry, err := domain.NewAuditLogEntry(ev, r.now())
	if err != nil {
		logger.Error("Failed to encode audit values", slog.String("error", err.Error()),
			slog.String("subject_type", ev.Subject.Kind.String()), slog.String("subject_id", ev.Subject.ID))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		logger.Error("Audit recorder closed, entry dropped", slog.String("event_id", entry.EventID.String()))
		return entry
	}
	select {
	case r.queue <- auditItem{entry: entry}:
	default:
		logger.Error("Audit queue full, entry dropped",
			slog.String("event_id", entry.EventID.String()),
			slog.String("subject_type", entry.Subject.Kind.String()),
			slog.String("subject_id", entry.Subject.ID))
	}
	return entry
}

// Flush waits until every entry queued before the call has been delivered
// or given up on.
func (r *AuditRecorder) Flush(ctx context.Context) error {
	marker := auditItem{flushed: make(chan struct{})}
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil
	}
	select {
	case r.queue <- marker:
		r.mu.RUnlock()
	case <-ctx.Done():
		r.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case <-marker.flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (r *AuditRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit recorder did not drain: %w", ctx.Err())
	}
}

func (r *AuditRecorder) run() {
	defer close(r.done)
	for item := range r.queue {
		if item.flushed != nil {
			close(item.flushed)
			continue
		}
		for _, sink := range r.sinks {
			r.deliver(sink, item.entry)
		}
	}
}

func (r *AuditRecorder) deliver(sink portssvc.AuditSink, entry domain.AuditLogEntry) {
	backoff := r.cfg.RetryBackoff
	var err error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
		err = sink.Write(ctx, entry)
		cancel()
		if err == nil {
			return
		}
		r.logger.Warn("Audit sink write failed",
			slog.String("sink", sink.Name()),
			slog.String("event_id", entry.EventID.String()),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	r.logger.Error("Audit entry not delivered",
		slog.String("sink", sink.Name()),
		slog.String("event_id", entry.EventID.String()),
		slog.String("subject_type", entry.Subject.Kind.String()),
		slog.String("subject_id", entry.Subject.ID),
		slog.String("error", err.Error()))
}

type repositorySink struct {
	repo portsrepo.AuditLogRepositoryFacade
}

// NewRepositorySink writes audit entries to the audit log table.
func NewRepositorySink(repo portsrepo.AuditLogRepositoryFacade) portssvc.AuditSink {
	return &repositorySink{repo: repo}
}

func (s *repositorySink) Name() string { return "audit_log_table" }

func (s *repositorySink) Write(ctx context.Context, entry domain.AuditLogEntry) error {
	return s.repo.SaveAuditLog(ctx, entry)
}
