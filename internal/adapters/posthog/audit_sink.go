package posthog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/posthog/posthog-go"
)

// AuditSink forwards audit entries to PostHog as product analytics events
// named "ledger_<subject>_<event>", attributed to the causer.
type AuditSink struct {
	client posthog.Client
}

var _ portssvc.AuditSink = (*AuditSink)(nil)

// NewAuditSink creates a PostHog client for apiKey. An empty endpoint uses
// the PostHog default.
func NewAuditSink(apiKey, endpoint string) (*AuditSink, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("posthog api key is required")
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to create posthog client: %w", err)
	}
	return &AuditSink{client: client}, nil
}

// NewAuditSinkFromClient wraps an existing client.
func NewAuditSinkFromClient(client posthog.Client) *AuditSink {
	return &AuditSink{client: client}
}

func (s *AuditSink) Name() string { return "posthog" }

// Write enqueues the entry; the client batches and sends in the background.
func (s *AuditSink) Write(_ context.Context, entry domain.AuditLogEntry) error {
	props := posthog.NewProperties().
		Set("$insert_id", entry.EventID.String()).
		Set("subject_type", entry.Subject.Kind.String()).
		Set("subject_id", entry.Subject.ID)
	if entry.BusinessID != nil {
		props.Set("business_id", strconv.FormatInt(*entry.BusinessID, 10))
	}
	err := s.client.Enqueue(posthog.Capture{
		DistinctId: entry.CauserID,
		Event:      "ledger_" + entry.Subject.Kind.String() + "_" + string(entry.Action),
		Timestamp:  entry.CreatedAt,
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue audit entry %s: %w", entry.EventID, err)
	}
	return nil
}

// Close flushes queued events.
func (s *AuditSink) Close() error {
	return s.client.Close()
}
