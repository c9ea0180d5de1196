package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// AuditSink publishes audit entries as JSON messages so other systems can
// follow changes to the books. Consumers dedupe on the event_id attribute.
type AuditSink struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	owned  bool
}

var _ portssvc.AuditSink = (*AuditSink)(nil)

// NewAuditSink connects to projectID and publishes to topicID, which must
// already exist.
func NewAuditSink(ctx context.Context, projectID, topicID string) (*AuditSink, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	sink, err := NewAuditSinkFromClient(ctx, client, topicID)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	sink.owned = true
	return sink, nil
}

// NewAuditSinkFromClient publishes through an existing client. Close does
// not close the client.
func NewAuditSinkFromClient(ctx context.Context, client *pubsub.Client, topicID string) (*AuditSink, error) {
	if topicID == "" {
		return nil, fmt.Errorf("pubsub topic is required")
	}
	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check pubsub topic %q: %w", topicID, err)
	}
	if !ok {
		return nil, fmt.Errorf("pubsub topic %q does not exist", topicID)
	}
	return &AuditSink{client: client, topic: topic}, nil
}

func (s *AuditSink) Name() string { return "pubsub:" + s.topic.ID() }

// Write publishes entry and waits for the server to acknowledge it.
func (s *AuditSink) Write(ctx context.Context, entry domain.AuditLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry %s: %w", entry.EventID, err)
	}
	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":     entry.EventID.String(),
			"event":        string(entry.Action),
			"subject_type": entry.Subject.Kind.String(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish audit entry %s: %w", entry.EventID, err)
	}
	return nil
}

// Close flushes pending publishes.
func (s *AuditSink) Close() error {
	s.topic.Stop()
	if s.owned {
		return s.client.Close()
	}
	return nil
}
