package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Message represents an outbox message ready for publishing.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	EventType        string
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage creates an outbox message from a domain event.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.RoutingKey(), err)
	}

	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, fmt.Errorf("encode %s metadata: %w", event.RoutingKey(), err)
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.RoutingKey(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if the message can be retried.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}

// Envelope encodes the message as the bus envelope consumers decode.
func (m *Message) Envelope() ([]byte, error) {
	event := eventbus.ConsumedEvent{
		EventID:       m.EventID,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		RoutingKey:    m.RoutingKey,
		OccurredAt:    m.CreatedAt,
		Payload:       m.Payload,
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of outbox message %d: %w", m.ID, err)
		}
	}
	return json.Marshal(event)
}

// Stage writes the aggregate's pending events to the outbox with the given
// metadata and clears them. Call it inside the unit of work that saves the
// aggregate so state and events commit together.
func Stage(ctx context.Context, repo Repository, agg domain.AggregateRoot, metadata domain.EventMetadata) error {
	events := agg.DomainEvents()
	if len(events) == 0 {
		return nil
	}

	application.ApplyEventMetadata(events, metadata)

	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return fmt.Errorf("stage outbox messages: %w", err)
	}
	agg.ClearDomainEvents()
	return nil
}
