package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/carecal/pkg/observability"
)

// InProcessEventBus delivers events synchronously to registered consumers.
// It replaces RabbitMQ when carecal runs locally on SQLite.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it. A payload that is not an
// envelope is logged and skipped; a consumer failure is returned so the
// outbox retries the message.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.ErrorContext(ctx, "failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}

	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	return b.PublishConsumedEvent(ctx, event)
}

// PublishConsumedEvent dispatches a consumed event directly.
func (b *InProcessEventBus) PublishConsumedEvent(ctx context.Context, event *ConsumedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	err := b.registry.Dispatch(ctx, event)
	duration := time.Since(start)

	if err != nil {
		b.logger.ErrorContext(ctx, "event dispatch failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			observability.DurationKey, duration.Milliseconds(),
			"error", err,
		)
		return err
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		observability.DurationKey, duration.Milliseconds(),
	)
	return nil
}

// Close is a no-op for in-process bus.
func (b *InProcessEventBus) Close() error {
	return nil
}

// GetRegistry returns the underlying consumer registry.
func (b *InProcessEventBus) GetRegistry() *ConsumerRegistry {
	return b.registry
}

// Start blocks until ctx is done; delivery already happens in Publish.
func (b *InProcessEventBus) Start(ctx context.Context) error {
	b.logger.Info("in-process event bus started (synchronous mode)")
	<-ctx.Done()
	return ctx.Err()
}
