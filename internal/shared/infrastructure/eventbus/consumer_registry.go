package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/felixgeelhaar/carecal/pkg/observability"
)

// ConsumerRegistry manages event consumers and dispatches events to them.
type ConsumerRegistry struct {
	consumers map[string][]EventConsumer
	mu        sync.RWMutex
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics counts dispatched events per routing key.
func (r *ConsumerRegistry) WithMetrics(m observability.Metrics) *ConsumerRegistry {
	if m != nil {
		r.metrics = m
	}
	return r
}

// Register adds a consumer for its declared event types.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range consumer.EventTypes() {
		r.consumers[eventType] = append(r.consumers[eventType], consumer)
		r.logger.Debug("registered consumer for event type",
			"event_type", eventType,
		)
	}
}

// GetConsumers returns all consumers registered for the given event type.
func (r *ConsumerRegistry) GetConsumers(eventType string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.consumers[eventType]
}

// GetAllEventTypes returns the registered event types, sorted.
func (r *ConsumerRegistry) GetAllEventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.consumers))
	for t := range r.consumers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Dispatch sends an event to every consumer of its routing key. All
// consumers run even when one fails; their errors are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)

	if len(consumers) == 0 {
		r.logger.DebugContext(ctx, "no consumers for event type",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	r.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ConsumerCount returns the total number of registered consumer instances.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, consumers := range r.consumers {
		count += len(consumers)
	}
	return count
}
