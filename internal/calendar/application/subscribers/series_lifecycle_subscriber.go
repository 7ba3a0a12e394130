package subscribers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/google/uuid"
)

// Order routing keys the calendar reacts to.
const (
	RoutingKeyOrderAccepted  = "orders.order.accepted"
	RoutingKeyOrderDeclined  = "orders.order.declined"
	RoutingKeyOrderCancelled = "orders.order.cancelled"
	RoutingKeyOrderCompleted = "orders.order.completed"
)

// orderStatusChanged mirrors the payload published by the orders context.
type orderStatusChanged struct {
	OrderID      uuid.UUID `json:"order_id"`
	HealthUnitID uuid.UUID `json:"health_unit_id"`
	Patient      struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	} `json:"patient"`
	From     string `json:"from"`
	To       string `json:"to"`
	Schedule struct {
		StartDate  string          `json:"start_date"`
		Recurrency int             `json:"recurrency"`
		Schedule   domain.Schedule `json:"schedule"`
	} `json:"schedule_information"`
}

// SeriesLifecycleSubscriber feeds order status changes into the binder.
type SeriesLifecycleSubscriber struct {
	binder  *services.SeriesLifecycleBinder
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewSeriesLifecycleSubscriber creates the subscriber.
func NewSeriesLifecycleSubscriber(binder *services.SeriesLifecycleBinder, logger *slog.Logger, metrics observability.Metrics) *SeriesLifecycleSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &SeriesLifecycleSubscriber{binder: binder, logger: logger, metrics: metrics}
}

func (s *SeriesLifecycleSubscriber) EventTypes() []string {
	return []string{
		RoutingKeyOrderAccepted,
		RoutingKeyOrderDeclined,
		RoutingKeyOrderCancelled,
		RoutingKeyOrderCompleted,
	}
}

// Handle binds the transition. Redeliveries of an acceptance and payloads
// that can never bind are acknowledged; anything else is returned so the
// broker retries.
func (s *SeriesLifecycleSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	transition, err := decodeTransition(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "dropping undecodable order event",
			"event_id", event.EventID,
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}

	result, err := s.binder.Bind(ctx, transition)
	switch {
	case errors.Is(err, domain.ErrSeriesAlreadyExists):
		s.logger.InfoContext(ctx, "order already has a series, ignoring redelivery",
			"event_id", event.EventID,
			"order_id", transition.OrderID,
		)
		return nil
	case sharedDomain.IsValidation(err):
		s.logger.ErrorContext(ctx, "order event cannot produce a series",
			"event_id", event.EventID,
			"order_id", transition.OrderID,
			"error", err,
		)
		return nil
	case err != nil:
		return fmt.Errorf("bind order %s: %w", transition.OrderID, err)
	}

	if series, ok := result.Get(); ok {
		s.metrics.Counter(observability.MetricSeriesCreated, 1, observability.T("source", "order"))
		s.logger.DebugContext(ctx, "order event bound", "order_id", transition.OrderID, "series_id", series.ID())
	}
	return nil
}

func decodeTransition(event *eventbus.ConsumedEvent) (services.OrderTransition, error) {
	var payload orderStatusChanged
	if err := event.DecodePayload(&payload); err != nil {
		return services.OrderTransition{}, err
	}
	if payload.OrderID == uuid.Nil {
		return services.OrderTransition{}, fmt.Errorf("event %s: missing order_id", event.EventID)
	}

	var startDate time.Time
	if payload.Schedule.StartDate != "" {
		d, err := time.Parse("2006-01-02", payload.Schedule.StartDate)
		if err != nil {
			return services.OrderTransition{}, fmt.Errorf("event %s: start_date: %w", event.EventID, err)
		}
		startDate = d
	}

	return services.OrderTransition{
		OrderID:      payload.OrderID,
		From:         payload.From,
		To:           payload.To,
		HealthUnitID: payload.HealthUnitID,
		PatientName:  payload.Patient.Name,
		StartDate:    startDate,
		Recurrency:   payload.Schedule.Recurrency,
		Schedule:     payload.Schedule.Schedule,
		ActorID:      event.Metadata.UserID,
	}, nil
}
