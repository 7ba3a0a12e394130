package resilience

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// SeriesRepository guards the reads of a series store with a breaker.
// Writes go straight to the store so they fail loudly.
type SeriesRepository struct {
	next    domain.SeriesRepository
	breaker *gobreaker.CircuitBreaker[any]
}

// NewSeriesRepository wraps next.
func NewSeriesRepository(next domain.SeriesRepository, s Settings, logger *slog.Logger, metrics observability.Metrics) *SeriesRepository {
	return &SeriesRepository{next: next, breaker: newBreaker("event_series", s, logger, metrics)}
}

func (r *SeriesRepository) Save(ctx context.Context, s *domain.EventSeries) error {
	return r.next.Save(ctx, s)
}

func (r *SeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventSeries, error) {
	return execute(r.breaker, func() (*domain.EventSeries, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *SeriesRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.EventSeries, error) {
	return execute(r.breaker, func() (*domain.EventSeries, error) {
		return r.next.FindByOrderID(ctx, orderID)
	})
}

func (r *SeriesRepository) List(ctx context.Context, filter domain.OwnerFilter) ([]*domain.EventSeries, error) {
	return execute(r.breaker, func() ([]*domain.EventSeries, error) {
		return r.next.List(ctx, filter)
	})
}

// EventRepository guards the reads of an event store with a breaker.
type EventRepository struct {
	next    domain.EventRepository
	breaker *gobreaker.CircuitBreaker[any]
}

// NewEventRepository wraps next.
func NewEventRepository(next domain.EventRepository, s Settings, logger *slog.Logger, metrics observability.Metrics) *EventRepository {
	return &EventRepository{next: next, breaker: newBreaker("events", s, logger, metrics)}
}

func (r *EventRepository) Save(ctx context.Context, e *domain.Event) error {
	return r.next.Save(ctx, e)
}

func (r *EventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return execute(r.breaker, func() (*domain.Event, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *EventRepository) List(ctx context.Context, filter domain.OwnerFilter, window domain.Window) ([]*domain.Event, error) {
	return execute(r.breaker, func() ([]*domain.Event, error) {
		return r.next.List(ctx, filter, window)
	})
}
