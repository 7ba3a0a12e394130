package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

const (
	seriesAggregateType = "EventSeries"
	eventAggregateType  = "Event"

	RoutingKeySeriesCreated = "calendar.series.created"
	RoutingKeyEventCreated  = "calendar.event.created"
)

// SeriesCreated is emitted when a series is created, manually or from an
// accepted order.
type SeriesCreated struct {
	sharedDomain.BaseEvent
	SeriesID   uuid.UUID  `json:"series_id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	OwnerType  string     `json:"owner_type"`
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	StartDate  string     `json:"start_date"`
	Recurrency int        `json:"recurrency"`
	Title      string     `json:"title"`
}

// NewSeriesCreated creates a SeriesCreated event.
func NewSeriesCreated(s *EventSeries, now time.Time) *SeriesCreated {
	return &SeriesCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), seriesAggregateType, RoutingKeySeriesCreated, now),
		SeriesID:   s.ID(),
		OwnerID:    s.owner.ID,
		OwnerType:  string(s.owner.Type),
		OrderID:    OrderRef(s.order),
		StartDate:  s.startDate.Format(dateLayout),
		Recurrency: s.recurrency.Code(),
		Title:      s.title,
	}
}

// EventCreated is emitted when a one-off event is created.
type EventCreated struct {
	sharedDomain.BaseEvent
	CalendarEventID uuid.UUID `json:"calendar_event_id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	OwnerType       string    `json:"owner_type"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
}

// NewEventCreated creates an EventCreated event.
func NewEventCreated(e *Event, now time.Time) *EventCreated {
	return &EventCreated{
		BaseEvent:       sharedDomain.NewBaseEvent(e.ID(), eventAggregateType, RoutingKeyEventCreated, now),
		CalendarEventID: e.ID(),
		OwnerID:         e.owner.ID,
		OwnerType:       string(e.owner.Type),
		Start:           e.start,
		End:             e.end,
	}
}

// OrderRef converts an optional order link into a nullable pointer for
// payloads and rows.
func OrderRef(o mo.Option[uuid.UUID]) *uuid.UUID {
	if id, ok := o.Get(); ok {
		return &id
	}
	return nil
}

// OrderFromRef is the inverse of OrderRef.
func OrderFromRef(id *uuid.UUID) mo.Option[uuid.UUID] {
	if id == nil || *id == uuid.Nil {
		return mo.None[uuid.UUID]()
	}
	return mo.Some(*id)
}
