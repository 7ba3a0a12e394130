package domain

import (
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	aggregateType = "HomeCareOrder"

	RoutingKeyOrderCreated = "orders.order.created"
	routingKeyPrefix       = "orders.order."
)

// RoutingKeyFor is the routing key of the status change into s.
func RoutingKeyFor(s Status) string {
	return routingKeyPrefix + string(s)
}

// SchedulePayload is the schedule snapshot carried by order events.
type SchedulePayload struct {
	StartDate  string                  `json:"start_date"`
	Recurrency int                     `json:"recurrency"`
	Schedule   calendarDomain.Schedule `json:"schedule"`
}

func schedulePayload(s ScheduleInformation) SchedulePayload {
	return SchedulePayload{
		StartDate:  s.StartDate.Format("2006-01-02"),
		Recurrency: s.Recurrency.Code(),
		Schedule:   s.Schedule,
	}
}

// OrderCreated is emitted when an order is placed.
type OrderCreated struct {
	sharedDomain.BaseEvent
	OrderID      uuid.UUID       `json:"order_id"`
	HealthUnitID uuid.UUID       `json:"health_unit_id"`
	Patient      Patient         `json:"patient"`
	Schedule     SchedulePayload `json:"schedule_information"`
}

// NewOrderCreated creates an OrderCreated event.
func NewOrderCreated(o *HomeCareOrder, now time.Time) *OrderCreated {
	return &OrderCreated{
		BaseEvent:    sharedDomain.NewBaseEvent(o.ID(), aggregateType, RoutingKeyOrderCreated, now),
		OrderID:      o.ID(),
		HealthUnitID: o.healthUnitID,
		Patient:      o.patient,
		Schedule:     schedulePayload(o.schedule),
	}
}

// OrderStatusChanged is emitted on every transition, under the routing key
// of the new status.
type OrderStatusChanged struct {
	sharedDomain.BaseEvent
	OrderID      uuid.UUID       `json:"order_id"`
	HealthUnitID uuid.UUID       `json:"health_unit_id"`
	Patient      Patient         `json:"patient"`
	From         Status          `json:"from"`
	To           Status          `json:"to"`
	Schedule     SchedulePayload `json:"schedule_information"`
}

// NewOrderStatusChanged records the move from from to the current status.
func NewOrderStatusChanged(o *HomeCareOrder, from Status, now time.Time) *OrderStatusChanged {
	return &OrderStatusChanged{
		BaseEvent:    sharedDomain.NewBaseEvent(o.ID(), aggregateType, RoutingKeyFor(o.status), now),
		OrderID:      o.ID(),
		HealthUnitID: o.healthUnitID,
		Patient:      o.patient,
		From:         from,
		To:           o.status,
		Schedule:     schedulePayload(o.schedule),
	}
}
