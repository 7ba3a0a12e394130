package domain

import (
	"fmt"
	"strings"
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a home-care order.
type Status string

const (
	StatusNew       Status = "new"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a stored or submitted status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNew, StatusAccepted, StatusDeclined, StatusCancelled, StatusCompleted:
		return st, nil
	default:
		return "", sharedDomain.NewValidationError("status", fmt.Sprintf("unknown status %q", s))
	}
}

// Action is a transition requested by a user.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

var transitions = map[Action]struct {
	from []Status
	to   Status
}{
	ActionAccept:   {from: []Status{StatusNew}, to: StatusAccepted},
	ActionDecline:  {from: []Status{StatusNew}, to: StatusDeclined},
	ActionCancel:   {from: []Status{StatusNew, StatusAccepted}, to: StatusCancelled},
	ActionComplete: {from: []Status{StatusAccepted}, to: StatusCompleted},
}

// ParseAction validates a transition name.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[a]; !ok {
		return "", sharedDomain.NewValidationError("transition", fmt.Sprintf("unknown transition %q", s))
	}
	return a, nil
}

// Patient is the person receiving care.
type Patient struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ScheduleInformation is the visit plan requested by the order.
type ScheduleInformation struct {
	StartDate  time.Time
	Recurrency calendarDomain.IntervalKind
	Schedule   calendarDomain.Schedule
}

// OrderParams holds the data of a new order.
type OrderParams struct {
	HealthUnitID uuid.UUID
	Patient      Patient
	Schedule     ScheduleInformation
}

// HomeCareOrder is a request for home-care visits addressed to a health unit.
type HomeCareOrder struct {
	sharedDomain.BaseAggregateRoot
	healthUnitID uuid.UUID
	patient      Patient
	schedule     ScheduleInformation
	status       Status
}

// NewHomeCareOrder validates p and creates an order in status new.
func NewHomeCareOrder(p OrderParams, now time.Time) (*HomeCareOrder, error) {
	p.Patient.Name = strings.TrimSpace(p.Patient.Name)
	if p.HealthUnitID == uuid.Nil {
		return nil, sharedDomain.NewValidationError("health_unit", "is required")
	}
	if p.Patient.ID == uuid.Nil {
		return nil, sharedDomain.NewValidationError("patient", "is required")
	}
	if p.Patient.Name == "" {
		return nil, sharedDomain.NewValidationError("patient_name", "is required")
	}
	if p.Schedule.StartDate.IsZero() {
		return nil, sharedDomain.NewValidationError("start_date", "is required")
	}
	if p.Schedule.Recurrency.Recurs() && len(p.Schedule.Schedule) == 0 {
		return nil, sharedDomain.NewValidationError("schedule", "needs at least one slot")
	}
	if err := p.Schedule.Schedule.Validate(); err != nil {
		return nil, err
	}

	o := &HomeCareOrder{BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now)}
	o.healthUnitID = p.HealthUnitID
	o.patient = p.Patient
	o.schedule = ScheduleInformation{
		StartDate:  calendarDomain.DateOf(p.Schedule.StartDate),
		Recurrency: p.Schedule.Recurrency,
		Schedule:   append(calendarDomain.Schedule(nil), p.Schedule.Schedule...),
	}
	o.status = StatusNew
	o.AddDomainEvent(NewOrderCreated(o, now))
	return o, nil
}

// RehydrateHomeCareOrder rebuilds an order from storage.
func RehydrateHomeCareOrder(entity sharedDomain.BaseEntity, version int, p OrderParams, status Status) *HomeCareOrder {
	return &HomeCareOrder{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version),
		healthUnitID:      p.HealthUnitID,
		patient:           p.Patient,
		schedule:          p.Schedule,
		status:            status,
	}
}

func (o *HomeCareOrder) HealthUnitID() uuid.UUID { return o.healthUnitID }
func (o *HomeCareOrder) Patient() Patient        { return o.patient }
func (o *HomeCareOrder) Status() Status          { return o.status }

// ScheduleInformation returns a copy of the visit plan.
func (o *HomeCareOrder) ScheduleInformation() ScheduleInformation {
	s := o.schedule
	s.Schedule = append(calendarDomain.Schedule(nil), o.schedule.Schedule...)
	return s
}

func (o *HomeCareOrder) Accept(now time.Time) error   { return o.Apply(ActionAccept, now) }
func (o *HomeCareOrder) Decline(now time.Time) error  { return o.Apply(ActionDecline, now) }
func (o *HomeCareOrder) Cancel(now time.Time) error   { return o.Apply(ActionCancel, now) }
func (o *HomeCareOrder) Complete(now time.Time) error { return o.Apply(ActionComplete, now) }

// Apply performs the transition named by a and records the status change.
func (o *HomeCareOrder) Apply(a Action, now time.Time) error {
	t, ok := transitions[a]
	if !ok {
		return sharedDomain.NewValidationError("transition", fmt.Sprintf("unknown transition %q", a))
	}

	allowed := false
	for _, from := range t.from {
		if o.status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: cannot %s an order that is %s", ErrInvalidTransition, a, o.status)
	}

	from := o.status
	o.status = t.to
	o.Touch(now)
	o.AddDomainEvent(NewOrderStatusChanged(o, from, now))
	return nil
}
