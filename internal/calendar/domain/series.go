package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// SeriesParams carries the definition of a recurring visit template.
type SeriesParams struct {
	Owner       sharedDomain.Owner
	Order       mo.Option[uuid.UUID]
	StartDate   time.Time
	Recurrency  IntervalKind
	Schedule    Schedule
	End         EndCondition
	Title       string
	Description string
	TextColor   string
}

// EventSeries is a recurring visit template. Its occurrences are computed on
// read and never stored.
type EventSeries struct {
	sharedDomain.BaseAggregateRoot
	owner       sharedDomain.Owner
	order       mo.Option[uuid.UUID]
	startDate   time.Time
	recurrency  IntervalKind
	schedule    Schedule
	end         EndCondition
	title       string
	description string
	textColor   string
}

// NewEventSeries validates p and creates a series.
func NewEventSeries(p SeriesParams, now time.Time) (*EventSeries, error) {
	p.Title = strings.TrimSpace(p.Title)
	if err := validateSeries(p); err != nil {
		return nil, err
	}

	s := &EventSeries{BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now)}
	s.apply(p)
	s.AddDomainEvent(NewSeriesCreated(s, now))
	return s, nil
}

// RehydrateEventSeries rebuilds a series from storage without validation or
// events.
func RehydrateEventSeries(entity sharedDomain.BaseEntity, version int, p SeriesParams) *EventSeries {
	s := &EventSeries{BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version)}
	s.apply(p)
	return s
}

func (s *EventSeries) apply(p SeriesParams) {
	s.owner = p.Owner
	s.order = p.Order
	s.startDate = DateOf(p.StartDate)
	s.recurrency = p.Recurrency
	s.schedule = append(Schedule(nil), p.Schedule...)
	s.end = p.End
	s.title = p.Title
	s.description = p.Description
	s.textColor = p.TextColor
}

func validateSeries(p SeriesParams) error {
	if p.Owner.IsZero() {
		return sharedDomain.NewValidationError("owner", "is required")
	}
	if !p.Owner.Type.IsValid() {
		return sharedDomain.NewValidationError("owner_type", "is invalid")
	}
	if p.StartDate.IsZero() {
		return sharedDomain.NewValidationError("start_date", "is required")
	}
	if p.Title == "" {
		return sharedDomain.NewValidationError("title", "is required")
	}
	if p.Recurrency < IntervalNone || p.Recurrency > IntervalMonthly {
		return sharedDomain.NewValidationError("recurrency", "is invalid")
	}
	if p.Recurrency.Recurs() && len(p.Schedule) == 0 {
		return sharedDomain.NewValidationError("schedule", "needs at least one slot")
	}
	if err := p.Schedule.Validate(); err != nil {
		return err
	}
	return p.End.Validate()
}

func (s *EventSeries) Owner() sharedDomain.Owner   { return s.owner }
func (s *EventSeries) Order() mo.Option[uuid.UUID] { return s.order }
func (s *EventSeries) StartDate() time.Time        { return s.startDate }
func (s *EventSeries) Recurrency() IntervalKind    { return s.recurrency }
func (s *EventSeries) End() EndCondition           { return s.end }
func (s *EventSeries) Title() string               { return s.title }
func (s *EventSeries) Description() string         { return s.description }
func (s *EventSeries) TextColor() string           { return s.textColor }

// Schedule returns a copy of the slots in declaration order.
func (s *EventSeries) Schedule() Schedule {
	return append(Schedule(nil), s.schedule...)
}

// Params returns the series definition, used by persistence and DTOs.
func (s *EventSeries) Params() SeriesParams {
	return SeriesParams{
		Owner:       s.owner,
		Order:       s.order,
		StartDate:   s.startDate,
		Recurrency:  s.recurrency,
		Schedule:    s.Schedule(),
		End:         s.end,
		Title:       s.title,
		Description: s.description,
		TextColor:   s.textColor,
	}
}
