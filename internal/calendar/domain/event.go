package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
)

// EventParams describes a one-off calendar entry.
type EventParams struct {
	Owner       sharedDomain.Owner
	Title       string
	Description string
	TextColor   string
	Start       time.Time
	End         time.Time
}

// Event is a persisted one-off appointment, independent of any series.
type Event struct {
	sharedDomain.BaseAggregateRoot
	owner       sharedDomain.Owner
	title       string
	description string
	textColor   string
	start       time.Time
	end         time.Time
}

// NewEvent validates p and creates an event.
func NewEvent(p EventParams, now time.Time) (*Event, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Owner.IsZero() || !p.Owner.Type.IsValid() {
		return nil, sharedDomain.NewValidationError("owner", "is required")
	}
	if p.Title == "" {
		return nil, sharedDomain.NewValidationError("title", "is required")
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return nil, sharedDomain.NewValidationError("start", "and end are required")
	}
	if !p.End.After(p.Start) {
		return nil, sharedDomain.NewValidationError("end", "must be after start")
	}

	e := &Event{BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now)}
	e.apply(p)
	e.AddDomainEvent(NewEventCreated(e, now))
	return e, nil
}

// RehydrateEvent rebuilds an event from storage.
func RehydrateEvent(entity sharedDomain.BaseEntity, version int, p EventParams) *Event {
	e := &Event{BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, version)}
	e.apply(p)
	return e
}

func (e *Event) apply(p EventParams) {
	e.owner = p.Owner
	e.title = p.Title
	e.description = p.Description
	e.textColor = p.TextColor
	e.start = p.Start
	e.end = p.End
}

func (e *Event) Owner() sharedDomain.Owner { return e.owner }
func (e *Event) Title() string             { return e.title }
func (e *Event) Description() string       { return e.description }
func (e *Event) TextColor() string         { return e.textColor }
func (e *Event) Start() time.Time          { return e.start }
func (e *Event) End() time.Time            { return e.end }
