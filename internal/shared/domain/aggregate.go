package domain

import "time"

// AggregateRoot is the consistency boundary persisted by a repository.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Version() int
}

// BaseAggregateRoot collects uncommitted events and tracks the version used
// for optimistic concurrency.
type BaseAggregateRoot struct {
	BaseEntity
	domainEvents []DomainEvent
	version      int
}

// NewBaseAggregateRoot creates an aggregate root created at now.
func NewBaseAggregateRoot(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(now)}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// DomainEvents returns all uncommitted domain events.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops uncommitted events once they reached the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// AddDomainEvent records an event and bumps the version.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
	a.version++
}

func (a *BaseAggregateRoot) Version() int { return a.version }
