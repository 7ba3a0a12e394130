package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything in the calendar that carries an identity.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

// BaseEntity holds identity and timestamps. Timestamps are always passed in
// by the caller so aggregates can be built deterministically.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// NewBaseEntity creates an entity with a generated ID created at now.
func NewBaseEntity(now time.Time) BaseEntity {
	return NewBaseEntityWithID(uuid.New(), now)
}

// NewBaseEntityWithID creates an entity with a known ID.
func NewBaseEntityWithID(id uuid.UUID, now time.Time) BaseEntity {
	now = now.UTC()
	return BaseEntity{id: id, createdAt: now, updatedAt: now}
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// Touch moves updatedAt forward.
func (e *BaseEntity) Touch(now time.Time) {
	e.updatedAt = now.UTC()
}

// SameIdentity reports whether both entities share an ID.
func (e BaseEntity) SameIdentity(other Entity) bool {
	if other == nil {
		return false
	}
	return e.id == other.ID()
}
