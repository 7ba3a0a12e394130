package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

type testEvent struct {
	domain.BaseEvent
}

var fixedNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestNewBaseAggregateRoot(t *testing.T) {
	agg := domain.NewBaseAggregateRoot(fixedNow)

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Equal(t, fixedNow, agg.CreatedAt())
	assert.Equal(t, fixedNow, agg.UpdatedAt())
	assert.Equal(t, 0, agg.Version())
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(fixedNow)}

	for i := 0; i < 3; i++ {
		agg.AddDomainEvent(testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "test", "test.created", fixedNow)})
	}

	assert.Len(t, agg.DomainEvents(), 3)
	assert.Equal(t, 3, agg.Version())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
	assert.Equal(t, 3, agg.Version())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	later := fixedNow.Add(time.Hour)
	agg := domain.RehydrateBaseAggregateRoot(domain.RehydrateBaseEntity(id, fixedNow, later), 7)

	assert.Equal(t, id, agg.ID())
	assert.Equal(t, later, agg.UpdatedAt())
	assert.Equal(t, 7, agg.Version())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := domain.NewBaseEntity(fixedNow)
	e.Touch(fixedNow.Add(time.Minute))

	assert.Equal(t, fixedNow, e.CreatedAt())
	assert.Equal(t, fixedNow.Add(time.Minute), e.UpdatedAt())
}

func TestBaseEntity_SameIdentity(t *testing.T) {
	id := uuid.New()
	a := domain.NewBaseEntityWithID(id, fixedNow)
	b := domain.NewBaseEntityWithID(id, fixedNow.Add(time.Hour))

	assert.True(t, a.SameIdentity(b))
	assert.False(t, a.SameIdentity(domain.NewBaseEntity(fixedNow)))
	assert.False(t, a.SameIdentity(nil))
}

func TestBaseEvent(t *testing.T) {
	aggID := uuid.New()
	local := time.Date(2024, 3, 4, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	e := domain.NewBaseEvent(aggID, "series", "calendar.series.created", local)

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.Equal(t, aggID, e.AggregateID())
	assert.Equal(t, "series", e.AggregateType())
	assert.Equal(t, "calendar.series.created", e.RoutingKey())
	assert.Equal(t, time.UTC, e.OccurredAt().Location())

	md := domain.EventMetadata{UserID: uuid.New()}
	e.SetMetadata(md)
	assert.Equal(t, md, e.Metadata())
}
