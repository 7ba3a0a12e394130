package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateEventHandler_Handle(t *testing.T) {
	ctx := context.Background()
	unit := uuid.New()
	repo := new(mockEventRepo)
	uow := new(mockUnitOfWork)
	outboxRepo := outbox.NewInMemoryRepository()
	lisbon := time.FixedZone("WET", 3600)
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, lisbon)

	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	repo.On("Save", ctx, mock.MatchedBy(func(e *domain.Event) bool {
		return e.Start().Location() == time.UTC && e.Start().Equal(start)
	})).Return(nil)

	result, err := NewCreateEventHandler(repo, outboxRepo, uow).Handle(ctx, CreateEventCommand{
		Principal: editor(unit),
		OwnerID:   unit,
		OwnerType: "health_unit",
		Title:     "Initial assessment",
		Start:     start,
		End:       start.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.EventID)

	msgs := outboxRepo.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoutingKeyEventCreated, msgs[0].RoutingKey)
	repo.AssertExpectations(t)
}

func TestCreateEventHandler_EndBeforeStart(t *testing.T) {
	unit := uuid.New()
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	_, err := NewCreateEventHandler(new(mockEventRepo), outbox.NewInMemoryRepository(), new(mockUnitOfWork)).Handle(context.Background(), CreateEventCommand{
		Principal: editor(unit),
		OwnerID:   unit,
		OwnerType: "health_unit",
		Title:     "Backwards",
		Start:     start,
		End:       start,
	})
	assert.True(t, sharedDomain.IsValidation(err))
}

func TestCreateEventHandler_SaveFailure(t *testing.T) {
	ctx := context.Background()
	unit := uuid.New()
	repo := new(mockEventRepo)
	uow := new(mockUnitOfWork)
	outboxRepo := outbox.NewInMemoryRepository()
	boom := errors.New("write failed")
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("Save", ctx, mock.Anything).Return(boom)

	_, err := NewCreateEventHandler(repo, outboxRepo, uow).Handle(ctx, CreateEventCommand{
		Principal: editor(unit), OwnerID: unit, OwnerType: "health_unit",
		Title: "Visit", Start: start, End: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, outboxRepo.Messages())
}
