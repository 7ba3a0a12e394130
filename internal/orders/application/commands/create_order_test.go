package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func manager(unit uuid.UUID) identityDomain.Principal {
	return identityDomain.Principal{
		UserID:      uuid.New(),
		Role:        identityDomain.RoleManager,
		Permissions: []identityDomain.Permission{identityDomain.PermissionOrdersManage},
		HealthUnits: []uuid.UUID{unit},
	}
}

func weeklyCommand(p identityDomain.Principal, unit uuid.UUID) CreateOrderCommand {
	return CreateOrderCommand{
		Principal:    p,
		HealthUnitID: unit,
		PatientID:    uuid.New(),
		PatientName:  "Maria Silva",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Recurrency:   1,
		Schedule: calendarDomain.Schedule{
			{Weekday: 1, StartTime: calendarDomain.MustTimeOfDay("09:00"), EndTime: calendarDomain.MustTimeOfDay("10:00")},
		},
	}
}

func TestCreateOrderHandler_Handle(t *testing.T) {
	ctx := context.Background()
	unit := uuid.New()
	repo := new(mockOrderRepo)
	uow := new(mockUnitOfWork)
	outboxRepo := outbox.NewInMemoryRepository()

	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	repo.On("Save", ctx, mock.AnythingOfType("*domain.HomeCareOrder")).Return(nil)

	h := NewCreateOrderHandler(repo, outboxRepo, uow)
	h.now = func() time.Time { return fixedNow }

	result, err := h.Handle(ctx, weeklyCommand(manager(unit), unit))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.OrderID)

	msgs := outboxRepo.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoutingKeyOrderCreated, msgs[0].RoutingKey)
	assert.Equal(t, result.OrderID, msgs[0].AggregateID)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateOrderHandler_Forbidden(t *testing.T) {
	ctx := context.Background()
	unit := uuid.New()
	repo := new(mockOrderRepo)
	uow := new(mockUnitOfWork)
	h := NewCreateOrderHandler(repo, outbox.NewInMemoryRepository(), uow)

	t.Run("other health unit", func(t *testing.T) {
		_, err := h.Handle(ctx, weeklyCommand(manager(uuid.New()), unit))
		assert.ErrorIs(t, err, sharedDomain.ErrForbidden)
	})

	t.Run("missing permission", func(t *testing.T) {
		p := manager(unit)
		p.Permissions = []identityDomain.Permission{identityDomain.PermissionCalendarView}
		_, err := h.Handle(ctx, weeklyCommand(p, unit))
		assert.ErrorIs(t, err, sharedDomain.ErrForbidden)
	})

	uow.AssertNotCalled(t, "Begin", mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateOrderHandler_UnknownRecurrency(t *testing.T) {
	unit := uuid.New()
	h := NewCreateOrderHandler(new(mockOrderRepo), outbox.NewInMemoryRepository(), new(mockUnitOfWork))

	cmd := weeklyCommand(manager(unit), unit)
	cmd.Recurrency = 3

	_, err := h.Handle(context.Background(), cmd)
	assert.True(t, sharedDomain.IsValidation(err))
}

func TestCreateOrderHandler_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	unit := uuid.New()
	repo := new(mockOrderRepo)
	uow := new(mockUnitOfWork)
	outboxRepo := outbox.NewInMemoryRepository()
	boom := errors.New("disk full")

	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("Save", ctx, mock.Anything).Return(boom)

	h := NewCreateOrderHandler(repo, outboxRepo, uow)
	_, err := h.Handle(ctx, weeklyCommand(manager(unit), unit))

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, outboxRepo.Messages())
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
