package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func acceptance(t *testing.T) services.OrderTransition {
	return services.OrderTransition{
		OrderID:      uuid.New(),
		From:         services.OrderStatusNew,
		To:           services.OrderStatusAccepted,
		HealthUnitID: uuid.New(),
		PatientName:  "Maria Silva",
		StartDate:    jan1,
		Recurrency:   1,
		Schedule: domain.Schedule{
			slot(t, int(time.Monday), "09:00", "10:00"),
			slot(t, int(time.Thursday), "15:00", "16:00"),
		},
		ActorID: uuid.New(),
	}
}

type binderFixture struct {
	series *mockSeriesRepo
	outbox *outbox.InMemoryRepository
	uow    *mockUnitOfWork
	binder *services.SeriesLifecycleBinder
}

func newBinderFixture() *binderFixture {
	f := &binderFixture{
		series: new(mockSeriesRepo),
		outbox: outbox.NewInMemoryRepository(),
		uow:    new(mockUnitOfWork),
	}
	f.binder = services.NewSeriesLifecycleBinder(f.series, f.outbox, f.uow, nil, func() time.Time { return created })
	return f
}

func TestBind_AcceptingRecurringOrderCreatesSeries(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Commit", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(nil, sharedDomain.ErrNotFound)
	f.series.On("Save", mock.Anything, mock.AnythingOfType("*domain.EventSeries")).Return(nil)

	result, err := f.binder.Bind(context.Background(), tr)

	require.NoError(t, err)
	series, ok := result.Get()
	require.True(t, ok)

	orderID, linked := series.Order().Get()
	assert.True(t, linked)
	assert.Equal(t, tr.OrderID, orderID)
	assert.Equal(t, sharedDomain.HealthUnitOwner(tr.HealthUnitID), series.Owner())
	assert.Equal(t, jan1, series.StartDate())
	assert.Equal(t, domain.IntervalWeekly, series.Recurrency())
	assert.Equal(t, tr.Schedule, series.Schedule())
	assert.Equal(t, domain.EndsNever, series.End().Kind())
	assert.Equal(t, "Maria Silva", series.Title())

	msgs := f.outbox.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoutingKeySeriesCreated, msgs[0].RoutingKey)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, tr.OrderID.String(), payload["order_id"])
	assert.Contains(t, string(msgs[0].Metadata), tr.ActorID.String())
	assert.Empty(t, series.DomainEvents())

	f.uow.AssertExpectations(t)
	f.series.AssertExpectations(t)
}

func TestBind_SecondAcceptanceIsRejected(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)
	existing := newSeries(t)

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(existing, nil)

	result, err := f.binder.Bind(context.Background(), tr)

	require.ErrorIs(t, err, domain.ErrSeriesAlreadyExists)
	assert.True(t, sharedDomain.IsValidation(err))
	assert.True(t, result.IsAbsent())
	assert.Empty(t, f.outbox.Messages())
	f.series.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestBind_ConcurrentInsertLosesOnUniqueOrder(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(nil, sharedDomain.ErrNotFound)
	f.series.On("Save", mock.Anything, mock.Anything).Return(domain.ErrSeriesAlreadyExists)

	_, err := f.binder.Bind(context.Background(), tr)

	require.ErrorIs(t, err, domain.ErrSeriesAlreadyExists)
	assert.Empty(t, f.outbox.Messages())
}

func TestBind_NoSeriesForOneOffOrders(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)
	tr.Recurrency = 0

	result, err := f.binder.Bind(context.Background(), tr)

	require.NoError(t, err)
	assert.True(t, result.IsAbsent())
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestBind_UnknownRecurrencyCode(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)
	tr.Recurrency = 3

	_, err := f.binder.Bind(context.Background(), tr)

	assert.True(t, sharedDomain.IsValidation(err))
}

func TestBind_InvalidScheduleRollsBack(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)
	tr.Schedule = nil

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(nil, sharedDomain.ErrNotFound)

	_, err := f.binder.Bind(context.Background(), tr)

	assert.True(t, sharedDomain.IsValidation(err))
	f.uow.AssertCalled(t, "Rollback", mock.Anything)
}

func TestBind_StoreFailureIsPropagated(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)
	boom := errors.New("connection reset")

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(nil, boom)

	_, err := f.binder.Bind(context.Background(), tr)

	require.ErrorIs(t, err, boom)
	assert.False(t, sharedDomain.IsValidation(err))
}

func TestBind_OtherTransitionsCreateNothing(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		lookup   bool
	}{
		{"accepted to completed", services.OrderStatusAccepted, services.OrderStatusCompleted, true},
		{"accepted to cancelled", services.OrderStatusAccepted, services.OrderStatusCancelled, true},
		{"new to declined", services.OrderStatusNew, services.OrderStatusDeclined, true},
		{"accepted again", services.OrderStatusAccepted, services.OrderStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBinderFixture()
			tr := acceptance(t)
			tr.From, tr.To = tt.from, tt.to
			linked := newSeries(t)
			if tt.lookup {
				f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(linked, nil)
			}

			result, err := f.binder.Bind(context.Background(), tr)

			require.NoError(t, err)
			assert.True(t, result.IsAbsent())
			f.series.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			f.uow.AssertNotCalled(t, "Begin", mock.Anything)
			f.series.AssertExpectations(t)
		})
	}
}

func TestBind_TerminalTransitionWithoutSeries(t *testing.T) {
	f := newBinderFixture()
	tr := acceptance(t)
	tr.From, tr.To = services.OrderStatusAccepted, services.OrderStatusCancelled
	f.series.On("FindByOrderID", mock.Anything, tr.OrderID).Return(nil, sharedDomain.ErrNotFound)

	result, err := f.binder.Bind(context.Background(), tr)

	require.NoError(t, err)
	assert.True(t, result.IsAbsent())
}
