package subscribers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/subscribers"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const acceptedPayload = `{
	"order_id": "6f1c3b9e-8a4d-4d2b-9a51-2f7f4e0c1a11",
	"health_unit_id": "0b8e2a57-3c0f-4b8a-a3e6-7f2d1c9e5b42",
	"patient": {"id": "9d3f4c21-5e6a-4f7b-8c9d-0e1f2a3b4c5d", "name": "Maria Silva"},
	"from": "new",
	"to": "accepted",
	"schedule_information": {
		"start_date": "2024-01-01",
		"recurrency": 1,
		"schedule": [{"weekday": 1, "start_time": "09:00", "end_time": "10:00"}]
	}
}`

var orderID = uuid.MustParse("6f1c3b9e-8a4d-4d2b-9a51-2f7f4e0c1a11")

type fixture struct {
	series  *mockSeriesRepo
	uow     *mockUnitOfWork
	outbox  *outbox.InMemoryRepository
	metrics *observability.InMemoryMetrics
	sub     *subscribers.SeriesLifecycleSubscriber
}

func newFixture() *fixture {
	f := &fixture{
		series:  new(mockSeriesRepo),
		uow:     new(mockUnitOfWork),
		outbox:  outbox.NewInMemoryRepository(),
		metrics: observability.NewInMemoryMetrics(),
	}
	binder := services.NewSeriesLifecycleBinder(f.series, f.outbox, f.uow, nil, func() time.Time {
		return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	})
	f.sub = subscribers.NewSeriesLifecycleSubscriber(binder, nil, f.metrics)
	return f
}

func event(routingKey, payload string) *eventbus.ConsumedEvent {
	return &eventbus.ConsumedEvent{
		EventID:       uuid.New(),
		AggregateID:   orderID,
		AggregateType: "HomeCareOrder",
		RoutingKey:    routingKey,
		OccurredAt:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Payload:       []byte(payload),
		Metadata:      eventbus.EventMetadata{UserID: uuid.New()},
	}
}

func TestEventTypes(t *testing.T) {
	sub := subscribers.NewSeriesLifecycleSubscriber(nil, nil, nil)
	assert.ElementsMatch(t, []string{
		"orders.order.accepted",
		"orders.order.declined",
		"orders.order.cancelled",
		"orders.order.completed",
	}, sub.EventTypes())
}

func TestHandle_AcceptedOrderCreatesSeries(t *testing.T) {
	f := newFixture()
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Commit", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, orderID).Return(nil, sharedDomain.ErrNotFound)
	f.series.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.EventSeries) bool {
		linked, ok := s.Order().Get()
		return ok && linked == orderID && s.Title() == "Maria Silva" &&
			s.StartDate().Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	})).Return(nil)

	err := f.sub.Handle(context.Background(), event(subscribers.RoutingKeyOrderAccepted, acceptedPayload))

	require.NoError(t, err)
	f.series.AssertExpectations(t)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricSeriesCreated, observability.T("source", "order")))
	assert.NotEmpty(t, f.outbox.Messages())
}

func TestHandle_RedeliveryIsAcknowledged(t *testing.T) {
	f := newFixture()
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, orderID).Return(nil, sharedDomain.ErrNotFound)
	f.series.On("Save", mock.Anything, mock.Anything).Return(domain.ErrSeriesAlreadyExists)

	err := f.sub.Handle(context.Background(), event(subscribers.RoutingKeyOrderAccepted, acceptedPayload))

	require.NoError(t, err)
	assert.Zero(t, f.metrics.GetCounter(observability.MetricSeriesCreated, observability.T("source", "order")))
}

func TestHandle_StoreFailureIsRetried(t *testing.T) {
	f := newFixture()
	boom := errors.New("connection reset")
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.series.On("FindByOrderID", mock.Anything, orderID).Return(nil, boom)

	err := f.sub.Handle(context.Background(), event(subscribers.RoutingKeyOrderAccepted, acceptedPayload))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestHandle_PoisonMessagesAreDropped(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"empty", ``},
		{"missing order", `{"from":"new","to":"accepted"}`},
		{"bad start date", `{"order_id":"6f1c3b9e-8a4d-4d2b-9a51-2f7f4e0c1a11","from":"new","to":"accepted","schedule_information":{"start_date":"01/01/2024","recurrency":1}}`},
		{"bad slot time", `{"order_id":"6f1c3b9e-8a4d-4d2b-9a51-2f7f4e0c1a11","from":"new","to":"accepted","schedule_information":{"start_date":"2024-01-01","recurrency":1,"schedule":[{"weekday":1,"start_time":"25:00","end_time":"26:00"}]}}`},
		{"unknown recurrency", `{"order_id":"6f1c3b9e-8a4d-4d2b-9a51-2f7f4e0c1a11","from":"new","to":"accepted","schedule_information":{"start_date":"2024-01-01","recurrency":9}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			err := f.sub.Handle(context.Background(), event(subscribers.RoutingKeyOrderAccepted, tt.payload))

			require.NoError(t, err)
			f.series.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_CancelledOrderLeavesSeries(t *testing.T) {
	f := newFixture()
	f.series.On("FindByOrderID", mock.Anything, orderID).Return(nil, sharedDomain.ErrNotFound)

	payload := `{"order_id":"6f1c3b9e-8a4d-4d2b-9a51-2f7f4e0c1a11","from":"accepted","to":"cancelled","schedule_information":{"start_date":"2024-01-01","recurrency":1}}`
	err := f.sub.Handle(context.Background(), event(subscribers.RoutingKeyOrderCancelled, payload))

	require.NoError(t, err)
	f.series.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}
