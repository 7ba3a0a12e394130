package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func validParams() domain.OrderParams {
	return domain.OrderParams{
		HealthUnitID: uuid.New(),
		Patient:      domain.Patient{ID: uuid.New(), Name: "  Maria Silva "},
		Schedule: domain.ScheduleInformation{
			StartDate:  time.Date(2024, 1, 3, 15, 30, 0, 0, time.UTC),
			Recurrency: calendarDomain.IntervalWeekly,
			Schedule: calendarDomain.Schedule{
				{Weekday: 1, StartTime: calendarDomain.MustTimeOfDay("09:00"), EndTime: calendarDomain.MustTimeOfDay("10:00")},
			},
		},
	}
}

func newOrder(t *testing.T) *domain.HomeCareOrder {
	t.Helper()
	o, err := domain.NewHomeCareOrder(validParams(), now)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestNewHomeCareOrder(t *testing.T) {
	p := validParams()
	o, err := domain.NewHomeCareOrder(p, now)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNew, o.Status())
	assert.Equal(t, "Maria Silva", o.Patient().Name)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), o.ScheduleInformation().StartDate)
	require.Len(t, o.DomainEvents(), 1)
	assert.Equal(t, domain.RoutingKeyOrderCreated, o.DomainEvents()[0].RoutingKey())
}

func TestNewHomeCareOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.OrderParams)
	}{
		{"missing health unit", func(p *domain.OrderParams) { p.HealthUnitID = uuid.Nil }},
		{"missing patient", func(p *domain.OrderParams) { p.Patient.ID = uuid.Nil }},
		{"blank patient name", func(p *domain.OrderParams) { p.Patient.Name = "   " }},
		{"missing start date", func(p *domain.OrderParams) { p.Schedule.StartDate = time.Time{} }},
		{"recurring without slots", func(p *domain.OrderParams) { p.Schedule.Schedule = nil }},
		{"inverted slot", func(p *domain.OrderParams) {
			p.Schedule.Schedule[0].EndTime = calendarDomain.MustTimeOfDay("08:00")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := domain.NewHomeCareOrder(p, now)
			assert.True(t, sharedDomain.IsValidation(err), "got %v", err)
		})
	}
}

func TestNewHomeCareOrder_OneOffWithoutSlots(t *testing.T) {
	p := validParams()
	p.Schedule.Recurrency = calendarDomain.IntervalNone
	p.Schedule.Schedule = nil

	_, err := domain.NewHomeCareOrder(p, now)
	assert.NoError(t, err)
}

func TestHomeCareOrder_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    []domain.Action
		action  domain.Action
		want    domain.Status
		allowed bool
	}{
		{"accept new", nil, domain.ActionAccept, domain.StatusAccepted, true},
		{"decline new", nil, domain.ActionDecline, domain.StatusDeclined, true},
		{"cancel new", nil, domain.ActionCancel, domain.StatusCancelled, true},
		{"complete new", nil, domain.ActionComplete, domain.StatusNew, false},
		{"cancel accepted", []domain.Action{domain.ActionAccept}, domain.ActionCancel, domain.StatusCancelled, true},
		{"complete accepted", []domain.Action{domain.ActionAccept}, domain.ActionComplete, domain.StatusCompleted, true},
		{"accept twice", []domain.Action{domain.ActionAccept}, domain.ActionAccept, domain.StatusAccepted, false},
		{"decline accepted", []domain.Action{domain.ActionAccept}, domain.ActionDecline, domain.StatusAccepted, false},
		{"accept declined", []domain.Action{domain.ActionDecline}, domain.ActionAccept, domain.StatusDeclined, false},
		{"cancel completed", []domain.Action{domain.ActionAccept, domain.ActionComplete}, domain.ActionCancel, domain.StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrder(t)
			for _, a := range tt.from {
				require.NoError(t, o.Apply(a, now))
			}
			o.ClearDomainEvents()

			err := o.Apply(tt.action, now.Add(time.Hour))
			assert.Equal(t, tt.want, o.Status())
			if !tt.allowed {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.True(t, sharedDomain.IsValidation(err))
				assert.Empty(t, o.DomainEvents())
				return
			}
			require.NoError(t, err)
			require.Len(t, o.DomainEvents(), 1)
			assert.Equal(t, domain.RoutingKeyFor(tt.want), o.DomainEvents()[0].RoutingKey())
		})
	}
}

func TestHomeCareOrder_AcceptedEventPayload(t *testing.T) {
	o := newOrder(t)
	require.NoError(t, o.Accept(now))

	raw, err := json.Marshal(o.DomainEvents()[0])
	require.NoError(t, err)

	var payload struct {
		OrderID      uuid.UUID `json:"order_id"`
		HealthUnitID uuid.UUID `json:"health_unit_id"`
		From         string    `json:"from"`
		To           string    `json:"to"`
		Patient      struct {
			Name string `json:"name"`
		} `json:"patient"`
		Schedule struct {
			StartDate  string                  `json:"start_date"`
			Recurrency int                     `json:"recurrency"`
			Schedule   calendarDomain.Schedule `json:"schedule"`
		} `json:"schedule_information"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, o.ID(), payload.OrderID)
	assert.Equal(t, o.HealthUnitID(), payload.HealthUnitID)
	assert.Equal(t, "new", payload.From)
	assert.Equal(t, "accepted", payload.To)
	assert.Equal(t, "Maria Silva", payload.Patient.Name)
	assert.Equal(t, "2024-01-03", payload.Schedule.StartDate)
	assert.Equal(t, 1, payload.Schedule.Recurrency)
	assert.Equal(t, o.ScheduleInformation().Schedule, payload.Schedule.Schedule)
}

func TestParseAction(t *testing.T) {
	a, err := domain.ParseAction(" Accept ")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAccept, a)

	_, err = domain.ParseAction("archive")
	assert.True(t, sharedDomain.IsValidation(err))
}

func TestParseStatus(t *testing.T) {
	s, err := domain.ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, s)

	_, err = domain.ParseStatus("pending")
	assert.Error(t, err)
}
