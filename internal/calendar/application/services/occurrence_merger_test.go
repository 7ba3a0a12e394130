package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, title string, start time.Time) *domain.Event {
	t.Helper()
	e, err := domain.NewEvent(domain.EventParams{
		Owner: sharedDomain.HealthUnitOwner(uuid.New()),
		Title: title,
		Start: start,
		End:   start.Add(time.Hour),
	}, created)
	require.NoError(t, err)
	return e
}

func TestMerge_EventsBeforeOccurrencesAtTheSameStart(t *testing.T) {
	series := newSeries(t)
	occs, err := services.NewRecurrenceExpander(0).Expand(series, weeks(jan1, 1))
	require.NoError(t, err)
	event := newEvent(t, "Doctor visit", at(jan1, 9, 0))

	items := services.Merge([]*domain.Event{event}, occs)

	require.Len(t, items, 2)
	assert.Equal(t, services.ItemEvent, items[0].Kind)
	assert.Equal(t, event.ID().String(), items[0].ID)
	assert.Equal(t, services.ItemOccurrence, items[1].Kind)
	assert.Equal(t, occs[0].Key(), items[1].ID)
}

func TestMerge_SortsAscendingAcrossInputs(t *testing.T) {
	seriesA := newSeries(t)
	seriesB := newSeries(t, withSlots(slot(t, int(time.Tuesday), "08:00", "09:00")))
	expander := services.NewRecurrenceExpander(0)
	occsA, err := expander.Expand(seriesA, weeks(jan1, 2))
	require.NoError(t, err)
	occsB, err := expander.Expand(seriesB, weeks(jan1, 2))
	require.NoError(t, err)
	events := []*domain.Event{
		newEvent(t, "late", at(jan1.AddDate(0, 0, 12), 7, 0)),
		newEvent(t, "early", at(jan1, 7, 0)),
	}

	items := services.Merge(events, occsA, occsB)

	require.Len(t, items, 6)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Start.Before(items[i-1].Start), "item %d out of order", i)
	}
	assert.Equal(t, "early", items[0].Title)
	assert.Equal(t, "late", items[5].Title)

	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.ID], "duplicate %s", item.ID)
		seen[item.ID] = true
	}
}

func TestMerge_KeepsInputOrderForEqualKinds(t *testing.T) {
	first := newEvent(t, "first", at(jan1, 9, 0))
	second := newEvent(t, "second", at(jan1, 9, 0))

	items := services.Merge([]*domain.Event{first, second})

	assert.Equal(t, []string{"first", "second"}, []string{items[0].Title, items[1].Title})
}

func TestMerge_Empty(t *testing.T) {
	items := services.Merge(nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items = services.Merge(nil, nil, []domain.Occurrence{})
	assert.Empty(t, items)
}

func TestCalendarItem_JSON(t *testing.T) {
	series := newSeries(t)
	occs, err := services.NewRecurrenceExpander(0).Expand(series, weeks(jan1, 1))
	require.NoError(t, err)

	data, err := json.Marshal(services.OccurrenceItem(occs[0]))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "occurrence", got["kind"])
	assert.Equal(t, occs[0].Key(), got["id"])
	assert.Equal(t, series.ID().String(), got["series_id"])
	assert.Equal(t, "#1e88e5", got["textColor"])
	assert.Equal(t, "health_unit", got["owner_type"])
	assert.NotEmpty(t, got["order"])

	data, err = json.Marshal(services.EventItem(newEvent(t, "Doctor visit", at(jan1, 9, 0))))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"order"`)
	assert.NotContains(t, string(data), `"series_id"`)
}
