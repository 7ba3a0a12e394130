package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func mustSlot(t *testing.T, weekday int, start, end string) domain.ScheduleSlot {
	t.Helper()
	slot, err := domain.NewScheduleSlot(weekday, start, end)
	require.NoError(t, err)
	return slot
}

func validParams(t *testing.T) domain.SeriesParams {
	t.Helper()
	return domain.SeriesParams{
		Owner:      sharedDomain.HealthUnitOwner(uuid.New()),
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Recurrency: domain.IntervalWeekly,
		Schedule:   domain.Schedule{mustSlot(t, 1, "09:00", "10:00")},
		End:        domain.EndNever(),
		Title:      "Maria Silva",
	}
}
