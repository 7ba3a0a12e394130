package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := domain.ParseTimeOfDay("14:30")
	require.NoError(t, err)
	assert.Equal(t, 14, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "14:30", tod.String())

	for _, bad := range []string{"", "24:00", "9", "09:60", "nine"} {
		_, err := domain.ParseTimeOfDay(bad)
		assert.True(t, sharedDomain.IsValidation(err), bad)
	}
}

func TestTimeOfDay_On(t *testing.T) {
	loc := time.FixedZone("WET", 0)
	day := time.Date(2024, 3, 4, 23, 59, 0, 0, loc)

	got := domain.MustTimeOfDay("09:15").On(day)

	assert.Equal(t, time.Date(2024, 3, 4, 9, 15, 0, 0, loc), got)
}

func TestScheduleSlot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weekday int
		start   string
		end     string
		field   string
	}{
		{"weekday below range", -1, "09:00", "10:00", "weekday"},
		{"weekday above range", 7, "09:00", "10:00", "weekday"},
		{"end equals start", 1, "09:00", "09:00", "end_time"},
		{"end before start", 1, "10:00", "09:00", "end_time"},
		{"bad start", 1, "9am", "10:00", "start_time"},
		{"bad end", 1, "09:00", "ten", "end_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewScheduleSlot(tt.weekday, tt.start, tt.end)
			var ve *sharedDomain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestScheduleSlot_JSON(t *testing.T) {
	var slot domain.ScheduleSlot
	require.NoError(t, json.Unmarshal([]byte(`{"weekday":3,"start_time":"14:00","end_time":"15:30"}`), &slot))

	assert.Equal(t, time.Wednesday, slot.Day())
	assert.Equal(t, "14:00", slot.StartTime.String())
	assert.Equal(t, "15:30", slot.EndTime.String())

	out, err := json.Marshal(slot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weekday":3,"start_time":"14:00","end_time":"15:30"}`, string(out))
}

func TestSchedule_ValidateReportsSlotIndex(t *testing.T) {
	schedule := domain.Schedule{
		{Weekday: 1, StartTime: domain.MustTimeOfDay("09:00"), EndTime: domain.MustTimeOfDay("10:00")},
		{Weekday: 9, StartTime: domain.MustTimeOfDay("09:00"), EndTime: domain.MustTimeOfDay("10:00")},
	}

	err := schedule.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot 1")
	assert.True(t, sharedDomain.IsValidation(err))
}
