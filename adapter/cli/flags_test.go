package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
	def := 7 * 24 * time.Hour

	tests := []struct {
		name     string
		from, to string
		want     domain.Window
		wantErr  string
	}{
		{
			name: "defaults to today",
			want: domain.Window{From: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)},
		},
		{
			name: "from only",
			from: "2024-01-01",
			want: domain.Window{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		},
		{
			name: "rfc3339 normalised to utc",
			from: "2024-01-01T10:00:00+01:00",
			to:   "2024-01-02",
			want: domain.Window{From: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
		{name: "bad from", from: "yesterday", wantErr: "--from"},
		{name: "bad to", to: "01.02.2024", wantErr: "--to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindow(tt.from, tt.to, def, now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.From.Equal(got.From), got.From)
			assert.True(t, tt.want.To.Equal(got.To), got.To)
		})
	}
}

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("Monday 09:00-10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, slot.Day())
	assert.Equal(t, "09:00", slot.StartTime.String())
	assert.Equal(t, "10:30", slot.EndTime.String())

	slot, err = ParseSlot("0 07:00-08:00")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, slot.Day())

	for _, bad := range []string{"", "mon", "mon 09:00", "someday 09:00-10:00", "7 09:00-10:00", "mon 10:00-09:00"} {
		_, err := ParseSlot(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSchedule_KeepsOrder(t *testing.T) {
	schedule, err := ParseSchedule([]string{"thu 14:00-15:00", "mon 09:00-10:00"})
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, time.Thursday, schedule[0].Day())
	assert.Equal(t, time.Monday, schedule[1].Day())

	_, err = ParseSchedule([]string{"mon 09:00-10:00", "bad"})
	assert.Error(t, err)
}

func TestParseEnd(t *testing.T) {
	end, err := ParseEnd("", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.EndsNever, end.Kind())

	end, err = ParseEnd("2024-06-30", 0)
	require.NoError(t, err)
	d, ok := end.Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), d)

	end, err = ParseEnd("", 4)
	require.NoError(t, err)
	n, ok := end.Count()
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, err = ParseEnd("2024-06-30", 4)
	assert.ErrorContains(t, err, "mutually exclusive")
	_, err = ParseEnd("June", 0)
	assert.ErrorContains(t, err, "--until")
}

func TestParseRecurrency(t *testing.T) {
	for in, want := range map[string]int{"none": 0, "weekly": 1, "Biweekly": 2, "monthly": 4} {
		got, err := ParseRecurrency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseRecurrency("daily")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID("order", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("order", id.String()[:8])
	assert.ErrorContains(t, err, "invalid order id")
}

func TestPrintItems(t *testing.T) {
	owner := uuid.MustParse("0b5f2a0e-0000-0000-0000-000000000000")
	var buf bytes.Buffer
	PrintItems(&buf, []services.CalendarItem{{
		Kind:    services.ItemOccurrence,
		Title:   "Physiotherapy",
		Start:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		OwnerID: owner,
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "START"))
	assert.Contains(t, lines[1], "Mon 2024-01-01 09:00")
	assert.Contains(t, lines[1], "10:00")
	assert.Contains(t, lines[1], "occurrence")
	assert.Contains(t, lines[1], "0b5f2a0e")
}
