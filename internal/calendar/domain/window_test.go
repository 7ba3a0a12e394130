package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	maxSpan := 365 * 24 * time.Hour

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		err  error
	}{
		{"missing from", time.Time{}, from, domain.ErrWindowRequired},
		{"missing to", from, time.Time{}, domain.ErrWindowRequired},
		{"empty", from, from, domain.ErrWindowNotPositive},
		{"reversed", from, from.Add(-time.Hour), domain.ErrWindowNotPositive},
		{"too large", from, from.Add(maxSpan + time.Second), domain.ErrWindowTooLarge},
		{"exactly max", from, from.Add(maxSpan), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewWindow(tt.from, tt.to, maxSpan)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWindow_DefaultMaxSpan(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewWindow(from, from.Add(domain.DefaultMaxWindowSpan+time.Hour), 0)
	assert.ErrorIs(t, err, domain.ErrWindowTooLarge)
}

func TestWindow_ContainsIsHalfOpen(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := domain.Window{From: from, To: from.Add(24 * time.Hour)}

	assert.True(t, w.Contains(from))
	assert.True(t, w.Contains(from.Add(23*time.Hour)))
	assert.False(t, w.Contains(from.Add(24*time.Hour)))
	assert.False(t, w.Contains(from.Add(-time.Nanosecond)))
	assert.Equal(t, 24*time.Hour, w.Span())
}
