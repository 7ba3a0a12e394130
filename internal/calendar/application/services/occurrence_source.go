package services

import (
	"context"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
)

// OccurrenceSource produces the occurrences of one series inside a window.
// RecurrenceExpander computes them; the Redis cache remembers them.
type OccurrenceSource interface {
	Occurrences(ctx context.Context, series *domain.EventSeries, window domain.Window) ([]domain.Occurrence, error)
}
