package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

// ExpandSeriesQuery previews the occurrences of one series.
type ExpandSeriesQuery struct {
	Principal identityDomain.Principal
	SeriesID  uuid.UUID
	From      time.Time
	To        time.Time
}

func (ExpandSeriesQuery) QueryName() string { return "calendar.series.expand" }

// ExpandSeriesHandler handles the ExpandSeriesQuery.
type ExpandSeriesHandler struct {
	seriesRepo domain.SeriesRepository
	expander   *services.RecurrenceExpander
	source     services.OccurrenceSource
}

// NewExpandSeriesHandler creates a handler; a nil source uses expander.
func NewExpandSeriesHandler(seriesRepo domain.SeriesRepository, expander *services.RecurrenceExpander, source services.OccurrenceSource) *ExpandSeriesHandler {
	if source == nil {
		source = expander
	}
	return &ExpandSeriesHandler{seriesRepo: seriesRepo, expander: expander, source: source}
}

func (h *ExpandSeriesHandler) Handle(ctx context.Context, q ExpandSeriesQuery) ([]services.CalendarItem, error) {
	if err := q.Principal.Require(identityDomain.PermissionCalendarView); err != nil {
		return nil, err
	}
	window := domain.Window{From: q.From, To: q.To}
	if err := h.expander.ValidateWindow(window); err != nil {
		return nil, err
	}

	series, err := h.seriesRepo.FindByID(ctx, q.SeriesID)
	if err != nil {
		return nil, err
	}
	if !q.Principal.CanSee(series.Owner().ID) {
		return nil, fmt.Errorf("%w: series %s", sharedDomain.ErrForbidden, q.SeriesID)
	}

	occurrences, err := h.source.Occurrences(ctx, series, window)
	if err != nil {
		return nil, err
	}
	return services.Merge(nil, occurrences), nil
}
