package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

// ListCalendarQuery lists everything the principal may see in [From, To).
type ListCalendarQuery struct {
	Principal identityDomain.Principal
	From      time.Time
	To        time.Time
}

func (ListCalendarQuery) QueryName() string { return "calendar.list" }

// ListCalendarHandler merges persisted events with the occurrences of every
// visible series. Nothing is written.
type ListCalendarHandler struct {
	seriesRepo domain.SeriesRepository
	eventRepo  domain.EventRepository
	expander   *services.RecurrenceExpander
	source     services.OccurrenceSource
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewListCalendarHandler creates a handler. source defaults to expander;
// pass the Redis cache to reuse earlier expansions.
func NewListCalendarHandler(
	seriesRepo domain.SeriesRepository,
	eventRepo domain.EventRepository,
	expander *services.RecurrenceExpander,
	source services.OccurrenceSource,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ListCalendarHandler {
	if source == nil {
		source = expander
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ListCalendarHandler{
		seriesRepo: seriesRepo,
		eventRepo:  eventRepo,
		expander:   expander,
		source:     source,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle executes the query. The result is never nil.
func (h *ListCalendarHandler) Handle(ctx context.Context, q ListCalendarQuery) ([]services.CalendarItem, error) {
	start := time.Now()
	h.metrics.Counter(observability.MetricCalendarRequests, 1)
	defer func() {
		h.metrics.Timing(observability.MetricCalendarDuration, time.Since(start))
	}()

	if err := q.Principal.Require(identityDomain.PermissionCalendarView); err != nil {
		return nil, err
	}
	window := domain.Window{From: q.From, To: q.To}
	if err := h.expander.ValidateWindow(window); err != nil {
		return nil, err
	}

	filter := domain.OwnerFilter{OwnerIDs: q.Principal.VisibleOwners()}
	if filter.IsEmpty() {
		return []services.CalendarItem{}, nil
	}

	events, err := h.eventRepo.List(ctx, filter, window)
	if err != nil {
		return nil, err
	}
	series, err := h.seriesRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	lists := make([][]domain.Occurrence, 0, len(series))
	expanded := 0
	for _, s := range series {
		occurrences, err := h.source.Occurrences(ctx, s, window)
		if err != nil {
			return nil, err
		}
		expanded += len(occurrences)
		lists = append(lists, occurrences)
	}
	h.metrics.Counter(observability.MetricOccurrencesExpanded, int64(expanded))

	items := services.Merge(events, lists...)
	h.logger.DebugContext(ctx, "calendar listed",
		"owners", len(filter.OwnerIDs),
		"events", len(events),
		"series", len(series),
		"occurrences", expanded,
	)
	return items, nil
}
