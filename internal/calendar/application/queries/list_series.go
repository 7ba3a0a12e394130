package queries

import (
	"context"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
)

// ListSeriesQuery lists the series definitions the principal may see.
type ListSeriesQuery struct {
	Principal identityDomain.Principal
}

func (ListSeriesQuery) QueryName() string { return "calendar.series.list" }

// ListSeriesHandler handles the ListSeriesQuery.
type ListSeriesHandler struct {
	seriesRepo domain.SeriesRepository
}

// NewListSeriesHandler creates a new ListSeriesHandler.
func NewListSeriesHandler(seriesRepo domain.SeriesRepository) *ListSeriesHandler {
	return &ListSeriesHandler{seriesRepo: seriesRepo}
}

func (h *ListSeriesHandler) Handle(ctx context.Context, q ListSeriesQuery) ([]SeriesDTO, error) {
	if err := q.Principal.Require(identityDomain.PermissionCalendarView); err != nil {
		return nil, err
	}

	filter := domain.OwnerFilter{OwnerIDs: q.Principal.VisibleOwners()}
	if filter.IsEmpty() {
		return []SeriesDTO{}, nil
	}

	series, err := h.seriesRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]SeriesDTO, len(series))
	for i, s := range series {
		dtos[i] = ToSeriesDTO(s)
	}
	return dtos, nil
}
