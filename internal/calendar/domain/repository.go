package domain

import (
	"context"

	"github.com/google/uuid"
)

// OwnerFilter restricts listings to the given owners. An empty filter
// matches nothing; callers resolve visibility before querying.
type OwnerFilter struct {
	OwnerIDs []uuid.UUID
}

func (f OwnerFilter) IsEmpty() bool { return len(f.OwnerIDs) == 0 }

// SeriesRepository stores series definitions.
type SeriesRepository interface {
	// Save inserts or updates a series. Inserting a second series for an
	// order that already has one fails with ErrSeriesAlreadyExists.
	Save(ctx context.Context, series *EventSeries) error
	FindByID(ctx context.Context, id uuid.UUID) (*EventSeries, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*EventSeries, error)
	List(ctx context.Context, filter OwnerFilter) ([]*EventSeries, error)
}

// EventRepository stores one-off events.
type EventRepository interface {
	Save(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)
	// List returns events overlapping window, ordered by start.
	List(ctx context.Context, filter OwnerFilter, window Window) ([]*Event, error)
}
