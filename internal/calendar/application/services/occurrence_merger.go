package services

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/google/uuid"
)

// ItemKind tells one-off events and series occurrences apart in a listing.
type ItemKind string

const (
	ItemEvent      ItemKind = "event"
	ItemOccurrence ItemKind = "occurrence"
)

// CalendarItem is one entry of a merged calendar listing.
type CalendarItem struct {
	Kind        ItemKind   `json:"kind"`
	ID          string     `json:"id"`
	SeriesID    *uuid.UUID `json:"series_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TextColor   string     `json:"textColor,omitempty"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	OwnerID     uuid.UUID  `json:"owner"`
	OwnerType   string     `json:"owner_type"`
	OrderID     *uuid.UUID `json:"order,omitempty"`
}

// EventItem converts a persisted event into a listing entry.
func EventItem(e *domain.Event) CalendarItem {
	return CalendarItem{
		Kind:        ItemEvent,
		ID:          e.ID().String(),
		Title:       e.Title(),
		Description: e.Description(),
		TextColor:   e.TextColor(),
		Start:       e.Start(),
		End:         e.End(),
		OwnerID:     e.Owner().ID,
		OwnerType:   string(e.Owner().Type),
	}
}

// OccurrenceItem converts an occurrence into a listing entry keyed by its
// composite identity.
func OccurrenceItem(o domain.Occurrence) CalendarItem {
	seriesID := o.SeriesID
	return CalendarItem{
		Kind:        ItemOccurrence,
		ID:          o.Key(),
		SeriesID:    &seriesID,
		Title:       o.Title,
		Description: o.Description,
		TextColor:   o.TextColor,
		Start:       o.Start,
		End:         o.End,
		OwnerID:     o.Owner.ID,
		OwnerType:   string(o.Owner.Type),
		OrderID:     domain.OrderRef(o.Order),
	}
}

// Merge combines already authorized events and occurrence lists into one
// listing sorted by start. On equal starts events come first; otherwise the
// input order is kept. Nothing is dropped or added.
func Merge(events []*domain.Event, occurrenceLists ...[]domain.Occurrence) []CalendarItem {
	total := len(events)
	for _, list := range occurrenceLists {
		total += len(list)
	}

	items := make([]CalendarItem, 0, total)
	for _, e := range events {
		items = append(items, EventItem(e))
	}
	for _, list := range occurrenceLists {
		for _, o := range list {
			items = append(items, OccurrenceItem(o))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		return items[i].Kind == ItemEvent && items[j].Kind == ItemOccurrence
	})
	return items
}
