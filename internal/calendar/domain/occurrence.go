package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

const occurrenceKeyLayout = "20060102T150405Z"

// Occurrence is one concrete visit derived from a series. It is recomputed
// on every read, so its identity is derived from its content.
type Occurrence struct {
	SeriesID    uuid.UUID
	Start       time.Time
	End         time.Time
	Title       string
	Description string
	TextColor   string
	Owner       sharedDomain.Owner
	Order       mo.Option[uuid.UUID]
}

// Key is the stable identity of the occurrence: series id and UTC start.
func (o Occurrence) Key() string {
	return OccurrenceKey(o.SeriesID, o.Start)
}

// OccurrenceKey builds the composite identity without an Occurrence value.
func OccurrenceKey(seriesID uuid.UUID, start time.Time) string {
	return seriesID.String() + "_" + start.UTC().Format(occurrenceKeyLayout)
}

// NewOccurrence stamps the series display fields onto one start/end pair.
func NewOccurrence(s *EventSeries, start, end time.Time) Occurrence {
	return Occurrence{
		SeriesID:    s.ID(),
		Start:       start,
		End:         end,
		Title:       s.title,
		Description: s.description,
		TextColor:   s.textColor,
		Owner:       s.owner,
		Order:       s.order,
	}
}
