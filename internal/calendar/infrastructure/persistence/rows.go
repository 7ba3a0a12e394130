package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// seriesRow is the storage shape of a series shared by both backends.
type seriesRow struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	ownerType   string
	orderID     *uuid.UUID
	startDate   time.Time
	recurrency  int
	schedule    []byte
	endKind     string
	endDate     *time.Time
	endCount    *int
	title       string
	description string
	textColor   string
	version     int
	createdAt   time.Time
	updatedAt   time.Time
}

func newSeriesRow(s *domain.EventSeries) (seriesRow, error) {
	p := s.Params()
	schedule := p.Schedule
	if schedule == nil {
		schedule = domain.Schedule{}
	}
	raw, err := json.Marshal(schedule)
	if err != nil {
		return seriesRow{}, fmt.Errorf("encode schedule: %w", err)
	}

	row := seriesRow{
		id:          s.ID(),
		ownerID:     p.Owner.ID,
		ownerType:   string(p.Owner.Type),
		orderID:     domain.OrderRef(p.Order),
		startDate:   p.StartDate,
		recurrency:  p.Recurrency.Code(),
		schedule:    raw,
		endKind:     string(p.End.Kind()),
		title:       p.Title,
		description: p.Description,
		textColor:   p.TextColor,
		version:     s.Version(),
		createdAt:   s.CreatedAt(),
		updatedAt:   s.UpdatedAt(),
	}
	if d, ok := p.End.Date(); ok {
		row.endDate = &d
	}
	if n, ok := p.End.Count(); ok {
		row.endCount = &n
	}
	return row, nil
}

func (row seriesRow) toDomain() (*domain.EventSeries, error) {
	ownerType, err := sharedDomain.ParseOwnerType(row.ownerType)
	if err != nil {
		return nil, err
	}
	recurrency, err := domain.ParseIntervalKind(row.recurrency)
	if err != nil {
		return nil, err
	}
	var schedule domain.Schedule
	if err := json.Unmarshal(row.schedule, &schedule); err != nil {
		return nil, fmt.Errorf("decode schedule of series %s: %w", row.id, err)
	}
	end, err := row.endCondition()
	if err != nil {
		return nil, err
	}

	return domain.RehydrateEventSeries(
		sharedDomain.RehydrateBaseEntity(row.id, row.createdAt, row.updatedAt),
		row.version,
		domain.SeriesParams{
			Owner:       sharedDomain.Owner{ID: row.ownerID, Type: ownerType},
			Order:       domain.OrderFromRef(row.orderID),
			StartDate:   row.startDate,
			Recurrency:  recurrency,
			Schedule:    schedule,
			End:         end,
			Title:       row.title,
			Description: row.description,
			TextColor:   row.textColor,
		},
	), nil
}

func (row seriesRow) endCondition() (domain.EndCondition, error) {
	switch domain.EndKind(row.endKind) {
	case domain.EndsNever, "":
		return domain.EndNever(), nil
	case domain.EndsOnDate:
		if row.endDate == nil {
			return domain.EndCondition{}, fmt.Errorf("series %s: on_date end without a date", row.id)
		}
		return domain.EndOnDate(*row.endDate), nil
	case domain.EndsAfterCount:
		if row.endCount == nil {
			return domain.EndCondition{}, fmt.Errorf("series %s: after_count end without a count", row.id)
		}
		return domain.EndAfterCount(*row.endCount)
	default:
		return domain.EndCondition{}, fmt.Errorf("series %s: unknown end kind %q", row.id, row.endKind)
	}
}

// eventRow is the storage shape of a one-off event.
type eventRow struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	ownerType   string
	title       string
	description string
	textColor   string
	startsAt    time.Time
	endsAt      time.Time
	version     int
	createdAt   time.Time
	updatedAt   time.Time
}

func (row eventRow) toDomain() (*domain.Event, error) {
	ownerType, err := sharedDomain.ParseOwnerType(row.ownerType)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateEvent(
		sharedDomain.RehydrateBaseEntity(row.id, row.createdAt, row.updatedAt),
		row.version,
		domain.EventParams{
			Owner:       sharedDomain.Owner{ID: row.ownerID, Type: ownerType},
			Title:       row.title,
			Description: row.description,
			TextColor:   row.textColor,
			Start:       row.startsAt,
			End:         row.endsAt,
		},
	), nil
}

func ownerIDStrings(filter domain.OwnerFilter) []string {
	ids := make([]string, len(filter.OwnerIDs))
	for i, id := range filter.OwnerIDs {
		ids[i] = id.String()
	}
	return ids
}
