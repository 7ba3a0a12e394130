package queries

import (
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/google/uuid"
)

// SeriesDTO is the read model of a series definition.
type SeriesDTO struct {
	ID          uuid.UUID           `json:"id"`
	OwnerID     uuid.UUID           `json:"owner"`
	OwnerType   string              `json:"owner_type"`
	OrderID     *uuid.UUID          `json:"order,omitempty"`
	StartDate   string              `json:"start_date"`
	Recurrency  int                 `json:"recurrency"`
	Schedule    domain.Schedule     `json:"schedule"`
	End         domain.EndCondition `json:"end_series"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	TextColor   string              `json:"textColor,omitempty"`
}

// ToSeriesDTO maps a series onto its read model.
func ToSeriesDTO(s *domain.EventSeries) SeriesDTO {
	p := s.Params()
	schedule := p.Schedule
	if schedule == nil {
		schedule = domain.Schedule{}
	}
	return SeriesDTO{
		ID:          s.ID(),
		OwnerID:     p.Owner.ID,
		OwnerType:   string(p.Owner.Type),
		OrderID:     domain.OrderRef(p.Order),
		StartDate:   p.StartDate.Format("2006-01-02"),
		Recurrency:  p.Recurrency.Code(),
		Schedule:    schedule,
		End:         p.End,
		Title:       p.Title,
		Description: p.Description,
		TextColor:   p.TextColor,
	}
}
