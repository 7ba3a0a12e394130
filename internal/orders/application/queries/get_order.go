package queries

import (
	"context"
	"fmt"
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/google/uuid"
)

// OrderDTO is the read model of a home-care order.
type OrderDTO struct {
	ID           uuid.UUID               `json:"id"`
	HealthUnitID uuid.UUID               `json:"health_unit_id"`
	PatientID    uuid.UUID               `json:"patient_id"`
	PatientName  string                  `json:"patient_name"`
	Status       string                  `json:"status"`
	StartDate    string                  `json:"start_date"`
	Recurrency   int                     `json:"recurrency"`
	Schedule     calendarDomain.Schedule `json:"schedule"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// ToOrderDTO maps an order onto its read model.
func ToOrderDTO(o *domain.HomeCareOrder) OrderDTO {
	info := o.ScheduleInformation()
	schedule := info.Schedule
	if schedule == nil {
		schedule = calendarDomain.Schedule{}
	}
	return OrderDTO{
		ID:           o.ID(),
		HealthUnitID: o.HealthUnitID(),
		PatientID:    o.Patient().ID,
		PatientName:  o.Patient().Name,
		Status:       string(o.Status()),
		StartDate:    info.StartDate.Format("2006-01-02"),
		Recurrency:   info.Recurrency.Code(),
		Schedule:     schedule,
		CreatedAt:    o.CreatedAt(),
		UpdatedAt:    o.UpdatedAt(),
	}
}

// GetOrderQuery loads one order.
type GetOrderQuery struct {
	Principal identityDomain.Principal
	OrderID   uuid.UUID
}

func (GetOrderQuery) QueryName() string { return "orders.get" }

// GetOrderHandler handles the GetOrderQuery.
type GetOrderHandler struct {
	orderRepo domain.Repository
}

// NewGetOrderHandler creates a new GetOrderHandler.
func NewGetOrderHandler(orderRepo domain.Repository) *GetOrderHandler {
	return &GetOrderHandler{orderRepo: orderRepo}
}

// Handle executes the query. Orders of other health units are reported as
// forbidden.
func (h *GetOrderHandler) Handle(ctx context.Context, q GetOrderQuery) (*OrderDTO, error) {
	if err := q.Principal.Require(identityDomain.PermissionOrdersManage); err != nil {
		return nil, err
	}

	order, err := h.orderRepo.FindByID(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}
	if !q.Principal.InHealthUnit(order.HealthUnitID()) {
		return nil, fmt.Errorf("%w: order %s belongs to another health unit", sharedDomain.ErrForbidden, q.OrderID)
	}

	dto := ToOrderDTO(order)
	return &dto, nil
}
