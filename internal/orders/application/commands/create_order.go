package commands

import (
	"context"
	"fmt"
	"time"

	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedApplication "github.com/felixgeelhaar/carecal/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CreateOrderCommand places a home-care order with a health unit.
type CreateOrderCommand struct {
	Principal    identityDomain.Principal
	HealthUnitID uuid.UUID
	PatientID    uuid.UUID
	PatientName  string
	StartDate    time.Time
	Recurrency   int
	Schedule     calendarDomain.Schedule
}

func (CreateOrderCommand) CommandName() string { return "orders.create" }

// CreateOrderResult contains the id of the new order.
type CreateOrderResult struct {
	OrderID uuid.UUID
}

// CreateOrderHandler handles the CreateOrderCommand.
type CreateOrderHandler struct {
	orderRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewCreateOrderHandler creates a new CreateOrderHandler.
func NewCreateOrderHandler(orderRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateOrderHandler {
	return &CreateOrderHandler{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the CreateOrderCommand.
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if err := authorizeUnit(cmd.Principal, cmd.HealthUnitID); err != nil {
		return nil, err
	}

	recurrency, err := calendarDomain.ParseIntervalKind(cmd.Recurrency)
	if err != nil {
		return nil, err
	}

	var result *CreateOrderResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		order, err := domain.NewHomeCareOrder(domain.OrderParams{
			HealthUnitID: cmd.HealthUnitID,
			Patient:      domain.Patient{ID: cmd.PatientID, Name: cmd.PatientName},
			Schedule: domain.ScheduleInformation{
				StartDate:  cmd.StartDate,
				Recurrency: recurrency,
				Schedule:   cmd.Schedule,
			},
		}, h.now())
		if err != nil {
			return err
		}

		if err := h.orderRepo.Save(txCtx, order); err != nil {
			return err
		}
		if err := outbox.Stage(txCtx, h.outboxRepo, order, sharedApplication.EventMetadataFromContext(txCtx, cmd.Principal.UserID)); err != nil {
			return err
		}

		result = &CreateOrderResult{OrderID: order.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func authorizeUnit(p identityDomain.Principal, healthUnitID uuid.UUID) error {
	if err := p.Require(identityDomain.PermissionOrdersManage); err != nil {
		return err
	}
	if !p.InHealthUnit(healthUnitID) {
		return fmt.Errorf("%w: not a member of health unit %s", sharedDomain.ErrForbidden, healthUnitID)
	}
	return nil
}
