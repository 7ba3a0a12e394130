package commands

import (
	"context"
	"time"

	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedApplication "github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// TransitionOrderCommand moves an order through its lifecycle.
type TransitionOrderCommand struct {
	Principal identityDomain.Principal
	OrderID   uuid.UUID
	Action    string
}

func (TransitionOrderCommand) CommandName() string { return "orders.transition" }

// TransitionOrderResult reports the status change.
type TransitionOrderResult struct {
	OrderID uuid.UUID
	From    domain.Status
	To      domain.Status
}

// TransitionOrderHandler handles the TransitionOrderCommand. The status
// change event is staged in the same transaction as the order update, so
// the calendar reacts to exactly the transitions that were committed.
type TransitionOrderHandler struct {
	orderRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewTransitionOrderHandler creates a new TransitionOrderHandler.
func NewTransitionOrderHandler(orderRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *TransitionOrderHandler {
	return &TransitionOrderHandler{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the TransitionOrderCommand.
func (h *TransitionOrderHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*TransitionOrderResult, error) {
	action, err := domain.ParseAction(cmd.Action)
	if err != nil {
		return nil, err
	}
	if err := cmd.Principal.Require(identityDomain.PermissionOrdersManage); err != nil {
		return nil, err
	}

	var result *TransitionOrderResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		order, err := h.orderRepo.FindByID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		if err := authorizeUnit(cmd.Principal, order.HealthUnitID()); err != nil {
			return err
		}

		from := order.Status()
		if err := order.Apply(action, h.now()); err != nil {
			return err
		}

		if err := h.orderRepo.Save(txCtx, order); err != nil {
			return err
		}
		if err := outbox.Stage(txCtx, h.outboxRepo, order, sharedApplication.EventMetadataFromContext(txCtx, cmd.Principal.UserID)); err != nil {
			return err
		}

		result = &TransitionOrderResult{OrderID: order.ID(), From: from, To: order.Status()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
