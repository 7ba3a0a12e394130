package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CreateEventCommand creates a one-off appointment.
type CreateEventCommand struct {
	Principal   identityDomain.Principal
	OwnerID     uuid.UUID
	OwnerType   string
	Title       string
	Description string
	TextColor   string
	Start       time.Time
	End         time.Time
}

func (CreateEventCommand) CommandName() string { return "calendar.event.create" }

// CreateEventResult contains the id of the new event.
type CreateEventResult struct {
	EventID uuid.UUID
}

// CreateEventHandler handles the CreateEventCommand.
type CreateEventHandler struct {
	eventRepo  domain.EventRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewCreateEventHandler creates a new CreateEventHandler.
func NewCreateEventHandler(eventRepo domain.EventRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateEventHandler {
	return &CreateEventHandler{
		eventRepo:  eventRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the CreateEventCommand.
func (h *CreateEventHandler) Handle(ctx context.Context, cmd CreateEventCommand) (*CreateEventResult, error) {
	owner, err := resolveOwner(cmd.Principal, cmd.OwnerID, cmd.OwnerType)
	if err != nil {
		return nil, err
	}

	event, err := domain.NewEvent(domain.EventParams{
		Owner:       owner,
		Title:       cmd.Title,
		Description: cmd.Description,
		TextColor:   cmd.TextColor,
		Start:       cmd.Start.UTC(),
		End:         cmd.End.UTC(),
	}, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.eventRepo.Save(txCtx, event); err != nil {
			return err
		}
		return outbox.Stage(txCtx, h.outboxRepo, event, sharedApplication.EventMetadataFromContext(txCtx, cmd.Principal.UserID))
	})
	if err != nil {
		return nil, err
	}

	return &CreateEventResult{EventID: event.ID()}, nil
}
