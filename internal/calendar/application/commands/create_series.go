package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// CreateSeriesCommand creates a recurring template by hand. Such series are
// never linked to an order; those are created when an order is accepted.
type CreateSeriesCommand struct {
	Principal   identityDomain.Principal
	OwnerID     uuid.UUID
	OwnerType   string
	StartDate   time.Time
	Recurrency  int
	Schedule    domain.Schedule
	End         domain.EndCondition
	Title       string
	Description string
	TextColor   string
}

func (CreateSeriesCommand) CommandName() string { return "calendar.series.create" }

// CreateSeriesResult contains the id of the new series.
type CreateSeriesResult struct {
	SeriesID uuid.UUID
}

// CreateSeriesHandler handles the CreateSeriesCommand.
type CreateSeriesHandler struct {
	seriesRepo domain.SeriesRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewCreateSeriesHandler creates a new CreateSeriesHandler.
func NewCreateSeriesHandler(seriesRepo domain.SeriesRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateSeriesHandler {
	return &CreateSeriesHandler{
		seriesRepo: seriesRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the CreateSeriesCommand.
func (h *CreateSeriesHandler) Handle(ctx context.Context, cmd CreateSeriesCommand) (*CreateSeriesResult, error) {
	owner, err := resolveOwner(cmd.Principal, cmd.OwnerID, cmd.OwnerType)
	if err != nil {
		return nil, err
	}
	recurrency, err := domain.ParseIntervalKind(cmd.Recurrency)
	if err != nil {
		return nil, err
	}

	series, err := domain.NewEventSeries(domain.SeriesParams{
		Owner:       owner,
		Order:       mo.None[uuid.UUID](),
		StartDate:   cmd.StartDate,
		Recurrency:  recurrency,
		Schedule:    cmd.Schedule,
		End:         cmd.End,
		Title:       cmd.Title,
		Description: cmd.Description,
		TextColor:   cmd.TextColor,
	}, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.seriesRepo.Save(txCtx, series); err != nil {
			return err
		}
		return outbox.Stage(txCtx, h.outboxRepo, series, sharedApplication.EventMetadataFromContext(txCtx, cmd.Principal.UserID))
	})
	if err != nil {
		return nil, err
	}

	return &CreateSeriesResult{SeriesID: series.ID()}, nil
}
