package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	sharedApplication "github.com/felixgeelhaar/carecal/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Order statuses as published by the orders context.
const (
	OrderStatusNew       = "new"
	OrderStatusAccepted  = "accepted"
	OrderStatusDeclined  = "declined"
	OrderStatusCancelled = "cancelled"
	OrderStatusCompleted = "completed"
)

// OrderTransition is a status change of a home-care order together with
// the schedule snapshot needed to derive its series.
type OrderTransition struct {
	OrderID      uuid.UUID
	From         string
	To           string
	HealthUnitID uuid.UUID
	PatientName  string
	StartDate    time.Time
	Recurrency   int
	Schedule     domain.Schedule
	// ActorID is the user who performed the transition.
	ActorID uuid.UUID
}

// SeriesLifecycleBinder keeps series in step with the orders they are
// linked to. Accepting a recurring order creates exactly one series.
type SeriesLifecycleBinder struct {
	seriesRepo domain.SeriesRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	now        func() time.Time
}

// NewSeriesLifecycleBinder creates a binder. A nil now uses time.Now.
func NewSeriesLifecycleBinder(
	seriesRepo domain.SeriesRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	now func() time.Time,
) *SeriesLifecycleBinder {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &SeriesLifecycleBinder{
		seriesRepo: seriesRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		now:        now,
	}
}

// Bind applies the transition. It returns the created series, or None when
// the transition does not call for one. A second acceptance of the same
// order fails with domain.ErrSeriesAlreadyExists.
func (b *SeriesLifecycleBinder) Bind(ctx context.Context, t OrderTransition) (mo.Option[*domain.EventSeries], error) {
	none := mo.None[*domain.EventSeries]()

	switch {
	case t.From == OrderStatusNew && t.To == OrderStatusAccepted:
		return b.createSeries(ctx, t)
	case t.To == OrderStatusCancelled || t.To == OrderStatusCompleted || t.To == OrderStatusDeclined:
		return none, b.reportOrphan(ctx, t)
	default:
		return none, nil
	}
}

func (b *SeriesLifecycleBinder) createSeries(ctx context.Context, t OrderTransition) (mo.Option[*domain.EventSeries], error) {
	none := mo.None[*domain.EventSeries]()

	recurrency, err := domain.ParseIntervalKind(t.Recurrency)
	if err != nil {
		return none, err
	}
	if !recurrency.Recurs() {
		b.logger.DebugContext(ctx, "order is not recurring, no series created", "order_id", t.OrderID)
		return none, nil
	}

	var series *domain.EventSeries
	err = sharedApplication.WithUnitOfWork(ctx, b.uow, func(txCtx context.Context) error {
		existing, err := b.seriesRepo.FindByOrderID(txCtx, t.OrderID)
		switch {
		case err == nil && existing != nil:
			return domain.ErrSeriesAlreadyExists
		case err != nil && !errors.Is(err, sharedDomain.ErrNotFound):
			return fmt.Errorf("look up series of order %s: %w", t.OrderID, err)
		}

		series, err = domain.NewEventSeries(domain.SeriesParams{
			Owner:      sharedDomain.HealthUnitOwner(t.HealthUnitID),
			Order:      mo.Some(t.OrderID),
			StartDate:  t.StartDate,
			Recurrency: recurrency,
			Schedule:   t.Schedule,
			End:        domain.EndNever(),
			Title:      t.PatientName,
		}, b.now())
		if err != nil {
			return err
		}

		if err := b.seriesRepo.Save(txCtx, series); err != nil {
			return err
		}
		return outbox.Stage(txCtx, b.outboxRepo, series, sharedApplication.EventMetadataFromContext(txCtx, t.ActorID))
	})
	if err != nil {
		return none, err
	}

	b.logger.InfoContext(ctx, "series created for accepted order",
		"order_id", t.OrderID,
		"series_id", series.ID(),
		"recurrency", recurrency.String(),
	)
	return mo.Some(series), nil
}

// reportOrphan logs a series left behind by a terminal order transition.
// The series is not modified.
// TODO: end or remove the series once product decides what a cancelled
// recurring order means for visits already planned.
func (b *SeriesLifecycleBinder) reportOrphan(ctx context.Context, t OrderTransition) error {
	series, err := b.seriesRepo.FindByOrderID(ctx, t.OrderID)
	if errors.Is(err, sharedDomain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up series of order %s: %w", t.OrderID, err)
	}

	b.logger.WarnContext(ctx, "order left its series untouched",
		"order_id", t.OrderID,
		"series_id", series.ID(),
		"from", t.From,
		"to", t.To,
	)
	return nil
}
