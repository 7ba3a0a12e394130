package commands

import (
	"context"

	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSeriesRepo struct {
	mock.Mock
}

func (m *mockSeriesRepo) Save(ctx context.Context, s *domain.EventSeries) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSeriesRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventSeries, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventSeries), args.Error(1)
}

func (m *mockSeriesRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.EventSeries, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventSeries), args.Error(1)
}

func (m *mockSeriesRepo) List(ctx context.Context, filter domain.OwnerFilter) ([]*domain.EventSeries, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.EventSeries), args.Error(1)
}

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) Save(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventRepo) List(ctx context.Context, filter domain.OwnerFilter, window domain.Window) ([]*domain.Event, error) {
	args := m.Called(ctx, filter, window)
	return args.Get(0).([]*domain.Event), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	return ctx, m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
