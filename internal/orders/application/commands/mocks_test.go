package commands

import (
	"context"

	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Save(ctx context.Context, o *domain.HomeCareOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.HomeCareOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HomeCareOrder), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return ctx, args.Error(0)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
