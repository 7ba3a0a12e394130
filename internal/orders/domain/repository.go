package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores home-care orders.
type Repository interface {
	Save(ctx context.Context, order *HomeCareOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*HomeCareOrder, error)
}
