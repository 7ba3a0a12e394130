package domain

import sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"

var (
	ErrOrderNotFound     = sharedDomain.ErrNotFound
	ErrInvalidTransition = sharedDomain.NewValidationError("status", "transition not allowed")
)
