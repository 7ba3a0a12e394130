package domain

import (
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
)

var (
	ErrSeriesNotFound      = sharedDomain.ErrNotFound
	ErrEventNotFound       = sharedDomain.ErrNotFound
	ErrSeriesAlreadyExists = sharedDomain.NewValidationError("order", "already has a linked series")
	ErrWindowRequired      = sharedDomain.NewValidationError("window", "is required")
	ErrWindowNotPositive   = sharedDomain.NewValidationError("window", "must end after it starts")
	ErrWindowTooLarge      = sharedDomain.NewValidationError("window", "exceeds the maximum span")
)
