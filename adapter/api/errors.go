package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/resilience"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
)

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, identityDomain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, sharedDomain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, sharedDomain.ErrNotFound):
		return http.StatusNotFound
	case sharedDomain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, sharedPersistence.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, resilience.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with its mapped status. Server errors are logged
// and their detail is not sent to the client.
func writeAppError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}
