package resilience

import (
	"errors"
	"log/slog"
	"time"

	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// ErrStoreUnavailable is returned while a store's breaker is open.
var ErrStoreUnavailable = errors.New("calendar store unavailable")

// Settings configures the breakers guarding store reads.
type Settings struct {
	// MaxRequests may pass while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

func newBreaker(name string, s Settings, logger *slog.Logger, metrics observability.Metrics) *gobreaker.CircuitBreaker[any] {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = DefaultSettings().FailureThreshold
	}

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// caller errors say nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, sharedDomain.ErrNotFound) ||
				errors.Is(err, sharedDomain.ErrValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"store", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerTransitions, 1,
				observability.T("store", name), observability.T("to", to.String()))
		},
	})
}

// execute runs fn through cb and maps the breaker's own rejections onto
// ErrStoreUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrStoreUnavailable
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
