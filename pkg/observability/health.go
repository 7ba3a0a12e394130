package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is the result of a health check.
type HealthCheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker performs one check.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry runs named checks for readiness endpoints.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates a new health registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds a health checker for a component.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// OverallHealth is the aggregated view served over HTTP.
type OverallHealth struct {
	Status HealthStatus                 `json:"status"`
	Checks map[string]HealthCheckResult `json:"checks"`
}

// Check runs every check sequentially in name order.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()
	sort.Strings(names)

	out := OverallHealth{Status: HealthStatusHealthy, Checks: make(map[string]HealthCheckResult, len(names))}
	for _, name := range names {
		result := checkers[name](ctx)
		out.Checks[name] = result
		switch {
		case result.Status == HealthStatusUnhealthy:
			out.Status = HealthStatusUnhealthy
		case result.Status == HealthStatusDegraded && out.Status == HealthStatusHealthy:
			out.Status = HealthStatusDegraded
		}
	}
	return out
}

// Handler serves the aggregated health as JSON; unhealthy maps to 503.
func (r *HealthRegistry) Handler(timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()

		health := r.Check(ctx)
		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(health)
	})
}

// PingChecker turns a ping function into a checker. failStatus is what a
// failing ping reports: unhealthy for the database, degraded for optional
// services like the cache.
func PingChecker(ping func(ctx context.Context) error, failStatus HealthStatus) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: failStatus, Message: err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy}
	}
}
