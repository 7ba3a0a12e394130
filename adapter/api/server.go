// Package api serves the carecal HTTP API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	calendar *CalendarHandler
	orders   *OrderHandler
	auth     PrincipalResolver
	health   http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server. health may be nil.
func NewServer(cfg ServerConfig, calendar *CalendarHandler, orders *OrderHandler, auth PrincipalResolver, health http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		calendar: calendar,
		orders:   orders,
		auth:     auth,
		health:   health,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      withRequestContext(s.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.health != nil {
		s.mux.Handle("GET /readyz", s.health)
	}

	authed := func(h http.HandlerFunc) http.Handler {
		return requirePrincipal(s.auth, h)
	}

	// Calendar API v1
	s.mux.Handle("GET /api/v1/calendar", authed(s.calendar.ListCalendar))
	s.mux.Handle("GET /api/v1/calendar.ics", authed(s.calendar.ExportCalendar))
	s.mux.Handle("GET /api/v1/series", authed(s.calendar.ListSeries))
	s.mux.Handle("POST /api/v1/series", authed(s.calendar.CreateSeries))
	s.mux.Handle("GET /api/v1/series/{seriesID}/occurrences", authed(s.calendar.ExpandSeries))
	s.mux.Handle("POST /api/v1/events", authed(s.calendar.CreateEvent))

	// Orders
	s.mux.Handle("POST /api/v1/orders", authed(s.orders.CreateOrder))
	s.mux.Handle("GET /api/v1/orders/{orderID}", authed(s.orders.GetOrder))
	s.mux.Handle("POST /api/v1/orders/{orderID}/{transition}", authed(s.orders.TransitionOrder))
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleHealth handles liveness requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Log error but can't do much at this point
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
