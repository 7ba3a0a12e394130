package api

import (
	"github.com/felixgeelhaar/carecal/internal/app"
)

// NewServerFromContainer builds the API server from a wired container.
// The container's JWT resolver authenticates requests.
func NewServerFromContainer(cfg ServerConfig, c *app.Container) *Server {
	calendar := NewCalendarHandler(CalendarHandlerConfig{
		ListCalendar:  c.ListCalendarHandler,
		ListSeries:    c.ListSeriesHandler,
		ExpandSeries:  c.ExpandSeriesHandler,
		CreateSeries:  c.CreateSeriesHandler,
		CreateEvent:   c.CreateEventHandler,
		DefaultWindow: c.Config.Calendar.DefaultWindow,
		Logger:        c.Logger,
	})
	orders := NewOrderHandler(OrderHandlerConfig{
		CreateOrder:     c.CreateOrderHandler,
		TransitionOrder: c.TransitionOrderHandler,
		GetOrder:        c.GetOrderHandler,
		AfterWrite:      c.DrainOutbox,
		Logger:          c.Logger,
	})

	var resolver PrincipalResolver
	if c.TokenResolver != nil {
		resolver = c.TokenResolver
	}
	return NewServer(cfg, calendar, orders, resolver, c.Health.Handler(cfg.ReadTimeout), c.Logger)
}
