package cli

import (
	"context"
	"time"

	"github.com/felixgeelhaar/carecal/internal/app"
	calendarCommands "github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	calendarQueries "github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	identityDomain "github.com/felixgeelhaar/carecal/internal/identity/domain"
	orderCommands "github.com/felixgeelhaar/carecal/internal/orders/application/commands"
	orderQueries "github.com/felixgeelhaar/carecal/internal/orders/application/queries"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Calendar
	ListCalendarHandler *calendarQueries.ListCalendarHandler
	ListSeriesHandler   *calendarQueries.ListSeriesHandler
	ExpandSeriesHandler *calendarQueries.ExpandSeriesHandler
	CreateSeriesHandler *calendarCommands.CreateSeriesHandler
	CreateEventHandler  *calendarCommands.CreateEventHandler

	// Orders
	CreateOrderHandler     *orderCommands.CreateOrderHandler
	TransitionOrderHandler *orderCommands.TransitionOrderHandler
	GetOrderHandler        *orderQueries.GetOrderHandler

	Health *observability.HealthRegistry

	// DefaultWindow is the listing length when --to is omitted.
	DefaultWindow time.Duration

	// Principal is the local operator every command runs as.
	Principal identityDomain.Principal

	container *app.Container
}

// NewApp creates the CLI application from a wired container.
func NewApp(c *app.Container, principal identityDomain.Principal) *App {
	return &App{
		ListCalendarHandler:    c.ListCalendarHandler,
		ListSeriesHandler:      c.ListSeriesHandler,
		ExpandSeriesHandler:    c.ExpandSeriesHandler,
		CreateSeriesHandler:    c.CreateSeriesHandler,
		CreateEventHandler:     c.CreateEventHandler,
		CreateOrderHandler:     c.CreateOrderHandler,
		TransitionOrderHandler: c.TransitionOrderHandler,
		GetOrderHandler:        c.GetOrderHandler,
		Health:                 c.Health,
		DefaultWindow:          c.Config.Calendar.DefaultWindow,
		Principal:              principal,
		container:              c,
	}
}

// Container exposes the wiring for commands that need more than handlers,
// such as serve.
func (a *App) Container() *app.Container {
	return a.container
}

// AfterWrite delivers staged events in local mode so that a command which
// accepts an order returns with the series already in place.
func (a *App) AfterWrite(ctx context.Context) error {
	if a.container == nil {
		return nil
	}
	return a.container.DrainOutbox(ctx)
}

var currentApp *App

// SetApp sets the current CLI application.
func SetApp(a *App) {
	currentApp = a
}

// GetApp returns the current CLI application.
func GetApp() *App {
	return currentApp
}
