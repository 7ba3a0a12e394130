package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendarCommands "github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	calendarQueries "github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/subscribers"
	calendarDomain "github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/cache"
	"github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/resilience"
	"github.com/felixgeelhaar/carecal/internal/identity/infrastructure/token"
	orderCommands "github.com/felixgeelhaar/carecal/internal/orders/application/commands"
	orderQueries "github.com/felixgeelhaar/carecal/internal/orders/application/queries"
	ordersDomain "github.com/felixgeelhaar/carecal/internal/orders/domain"
	sharedApplication "github.com/felixgeelhaar/carecal/internal/shared/application"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis; nil when the occurrence cache is disabled.
	RedisClient *redis.Client

	// Repositories. Series and event reads go through circuit breakers.
	SeriesRepo calendarDomain.SeriesRepository
	EventRepo  calendarDomain.EventRepository
	OrderRepo  ordersDomain.Repository
	OutboxRepo outbox.Repository

	UnitOfWork sharedApplication.UnitOfWork

	// Publishers
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus

	// Calendar services
	Expander         *services.RecurrenceExpander
	OccurrenceSource services.OccurrenceSource
	Binder           *services.SeriesLifecycleBinder
	SeriesSubscriber *subscribers.SeriesLifecycleSubscriber

	// Calendar handlers
	CreateSeriesHandler *calendarCommands.CreateSeriesHandler
	CreateEventHandler  *calendarCommands.CreateEventHandler
	ListCalendarHandler *calendarQueries.ListCalendarHandler
	ListSeriesHandler   *calendarQueries.ListSeriesHandler
	ExpandSeriesHandler *calendarQueries.ExpandSeriesHandler

	// Order handlers
	CreateOrderHandler     *orderCommands.CreateOrderHandler
	TransitionOrderHandler *orderCommands.TransitionOrderHandler
	GetOrderHandler        *orderQueries.GetOrderHandler

	// Auth; nil without JWT_SECRET.
	TokenResolver *token.JWTResolver

	// Outbox Processor
	OutboxProcessor *outbox.Processor
}

// NewContainer opens the configured database and wires all dependencies.
// SQLite runs in local mode: events are delivered to the in-process bus
// instead of RabbitMQ.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := conn.Migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver())

	c, err := newContainer(ctx, cfg, logger, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func newContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, conn database.Connection) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Metrics:  observability.NewInMemoryMetrics(),
		Health:   observability.NewHealthRegistry(),
		DBConn:   conn,
		DBDriver: conn.Driver(),
	}
	c.Health.Register("database", observability.PingChecker(conn.Ping, observability.HealthStatusUnhealthy))

	factory := NewRepositoryFactory(conn)

	seriesRepo, err := factory.SeriesRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create series repository: %w", err)
	}
	eventRepo, err := factory.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create event repository: %w", err)
	}
	c.OrderRepo, err = factory.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create order repository: %w", err)
	}
	c.OutboxRepo, err = factory.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox repository: %w", err)
	}
	c.UnitOfWork = conn.UnitOfWork()

	breaker := resilience.Settings{
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		Timeout:          cfg.Breaker.Timeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}
	c.SeriesRepo = resilience.NewSeriesRepository(seriesRepo, breaker, logger, c.Metrics)
	c.EventRepo = resilience.NewEventRepository(eventRepo, breaker, logger, c.Metrics)

	c.Expander = services.NewRecurrenceExpander(cfg.Calendar.MaxWindow)
	c.OccurrenceSource = c.Expander
	c.connectRedis(ctx)
	if c.RedisClient != nil {
		c.OccurrenceSource = cache.NewOccurrenceCache(c.Expander, c.RedisClient, cfg.Calendar.CacheTTL, logger, c.Metrics)
	}

	c.Binder = services.NewSeriesLifecycleBinder(c.SeriesRepo, c.OutboxRepo, c.UnitOfWork, logger, nil)
	c.SeriesSubscriber = subscribers.NewSeriesLifecycleSubscriber(c.Binder, logger, c.Metrics)

	if c.DBDriver == database.DriverSQLite {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
		c.InProcessEventBus.RegisterConsumer(c.SeriesSubscriber)
		c.EventPublisher = c.InProcessEventBus
	} else {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		switch {
		case err == nil:
			c.EventPublisher = publisher
			c.Health.Register("rabbitmq", observability.PingChecker(publisher.Ping, observability.HealthStatusDegraded))
		case cfg.IsDevelopment():
			logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		default:
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}

	c.CreateSeriesHandler = calendarCommands.NewCreateSeriesHandler(c.SeriesRepo, c.OutboxRepo, c.UnitOfWork)
	c.CreateEventHandler = calendarCommands.NewCreateEventHandler(c.EventRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListCalendarHandler = calendarQueries.NewListCalendarHandler(c.SeriesRepo, c.EventRepo, c.Expander, c.OccurrenceSource, logger, c.Metrics)
	c.ListSeriesHandler = calendarQueries.NewListSeriesHandler(c.SeriesRepo)
	c.ExpandSeriesHandler = calendarQueries.NewExpandSeriesHandler(c.SeriesRepo, c.Expander, c.OccurrenceSource)

	c.CreateOrderHandler = orderCommands.NewCreateOrderHandler(c.OrderRepo, c.OutboxRepo, c.UnitOfWork)
	c.TransitionOrderHandler = orderCommands.NewTransitionOrderHandler(c.OrderRepo, c.OutboxRepo, c.UnitOfWork)
	c.GetOrderHandler = orderQueries.NewGetOrderHandler(c.OrderRepo)

	if cfg.JWTSecret != "" {
		c.TokenResolver = token.NewJWTResolver(cfg.JWTSecret)
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.Outbox.PollInterval,
		BatchSize:        cfg.Outbox.BatchSize,
		MaxRetries:       cfg.Outbox.MaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        time.Duration(cfg.Outbox.RetentionDays) * 24 * time.Hour,
	}, logger, outbox.WithMetrics(c.Metrics))

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"local_mode", c.LocalMode(),
		"occurrence_cache", c.RedisClient != nil,
	)
	return c, nil
}

// connectRedis enables the occurrence cache when REDIS_URL is set. Failures
// only disable the cache.
func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, occurrence cache disabled", "error", err)
		return
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Redis not available, occurrence cache disabled", "error", err)
		_ = client.Close()
		return
	}
	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, observability.HealthStatusDegraded))
	c.Logger.Info("connected to Redis")
}

// LocalMode reports whether events are delivered in process.
func (c *Container) LocalMode() bool {
	return c.InProcessEventBus != nil
}

// DrainOutbox publishes pending outbox messages right away. In local mode
// this runs the in-process consumers, so an accepted order has its series
// before the command returns. Elsewhere the worker's processor does this.
func (c *Container) DrainOutbox(ctx context.Context) error {
	if !c.LocalMode() {
		return nil
	}
	return c.OutboxProcessor.ProcessOnce(ctx)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
