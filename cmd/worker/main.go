package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/carecal/internal/app"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting carecal worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadFile(os.Getenv("CARECAL_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.OutboxProcessor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}

	cleanup, err := outbox.NewCleanupJob(cfg.Outbox.CleanupSchedule, container.OutboxProcessor, logger)
	if err != nil {
		logger.Error("failed to schedule outbox cleanup", "error", err)
		os.Exit(1)
	}
	cleanup.Start()
	defer cleanup.Stop()

	// In local mode the in-process bus already delivers to the subscriber.
	if !container.LocalMode() {
		registry := eventbus.NewConsumerRegistry(logger).WithMetrics(container.Metrics)

		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:    cfg.RabbitMQURL,
			Logger: logger,
		}, registry)
		if err != nil {
			logger.Error("failed to connect consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		consumer.RegisterConsumer(container.SeriesSubscriber)

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", "error", err)
				cancel()
			}
		}()
	}

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	go logStats(ctx, logger, container.OutboxProcessor, time.Minute)

	<-ctx.Done()
	logger.Info("shutting down worker")
}

func healthMux(c *app.Container) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := c.OutboxProcessor.GetStats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":            "ok",
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		})
	})
	mux.Handle("GET /readyz", c.Health.Handler(2*time.Second))
	return mux
}

func logStats(ctx context.Context, logger *slog.Logger, p *outbox.Processor, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := p.GetStats()
			logger.Info("outbox stats",
				"running", stats.IsRunning,
				"published", stats.PublishedCount,
				"failed", stats.FailedCount,
				"dead", stats.DeadCount,
				"lag_seconds", stats.LagSeconds,
				"last_error", stats.LastError,
			)
		}
	}
}
