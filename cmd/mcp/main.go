package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/carecal/internal/app"
	mcpinternal "github.com/felixgeelhaar/carecal/internal/mcp"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

func main() {
	// stdout carries the MCP stdio transport, logs go to stderr.
	logCfg := observability.DefaultLogConfig()
	logCfg.ServiceName = "carecal-mcp"
	logger := observability.NewLogger(logCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadFile(os.Getenv("CARECAL_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		logCfg.Level = "debug"
		logger = observability.NewLogger(logCfg)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cliApp, err := mcpinternal.NewCLIApp(container)
	if err != nil {
		logger.Error("invalid local operator", "error", err)
		os.Exit(1)
	}

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
