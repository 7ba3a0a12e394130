package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/adapter/cli/calendar"
	"github.com/felixgeelhaar/carecal/adapter/cli/event"
	"github.com/felixgeelhaar/carecal/adapter/cli/order"
	"github.com/felixgeelhaar/carecal/adapter/cli/series"
	"github.com/felixgeelhaar/carecal/internal/app"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/felixgeelhaar/carecal/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadFile(configPath(os.Args[1:]))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	if verboseFlag(os.Args[1:]) {
		logCfg.Level = "debug"
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	principal, err := app.LocalPrincipal(cfg)
	if err != nil {
		logger.Error("invalid local principal", "error", err)
		container.Close()
		os.Exit(1)
	}
	cli.SetApp(cli.NewApp(container, principal))

	cli.AddCommand(calendar.Cmd)
	cli.AddCommand(series.Cmd)
	cli.AddCommand(event.Cmd)
	cli.AddCommand(order.Cmd)

	code := 0
	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	container.Close()
	os.Exit(code)
}

// configPath finds --config/-c before cobra parses flags, since the
// container has to exist before any command runs.
func configPath(args []string) string {
	for i, arg := range args {
		switch {
		case (arg == "--config" || arg == "-c") && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func verboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--verbose" || arg == "-v" {
			return true
		}
	}
	return false
}
