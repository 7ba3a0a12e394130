package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

var errNotInitialized = errors.New("application not initialized - database connection required")

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerCoreTools(srv, deps)
	registerCalendarTools(srv, deps)
	registerSeriesTools(srv, deps)
	registerOrderTools(srv, deps)
	return nil
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check the store and broker connections").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			if app.Health == nil {
				return nil, errNotInitialized
			}
			result := app.Health.Check(ctx)
			return map[string]any{
				"status": result.Status,
				"checks": result.Checks,
			}, nil
		})

	srv.Tool("cli.version").
		Description("Get CLI version information").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			return map[string]string{
				"version":   cli.Version,
				"commit":    cli.Commit,
				"buildDate": cli.BuildDate,
			}, nil
		})
}
