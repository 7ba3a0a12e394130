package mcp

import (
	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided
// container, acting as the configured local operator.
func NewCLIApp(container *app.Container) (*cli.App, error) {
	principal, err := app.LocalPrincipal(container.Config)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(container, principal), nil
}
