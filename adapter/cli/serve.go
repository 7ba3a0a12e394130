package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar HTTP API",
	Long: `Serve the calendar and order HTTP API.

Requests authenticate with a bearer JWT signed with JWT_SECRET, so the
command refuses to start without one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container() == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}
		c := app.Container()
		if c.TokenResolver == nil {
			return fmt.Errorf("JWT_SECRET must be set to serve the API")
		}

		cfg := api.DefaultServerConfig()
		cfg.Addr = c.Config.HTTPAddr
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		server := api.NewServerFromContainer(cfg, c)

		ctx := cmd.Context()
		if c.Config.Outbox.ProcessorEnabled && !c.LocalMode() {
			if err := c.OutboxProcessor.Start(ctx); err != nil {
				return fmt.Errorf("start outbox processor: %w", err)
			}
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
