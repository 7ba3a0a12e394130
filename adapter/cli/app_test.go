package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	internalApp "github.com/felixgeelhaar/carecal/internal/app"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "test.db"),
		UserID:         config.DefaultUserID,
	}
	cfg.Normalize()

	container, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	principal, err := internalApp.LocalPrincipal(cfg)
	require.NoError(t, err)
	return NewApp(container, principal)
}

func TestNewApp_WiresHandlers(t *testing.T) {
	app := newLocalApp(t)

	assert.NotNil(t, app.ListCalendarHandler)
	assert.NotNil(t, app.ExpandSeriesHandler)
	assert.NotNil(t, app.TransitionOrderHandler)
	assert.Equal(t, config.DefaultListingWindow, app.DefaultWindow)
	assert.NotNil(t, app.Container())
	assert.NoError(t, app.AfterWrite(context.Background()))
}

func TestAfterWrite_WithoutContainer(t *testing.T) {
	assert.NoError(t, (&App{}).AfterWrite(context.Background()))
}

func TestHealthCmd(t *testing.T) {
	SetApp(newLocalApp(t))
	defer SetApp(nil)

	var out bytes.Buffer
	healthCmd.SetOut(&out)
	healthCmd.SetContext(context.Background())

	require.NoError(t, healthCmd.RunE(healthCmd, nil))
	assert.Contains(t, out.String(), "status: healthy")
	assert.Contains(t, out.String(), "database")
}

func TestServeCmd_RequiresSecret(t *testing.T) {
	SetApp(newLocalApp(t))
	defer SetApp(nil)

	serveCmd.SetContext(context.Background())
	err := serveCmd.RunE(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestCommandsRequireApp(t *testing.T) {
	SetApp(nil)
	for _, cmd := range []func() error{
		func() error { return healthCmd.RunE(healthCmd, nil) },
		func() error { return serveCmd.RunE(serveCmd, nil) },
	} {
		err := cmd()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "application not initialized")
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "carecal dev")
}
