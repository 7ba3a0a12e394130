package series

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	internalApp "github.com/felixgeelhaar/carecal/internal/app"
	sharedDomain "github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUnit = uuid.MustParse("7a0c3b8e-3f43-4d8e-9c0e-000000000002")

func setupLocalModeTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		LocalMode:      true,
		DatabaseDriver: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "test.db"),
		UserID:         config.DefaultUserID,
		HealthUnits:    []string{testUnit.String()},
	}
	cfg.Normalize()

	container, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(container.Close)

	principal, err := internalApp.LocalPrincipal(cfg)
	require.NoError(t, err)

	app := cli.NewApp(container, principal)
	cli.SetApp(app)
	t.Cleanup(func() { cli.SetApp(nil) })
	return app
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetCreateFlags() {
	owner = testUnit.String()
	ownerType = "health_unit"
	startDate = "2024-01-03"
	every = "biweekly"
	slots = []string{"wed 14:00-15:00"}
	until = ""
	count = 0
	description = ""
	textColor = ""
}

func TestCreateAndExpand(t *testing.T) {
	setupLocalModeTestApp(t)

	resetCreateFlags()
	count = 2
	out, err := run(t, createCmd, "Wound care")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Created series: "), out)
	seriesID := strings.TrimSpace(strings.TrimPrefix(out, "Created series: "))

	fromDate = "2024-01-01"
	toDate = "2024-03-01"
	out, err = run(t, expandCmd, seriesID)
	require.NoError(t, err)
	assert.Contains(t, out, "Occurrences (2):")
	assert.Contains(t, out, "Wed 2024-01-03 14:00")
	assert.Contains(t, out, "Wed 2024-01-17 14:00")
	assert.NotContains(t, out, "2024-01-31")
}

func TestListCmd(t *testing.T) {
	setupLocalModeTestApp(t)

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No series found.")

	resetCreateFlags()
	until = "2024-06-30"
	_, err = run(t, createCmd, "Physiotherapy")
	require.NoError(t, err)

	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Series (1):")
	assert.Contains(t, out, "Physiotherapy")
	assert.Contains(t, out, "2024-01-03, biweekly")
	assert.Contains(t, out, "Wed 14:00-15:00")
}

func TestCreateCmd_Rejections(t *testing.T) {
	setupLocalModeTestApp(t)

	tests := []struct {
		name  string
		setup func()
		check func(t *testing.T, err error)
	}{
		{
			name:  "until and count",
			setup: func() { until = "2024-06-30"; count = 3 },
			check: func(t *testing.T, err error) { assert.Contains(t, err.Error(), "mutually exclusive") },
		},
		{
			name:  "slot ends before start",
			setup: func() { slots = []string{"wed 15:00-14:00"} },
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, sharedDomain.ErrValidation) },
		},
		{
			name:  "unknown owner type",
			setup: func() { ownerType = "patient" },
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, sharedDomain.ErrValidation) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetCreateFlags()
			tt.setup()
			_, err := run(t, createCmd, "Rejected")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestExpandCmd_UnknownSeries(t *testing.T) {
	setupLocalModeTestApp(t)
	fromDate, toDate = "2024-01-01", "2024-02-01"

	_, err := run(t, expandCmd, uuid.NewString())
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
}

func TestDescribeRecurrency(t *testing.T) {
	assert.Equal(t, "weekly", describeRecurrency(1))
	assert.Equal(t, "monthly", describeRecurrency(4))
	assert.Equal(t, "recurrency 3", describeRecurrency(3))
}
