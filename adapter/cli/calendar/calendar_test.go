package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	internalApp "github.com/felixgeelhaar/carecal/internal/app"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/felixgeelhaar/carecal/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUnit = uuid.MustParse("7a0c3b8e-3f43-4d8e-9c0e-000000000004")

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

// seedWeeklySeries adds a Monday 09:00 and Thursday 14:00 series starting
// 2024-01-01.
func seedWeeklySeries(t *testing.T, app *cli.App) {
	t.Helper()
	_, err := app.CreateSeriesHandler.Handle(context.Background(), commands.CreateSeriesCommand{
		Principal:  app.Principal,
		OwnerID:    testUnit,
		OwnerType:  "health_unit",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Recurrency: 1,
		Schedule: domain.Schedule{
			{Weekday: 1, StartTime: domain.MustTimeOfDay("09:00"), EndTime: domain.MustTimeOfDay("10:00")},
			{Weekday: 4, StartTime: domain.MustTimeOfDay("14:00"), EndTime: domain.MustTimeOfDay("15:00")},
		},
		End:   domain.EndNever(),
		Title: "Physiotherapy",
	})
	require.NoError(t, err)
}

func run(t *testing.T, cmd *cobra.Command) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, nil)
	return out.String() + errOut.String(), err
}

func TestListCmd_Empty(t *testing.T) {
	setupLocalModeTestApp(t)
	fromDate, toDate, asJSON = "2024-01-01", "2024-02-01", false

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing scheduled.")
}

func TestListCmd_Table(t *testing.T) {
	app := setupLocalModeTestApp(t)
	seedWeeklySeries(t, app)
	fromDate, toDate, asJSON = "2024-01-01", "2024-01-15", false

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Calendar 2024-01-01 to 2024-01-15 (4):")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[2], "Mon 2024-01-01 09:00")
	assert.Contains(t, lines[3], "Thu 2024-01-04 14:00")
	assert.Contains(t, lines[4], "Mon 2024-01-08 09:00")
	assert.Contains(t, lines[5], "Thu 2024-01-11 14:00")
}

func TestListCmd_JSON(t *testing.T) {
	app := setupLocalModeTestApp(t)
	seedWeeklySeries(t, app)
	fromDate, toDate, asJSON = "2024-01-01", "2024-01-08", true
	defer func() { asJSON = false }()

	out, err := run(t, listCmd)
	require.NoError(t, err)

	var items []services.CalendarItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, services.ItemOccurrence, items[0].Kind)
	assert.Equal(t, "Physiotherapy", items[0].Title)
}

func TestListCmd_WindowTooLong(t *testing.T) {
	setupLocalModeTestApp(t)
	fromDate, toDate = "2024-01-01", "2030-01-01"

	_, err := run(t, listCmd)
	require.Error(t, err)
}

func TestExportCmd_WritesFile(t *testing.T) {
	app := setupLocalModeTestApp(t)
	seedWeeklySeries(t, app)
	fromDate, toDate = "2024-01-01", "2024-02-01"
	outputPath = filepath.Join(t.TempDir(), "january.ics")
	defer func() { outputPath = "" }()

	out, err := run(t, exportCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 9 entries")

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(string(data), "BEGIN:VEVENT"))
	assert.Contains(t, string(data), "SUMMARY:Physiotherapy")
}

func TestExportCmd_Empty(t *testing.T) {
	setupLocalModeTestApp(t)
	fromDate, toDate, outputPath = "2024-01-01", "2024-02-01", ""

	out, err := run(t, exportCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to export.")
}
