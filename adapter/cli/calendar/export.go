package calendar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/carecal/internal/calendar/infrastructure/icalendar"
	"github.com/spf13/cobra"
)

var outputPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a window as iCalendar",
	Long: `Write the window as an RFC 5545 calendar, one VEVENT per entry.

Examples:
  carecal calendar export --from 2024-01-01 --to 2024-02-01 -o january.ics
  carecal calendar export > week.ics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCalendarHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		now := time.Now()
		window, err := cli.ParseWindow(fromDate, toDate, app.DefaultWindow, now)
		if err != nil {
			return err
		}

		items, err := app.ListCalendarHandler.Handle(cmd.Context(), queries.ListCalendarQuery{
			Principal: app.Principal,
			From:      window.From,
			To:        window.To,
		})
		if err != nil {
			return fmt.Errorf("failed to list calendar: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to export.")
			return nil
		}

		var out io.Writer = cmd.OutOrStdout()
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outputPath, err)
			}
			defer f.Close()
			out = f
		}

		err = icalendar.Encode(out, "carecal", items, now)
		if errors.Is(err, icalendar.ErrEmptyCalendar) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to export calendar: %w", err)
		}
		if outputPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", len(items), outputPath)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write to file instead of stdout")
}
