package calendar

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/spf13/cobra"
)

var asJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List events and occurrences in a window",
	Long: `List events and series occurrences ordered by start.

Examples:
  carecal calendar list
  carecal calendar list --from 2024-01-01 --to 2024-02-01
  carecal calendar list --json`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCalendarHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		window, err := cli.ParseWindow(fromDate, toDate, app.DefaultWindow, time.Now())
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

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		if len(items) == 0 {
			fmt.Fprintln(out, "Nothing scheduled.")
			return nil
		}
		fmt.Fprintf(out, "Calendar %s to %s (%d):\n",
			window.From.Format("2006-01-02"), window.To.Format("2006-01-02"), len(items))
		cli.PrintItems(out, items)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
}
