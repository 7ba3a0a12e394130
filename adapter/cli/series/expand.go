package series

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/spf13/cobra"
)

var (
	fromDate string
	toDate   string
)

var expandCmd = &cobra.Command{
	Use:   "expand [series-id]",
	Short: "Preview the occurrences of one series",
	Long: `Expand one series into its occurrences within a window.

Examples:
  carecal series expand <id> --from 2024-01-01 --to 2024-03-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ExpandSeriesHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		seriesID, err := cli.ParseID("series", args[0])
		if err != nil {
			return err
		}
		window, err := cli.ParseWindow(fromDate, toDate, app.DefaultWindow, time.Now())
		if err != nil {
			return err
		}

		items, err := app.ExpandSeriesHandler.Handle(cmd.Context(), queries.ExpandSeriesQuery{
			Principal: app.Principal,
			SeriesID:  seriesID,
			From:      window.From,
			To:        window.To,
		})
		if err != nil {
			return fmt.Errorf("failed to expand series: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No occurrences in window.")
			return nil
		}
		fmt.Fprintf(out, "Occurrences (%d):\n", len(items))
		cli.PrintItems(out, items)
		return nil
	},
}

func init() {
	expandCmd.Flags().StringVar(&fromDate, "from", "", "window start, RFC 3339 or YYYY-MM-DD (default today)")
	expandCmd.Flags().StringVar(&toDate, "to", "", "window end, exclusive")
}
