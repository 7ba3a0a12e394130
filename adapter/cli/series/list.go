package series

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/queries"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List series definitions",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListSeriesHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		series, err := app.ListSeriesHandler.Handle(cmd.Context(), queries.ListSeriesQuery{
			Principal: app.Principal,
		})
		if err != nil {
			return fmt.Errorf("failed to list series: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(series) == 0 {
			fmt.Fprintln(out, "No series found.")
			return nil
		}

		fmt.Fprintf(out, "Series (%d):\n", len(series))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, s := range series {
			fmt.Fprintf(out, "%s  %s\n", s.ID, s.Title)
			fmt.Fprintf(out, "   Owner: %s (%s)\n", s.OwnerID, s.OwnerType)
			fmt.Fprintf(out, "   Starts: %s, %s\n", s.StartDate, describeRecurrency(s.Recurrency))
			for _, slot := range s.Schedule {
				fmt.Fprintf(out, "   %s %s-%s\n", slot.Day().String()[:3], slot.StartTime, slot.EndTime)
			}
			if s.OrderID != nil {
				fmt.Fprintf(out, "   Order: %s\n", s.OrderID)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func describeRecurrency(code int) string {
	kind, err := domain.ParseIntervalKind(code)
	if err != nil {
		return fmt.Sprintf("recurrency %d", code)
	}
	return kind.String()
}
