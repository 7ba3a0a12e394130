// Package calendar provides the calendar listing commands.
package calendar

import (
	"github.com/spf13/cobra"
)

// Cmd is the calendar command group.
var Cmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Read calendars",
	Long: `Read the calendars visible to the local operator.

Listings merge one-off events with the occurrences of every recurring
series, expanded on the fly for the requested window.`,
}

var (
	fromDate string
	toDate   string
)

func init() {
	Cmd.PersistentFlags().StringVar(&fromDate, "from", "", "window start, RFC 3339 or YYYY-MM-DD (default today)")
	Cmd.PersistentFlags().StringVar(&toDate, "to", "", "window end, exclusive (default from + CALENDAR_DEFAULT_WINDOW)")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(exportCmd)
}
