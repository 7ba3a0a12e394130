package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/felixgeelhaar/carecal/internal/calendar/application/services"
)

const timeLayout = "Mon 2006-01-02 15:04"

// PrintItems writes calendar entries as an aligned table.
func PrintItems(w io.Writer, items []services.CalendarItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tKIND\tTITLE\tOWNER")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.Start.UTC().Format(timeLayout),
			it.End.UTC().Format("15:04"),
			it.Kind,
			it.Title,
			it.OwnerID.String()[:8],
		)
	}
	_ = tw.Flush()
}
