package mcp

import (
	"time"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/domain"
)

// resolveWindow applies the listing defaults: from is today, to is from
// plus the configured default window.
func resolveWindow(app *cli.App, from, to string, now time.Time) (domain.Window, error) {
	return cli.ParseWindow(from, to, app.DefaultWindow, now)
}

// slotInput is one weekly slot, e.g. {"weekday":"mon","start":"09:00","end":"10:00"}.
type slotInput struct {
	Weekday string `json:"weekday" jsonschema:"required"`
	Start   string `json:"start" jsonschema:"required"`
	End     string `json:"end" jsonschema:"required"`
}

func parseSlots(slots []slotInput) (domain.Schedule, error) {
	raw := make([]string, len(slots))
	for i, s := range slots {
		raw[i] = s.Weekday + " " + s.Start + "-" + s.End
	}
	return cli.ParseSchedule(raw)
}

func recurrencyOrDefault(every string) (int, error) {
	if every == "" {
		every = "weekly"
	}
	return cli.ParseRecurrency(every)
}
