// Package event provides commands for one-off calendar events.
package event

import (
	"github.com/spf13/cobra"
)

// Cmd is the event command group.
var Cmd = &cobra.Command{
	Use:   "event",
	Short: "Manage one-off events",
}

func init() {
	Cmd.AddCommand(createCmd)
}
