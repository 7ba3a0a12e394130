// Package series provides commands for recurring visit series.
package series

import (
	"github.com/spf13/cobra"
)

// Cmd is the series command group.
var Cmd = &cobra.Command{
	Use:   "series",
	Short: "Manage recurring series",
	Long: `Create, list and preview recurring series.

Series created here are not linked to an order. Order-backed series are
created when the order is accepted.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(expandCmd)
}
