// Package order provides commands for home-care orders.
package order

import (
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	"github.com/spf13/cobra"
)

// Cmd is the order command group.
var Cmd = &cobra.Command{
	Use:   "order",
	Short: "Manage home-care orders",
	Long: `Create home-care orders and move them through their lifecycle.

Accepting an order creates its visit series on the health unit calendar.
Later transitions leave the series as it is.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(showCmd)
	for _, action := range []domain.Action{
		domain.ActionAccept,
		domain.ActionDecline,
		domain.ActionCancel,
		domain.ActionComplete,
	} {
		Cmd.AddCommand(newTransitionCmd(action))
	}
}
