package order

import (
	"fmt"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/orders/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [order-id]",
	Short: "Show an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetOrderHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		orderID, err := cli.ParseID("order", args[0])
		if err != nil {
			return err
		}

		o, err := app.GetOrderHandler.Handle(cmd.Context(), queries.GetOrderQuery{
			Principal: app.Principal,
			OrderID:   orderID,
		})
		if err != nil {
			return fmt.Errorf("failed to get order: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Order %s [%s]\n", o.ID, o.Status)
		fmt.Fprintf(out, "   Health unit: %s\n", o.HealthUnitID)
		fmt.Fprintf(out, "   Patient: %s (%s)\n", o.PatientName, o.PatientID)
		fmt.Fprintf(out, "   Starts: %s, recurrency %d\n", o.StartDate, o.Recurrency)
		for _, slot := range o.Schedule {
			fmt.Fprintf(out, "   %s %s-%s\n", slot.Day().String()[:3], slot.StartTime, slot.EndTime)
		}
		return nil
	},
}
