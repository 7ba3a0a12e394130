package order

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/orders/application/commands"
	"github.com/felixgeelhaar/carecal/internal/orders/domain"
	"github.com/spf13/cobra"
)

func newTransitionCmd(action domain.Action) *cobra.Command {
	name := string(action)
	return &cobra.Command{
		Use:   name + " [order-id]",
		Short: strings.ToUpper(name[:1]) + name[1:] + " an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, action, args[0])
		},
	}
}

func runTransition(cmd *cobra.Command, action domain.Action, rawID string) error {
	app := cli.GetApp()
	if app == nil || app.TransitionOrderHandler == nil {
		return fmt.Errorf("application not initialized - database connection required")
	}

	orderID, err := cli.ParseID("order", rawID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := app.TransitionOrderHandler.Handle(ctx, commands.TransitionOrderCommand{
		Principal: app.Principal,
		OrderID:   orderID,
		Action:    string(action),
	})
	if err != nil {
		return fmt.Errorf("failed to %s order: %w", action, err)
	}
	if err := app.AfterWrite(ctx); err != nil {
		return fmt.Errorf("failed to deliver events: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Order %s: %s -> %s\n", result.OrderID, result.From, result.To)
	return nil
}
