package order

import (
	"fmt"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/orders/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	healthUnit  string
	patient     string
	patientName string
	startDate   string
	every       string
	slots       []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Place a home-care order",
	Long: `Place a home-care order with a health unit.

Examples:
  carecal order create --unit <unit> --patient-name "Maria Silva" \
      --start 2024-01-01 --every weekly --slot "mon 09:00-10:00"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateOrderHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		unitID, err := cli.ParseID("health unit", healthUnit)
		if err != nil {
			return err
		}
		patientID := uuid.New()
		if patient != "" {
			if patientID, err = cli.ParseID("patient", patient); err != nil {
				return err
			}
		}
		start, err := cli.ParseDate("start", startDate)
		if err != nil {
			return err
		}
		recurrency, err := cli.ParseRecurrency(every)
		if err != nil {
			return err
		}
		schedule, err := cli.ParseSchedule(slots)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.CreateOrderHandler.Handle(ctx, commands.CreateOrderCommand{
			Principal:    app.Principal,
			HealthUnitID: unitID,
			PatientID:    patientID,
			PatientName:  patientName,
			StartDate:    start,
			Recurrency:   recurrency,
			Schedule:     schedule,
		})
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := app.AfterWrite(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created order: %s\n", result.OrderID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&healthUnit, "unit", "", "health unit id")
	createCmd.Flags().StringVar(&patient, "patient", "", "patient id (default: new id)")
	createCmd.Flags().StringVar(&patientName, "patient-name", "", "patient name")
	createCmd.Flags().StringVar(&startDate, "start", "", "first visit day (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&every, "every", "weekly", "cadence (none, weekly, biweekly, monthly)")
	createCmd.Flags().StringArrayVar(&slots, "slot", nil, `weekly visit slot, e.g. "mon 09:00-10:00" (repeatable)`)
	_ = createCmd.MarkFlagRequired("unit")
	_ = createCmd.MarkFlagRequired("patient-name")
	_ = createCmd.MarkFlagRequired("start")
}
