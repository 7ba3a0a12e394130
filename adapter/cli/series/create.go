package series

import (
	"fmt"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	"github.com/spf13/cobra"
)

var (
	owner       string
	ownerType   string
	startDate   string
	every       string
	slots       []string
	until       string
	count       int
	description string
	textColor   string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a recurring series",
	Long: `Create a recurring series on a health unit or collaborator calendar.

Each --slot is a weekday and a time range in UTC. Slot order breaks ties
between occurrences starting at the same time.

Examples:
  carecal series create "Physiotherapy" --owner <unit> --start 2024-01-01 \
      --every weekly --slot "mon 09:00-10:00" --slot "thu 14:00-15:00"
  carecal series create "Wound care" --owner <unit> --start 2024-01-03 \
      --every biweekly --slot "wed 14:00-15:00" --count 6`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateSeriesHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ownerID, err := cli.ParseID("owner", owner)
		if err != nil {
			return err
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
		end, err := cli.ParseEnd(until, count)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.CreateSeriesHandler.Handle(ctx, commands.CreateSeriesCommand{
			Principal:   app.Principal,
			OwnerID:     ownerID,
			OwnerType:   ownerType,
			StartDate:   start,
			Recurrency:  recurrency,
			Schedule:    schedule,
			End:         end,
			Title:       args[0],
			Description: description,
			TextColor:   textColor,
		})
		if err != nil {
			return fmt.Errorf("failed to create series: %w", err)
		}
		if err := app.AfterWrite(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created series: %s\n", result.SeriesID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&owner, "owner", "", "owning health unit or collaborator id")
	createCmd.Flags().StringVar(&ownerType, "owner-type", "health_unit", "owner kind (health_unit, collaborator)")
	createCmd.Flags().StringVar(&startDate, "start", "", "first day of the series (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&every, "every", "weekly", "cadence (none, weekly, biweekly, monthly)")
	createCmd.Flags().StringArrayVar(&slots, "slot", nil, `weekly slot, e.g. "mon 09:00-10:00" (repeatable)`)
	createCmd.Flags().StringVar(&until, "until", "", "last day of the series (YYYY-MM-DD)")
	createCmd.Flags().IntVar(&count, "count", 0, "stop after this many occurrences")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "description")
	createCmd.Flags().StringVar(&textColor, "color", "", "display colour")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("start")
}
