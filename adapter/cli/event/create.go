package event

import (
	"fmt"

	"github.com/felixgeelhaar/carecal/adapter/cli"
	"github.com/felixgeelhaar/carecal/internal/calendar/application/commands"
	"github.com/spf13/cobra"
)

var (
	owner       string
	ownerType   string
	start       string
	end         string
	description string
	textColor   string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a one-off event",
	Long: `Create a single appointment on a health unit or collaborator calendar.

Examples:
  carecal event create "Team meeting" --owner <unit> \
      --start 2024-01-10T15:00:00Z --end 2024-01-10T16:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateEventHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ownerID, err := cli.ParseID("owner", owner)
		if err != nil {
			return err
		}
		startsAt, err := cli.ParseInstant("start", start)
		if err != nil {
			return err
		}
		endsAt, err := cli.ParseInstant("end", end)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.CreateEventHandler.Handle(ctx, commands.CreateEventCommand{
			Principal:   app.Principal,
			OwnerID:     ownerID,
			OwnerType:   ownerType,
			Title:       args[0],
			Description: description,
			TextColor:   textColor,
			Start:       startsAt,
			End:         endsAt,
		})
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		if err := app.AfterWrite(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created event: %s\n", result.EventID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&owner, "owner", "", "owning health unit or collaborator id")
	createCmd.Flags().StringVar(&ownerType, "owner-type", "health_unit", "owner kind (health_unit, collaborator)")
	createCmd.Flags().StringVar(&start, "start", "", "start, RFC 3339 or YYYY-MM-DD")
	createCmd.Flags().StringVar(&end, "end", "", "end, RFC 3339 or YYYY-MM-DD")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "description")
	createCmd.Flags().StringVar(&textColor, "color", "", "display colour")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("start")
	_ = createCmd.MarkFlagRequired("end")
}
