package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/felixgeelhaar/carecal/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the store and broker connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		result := app.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status: %s\n", result.Status)
		for _, name := range slices.Sorted(maps.Keys(result.Checks)) {
			check := result.Checks[name]
			if check.Message != "" {
				fmt.Fprintf(out, "  %-10s %s (%s)\n", name, check.Status, check.Message)
				continue
			}
			fmt.Fprintf(out, "  %-10s %s\n", name, check.Status)
		}
		if result.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
