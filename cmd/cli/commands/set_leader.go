package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiddos/scheduler/pkg/core/services"
)

// SetLeaderCmd creates the setLeader command
func SetLeaderCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setLeader <YYYY-MM> [staff_id]",
		Short: "Change the period's leader and re-derive every day's requirements; omit staff_id to clear",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leaderID := ""
			if len(args) > 1 {
				leaderID = args[1]
			}

			result, err := services.SetLeader(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, args[0], leaderID)
			if err != nil {
				return err
			}

			// Display results
			if result.Leader != nil {
				fmt.Printf("\n✓ %s leader set to %s (%s)\n", result.Calendar, result.Leader.Name, result.Leader.ID)
			} else {
				fmt.Printf("\n✓ %s leader cleared\n", result.Calendar)
			}
			if result.PreviousLeaderID != "" {
				fmt.Printf("Previous leader: %s\n", result.PreviousLeaderID)
			}
			fmt.Printf("Requirements re-derived for %d day(s), manual overrides replaced\n", len(result.Requirements))
			for _, day := range result.AdjustedDays {
				fmt.Printf("  Day %2d: %s\n", day, formatHeadcount(result.Requirements[day-1]))
			}
			fmt.Println()

			return nil
		},
	}
}
