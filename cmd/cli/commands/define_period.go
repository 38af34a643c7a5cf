package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiddos/scheduler/pkg/core/services"
)

// DefinePeriodCmd creates the definePeriod command
func DefinePeriodCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definePeriod <YYYY-MM>",
		Short: "Define a new monthly period with its common days off and requirements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leaderID, _ := cmd.Flags().GetString("leader")

			result, err := services.DefinePeriod(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, args[0], leaderID)
			if err != nil {
				return err
			}

			// Display results
			fmt.Printf("\n✓ Period created successfully!\n\n")
			fmt.Printf("Period ID:       %s\n", result.Period.ID)
			fmt.Printf("Month:           %s (%d days)\n", result.Calendar, result.Calendar.DaysInMonth())
			fmt.Printf("Common days off: %d\n", result.CommonDaysOff)
			if result.Leader != nil {
				fmt.Printf("Leader:          %s (%s)\n", result.Leader.Name, result.Leader.ID)
			} else {
				fmt.Printf("Leader:          none\n")
			}

			fmt.Printf("Requirements:    %s per day\n\n", formatHeadcount(result.Requirements[0]))

			return nil
		},
	}

	cmd.Flags().String("leader", "", "Staff ID of the leader (defaults to the first Leader in the directory)")

	return cmd
}
