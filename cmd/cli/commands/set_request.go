package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/services"
)

// SetRequestCmd creates the setRequest command
func SetRequestCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setRequest <YYYY-MM> <staff_id> <days> [code]",
		Short: "Set a request code (PH, DAY, 4N, WW, FF, SS) on days such as 1,3,5-7; omit code to clear",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := parseDays(args[2])
			if err != nil {
				return err
			}
			code := ""
			if len(args) > 3 {
				code = args[3]
			}

			result, err := services.SetRequest(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, args[0], args[1], days, code)
			if err != nil {
				return err
			}

			// Display results
			if result.Code == "" {
				fmt.Printf("\n✓ Cleared %d day(s) for %s\n", len(result.Days), result.StaffID)
			} else {
				fmt.Printf("\n✓ Set %s on %d day(s) for %s\n", result.Code, len(result.Days), result.StaffID)
			}

			if len(result.Requirements) > 0 {
				fmt.Printf("\nLeader requirements recomputed:\n")
				recomputed := make([]int, 0, len(result.Requirements))
				for day := range result.Requirements {
					recomputed = append(recomputed, day)
				}
				sort.Ints(recomputed)
				for _, day := range recomputed {
					fmt.Printf("  Day %2d: %s\n", day, formatHeadcount(result.Requirements[day]))
				}
			}
			fmt.Println()

			return nil
		},
	}
}

// SetRequirementCmd creates the setRequirement command
func SetRequirementCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setRequirement <YYYY-MM> <day> <shift> <headcount>",
		Short: "Override the minimum headcount of a shift on one day",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("day must be a number: %w", err)
			}
			headcount, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("headcount must be a number: %w", err)
			}

			app.Logger.Debug("setRequirement command",
				zap.String("month", args[0]),
				zap.Int("day", day),
				zap.String("shift", args[2]),
				zap.Int("headcount", headcount))

			if err := services.SetRequirement(app.Ctx, app.Database, app.Logger, args[0], day, args[2], headcount); err != nil {
				return err
			}

			fmt.Printf("\n✓ Day %d %s requirement set to %d\n\n", day, args[2], headcount)
			return nil
		},
	}
}
