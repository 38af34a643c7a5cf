package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/services"
)

// OptimizeCmd creates the optimize command
func OptimizeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize <YYYY-MM>",
		Short: "Solve the roster of a period and commit it when valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := calendar.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			month := cal.String()

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")
			background, _ := cmd.Flags().GetBool("background")
			workDays, _ := cmd.Flags().GetInt("work-days")
			daysOff, _ := cmd.Flags().GetInt("days-off")

			opts := services.OptimizeOptions{
				DryRun:      dryRun,
				ForceCommit: forceCommit,
				WorkDays:    optionalInt(cmd.Flags().Changed("work-days"), workDays),
				DaysOff:     optionalInt(cmd.Flags().Changed("days-off"), daysOff),
			}

			run := func(ctx context.Context) error {
				result, err := services.OptimizeRoster(ctx, app.Database, app.SheetsClient, app.Backend, app.Metrics, app.Cfg, app.Logger, month, opts)
				if err != nil {
					return err
				}
				if background {
					app.Logger.Info("Background optimization finished",
						zap.String("month", month),
						zap.String("run_id", result.RunID),
						zap.String("status", result.Outcome.Status.String()),
						zap.Bool("committed", result.Committed))
					return nil
				}
				printOptimizeResult(os.Stdout, result, opts)
				return nil
			}

			if background {
				if err := app.Runner.Go(app.Ctx, month, run); err != nil {
					return err
				}
				fmt.Printf("\n⏳ Optimizing %s in the background (check with optimizeStatus %s)\n\n", month, month)
				return nil
			}

			fmt.Printf("\n⏳ Optimizing %s with %s (budget %s)...\n", month, app.Backend.Name(), app.Cfg.TimeBudget())
			return app.Runner.Run(app.Ctx, month, run)
		},
	}

	cmd.Flags().Bool("dry-run", false, "Solve without committing the roster")
	cmd.Flags().Bool("force-commit", false, "Commit the roster even when it violates constraints")
	cmd.Flags().Bool("background", false, "Run the solve in the background (interactive sessions)")
	cmd.Flags().Int("work-days", 0, "Override the maximum consecutive work days")
	cmd.Flags().Int("days-off", 0, "Override the minimum days off per window")

	return cmd
}

// OptimizeStatusCmd creates the optimizeStatus command
func OptimizeStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "optimizeStatus <YYYY-MM>",
		Short: "Show whether an optimization of the period is running in this session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := calendar.ParsePeriod(args[0])
			if err != nil {
				return err
			}

			if app.Runner.Busy(cal.String()) {
				fmt.Printf("\n⏳ %s is being optimized\n\n", cal)
			} else {
				fmt.Printf("\n✓ No optimization of %s is running (see viewRoster %s for results)\n\n", cal, cal)
			}
			return nil
		},
	}
}

// formatViolation names the constraint, the staff member and the day a
// violation is about, when it has them.
func formatViolation(v optimizer.Violation, names map[string]string) string {
	var where []string
	if v.StaffID != "" {
		who := v.StaffID
		if name := names[v.StaffID]; name != "" {
			who = fmt.Sprintf("%s (%s)", name, v.StaffID)
		}
		where = append(where, who)
	}
	if v.Day > 0 {
		where = append(where, fmt.Sprintf("day %d", v.Day))
	}
	if len(where) == 0 {
		return fmt.Sprintf("[%s] %s", v.Constraint, v.Description)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Constraint, strings.Join(where, ", "), v.Description)
}

func printOptimizeResult(w io.Writer, result *services.OptimizeResult, opts services.OptimizeOptions) {
	outcome := result.Outcome

	fmt.Fprintf(w, "\n%sRun %s%s\n", colorBold, result.RunID, colorReset)
	fmt.Fprintf(w, "Status:     %s\n", outcome.Status)
	if outcome.Status.HasSolution() {
		fmt.Fprintf(w, "Objective:  %.0f\n", outcome.Objective)
	}
	fmt.Fprintf(w, "Model:      %d variables, %d rows\n", outcome.Variables, outcome.Rows)
	fmt.Fprintf(w, "Wall time:  %s\n", outcome.Stats.WallTime)
	if outcome.Stats.Conflicts > 0 || outcome.Stats.Branches > 0 {
		fmt.Fprintf(w, "Search:     %d conflicts, %d branches\n", outcome.Stats.Conflicts, outcome.Stats.Branches)
	}

	if len(outcome.ShortDays) > 0 {
		fmt.Fprintf(w, "\n⚠️  Fewer people available than required on day(s): %v\n", outcome.ShortDays)
	}
	if len(result.MissingCarryover) > 0 {
		fmt.Fprintf(w, "⚠️  No previous roster row for: %v (carryover assumed zero)\n", result.MissingCarryover)
	}
	if outcome.Ambiguous > 0 {
		fmt.Fprintf(w, "⚠️  %d staff-day(s) had more than one shift set\n", outcome.Ambiguous)
	}

	if outcome.Materialized() {
		fmt.Fprintln(w)
		printRoster(w, outcome.Roster.Period, nil, solvedRows(outcome.Roster, result.Names), outcome.Highlights)
	}

	if len(outcome.Violations) > 0 {
		fmt.Fprintf(w, "\n✗ %d constraint violation(s):\n", len(outcome.Violations))
		for _, v := range outcome.Violations {
			fmt.Fprintf(w, "  - %s\n", formatViolation(v, result.Names))
		}
	}

	fmt.Fprintln(w)
	switch {
	case result.Committed:
		fmt.Fprintf(w, "✓ Roster committed\n\n")
	case !outcome.Materialized():
		fmt.Fprintf(w, "✗ No roster found, nothing committed\n\n")
	case opts.DryRun:
		fmt.Fprintf(w, "Dry run, roster not committed\n\n")
	default:
		fmt.Fprintf(w, "✗ Roster not committed (use --force-commit to keep it anyway)\n\n")
	}
}

// solvedRows converts an optimizer roster into display rows, leader last
func solvedRows(roster *optimizer.Roster, names map[string]string) []rosterLine {
	lines := make([]rosterLine, 0, len(roster.Rows)+1)
	for _, row := range roster.Rows {
		lines = append(lines, rosterLine{StaffID: row.StaffID, Name: names[row.StaffID], Cells: row.Cells, DaysOff: row.DaysOff})
	}
	if roster.Leader != nil {
		lines = append(lines, rosterLine{StaffID: roster.Leader.StaffID, Name: names[roster.Leader.StaffID], Cells: roster.Leader.Cells, DaysOff: roster.Leader.DaysOff, Leader: true})
	}
	return lines
}
