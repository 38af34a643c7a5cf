package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/services"
	"github.com/kiddos/scheduler/pkg/db"
)

// ViewRosterCmd creates the viewRoster command
func ViewRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewRoster <YYYY-MM>",
		Short: "View the committed roster of a period with highlights and run history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.ViewRoster(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			printRosterView(os.Stdout, view)
			return nil
		},
	}
}

// rosterLine is a roster row ready for display
type rosterLine struct {
	StaffID string
	Name    string
	Cells   []model.Label
	DaysOff int
	Leader  bool
}

func storedRows(roster *services.StoredRoster) []rosterLine {
	lines := make([]rosterLine, 0, len(roster.Rows))
	for _, row := range roster.Rows {
		lines = append(lines, rosterLine{StaffID: row.StaffID, Name: row.Name, Cells: row.Cells, DaysOff: row.DaysOff, Leader: row.Leader})
	}
	return lines
}

// printRoster prints roster lines with unhonoured day-off requests in red and
// overstaffed cells in yellow
func printRoster(w io.Writer, cal calendar.Period, commonDaysOff []bool, lines []rosterLine, highlights optimizer.Highlights) {
	rows := make([]gridRow, 0, len(lines))
	hasLeader := false
	for _, line := range lines {
		name := line.Name
		if name == "" {
			name = line.StaffID
		}
		if line.Leader {
			name += " *"
			hasLeader = true
		}

		staffID := line.StaffID
		rows = append(rows, gridRow{
			Name:    name,
			Cells:   line.Cells,
			DaysOff: line.DaysOff,
			Color: func(day int) string {
				return highlightColor(highlights.IsUnhonored(staffID, day), highlights.IsOverstaffed(staffID, day))
			},
		})
	}

	printGrid(w, cal, commonDaysOff, rows)

	fmt.Fprintln(w)
	if hasLeader {
		fmt.Fprintf(w, "* leader, not scheduled by the optimizer\n")
	}
	fmt.Fprintf(w, "Legend: %sday off not honoured%s  %soverstaffed%s\n", colorRed, colorReset, colorYellow, colorReset)
}

func printRosterView(w io.Writer, view *services.RosterView) {
	if view.Roster == nil {
		fmt.Fprintf(w, "\nNo roster committed yet.\n")
	} else {
		roster := view.Roster
		fmt.Fprintf(w, "\n%sRoster for %s%s (run %s)\n\n", colorBold, roster.Calendar, colorReset, roster.RunID)
		printRoster(w, roster.Calendar, roster.Period.CommonDaysOff, storedRows(roster), view.Highlights)

		fmt.Fprintf(w, "\n%d day-off request(s) not honoured, %d overstaffed cell(s)\n",
			len(view.Highlights.UnhonoredDaysOff), len(view.Highlights.Overstaffed))
	}

	printRuns(w, view.Runs)
	fmt.Fprintln(w)
}

func printRuns(w io.Writer, runs []db.OptimizationRun) {
	if len(runs) == 0 {
		return
	}

	fmt.Fprintf(w, "\nRun history:\n")
	fmt.Fprintf(w, "  %-20s %-8s %-10s %10s %10s %5s  %s\n", "Started", "Backend", "Status", "Objective", "Time", "Viol", "Committed")
	for _, run := range runs {
		committed := ""
		if run.Committed {
			committed = colorGreen + "✓" + colorReset
		}
		fmt.Fprintf(w, "  %-20s %-8s %-10s %10.0f %9dms %5d  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Backend,
			run.Status,
			run.Objective,
			run.WallTimeMs,
			run.Violations,
			committed)
	}
}
