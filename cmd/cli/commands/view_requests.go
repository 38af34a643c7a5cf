package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/services"
)

// ViewRequestsCmd creates the viewRequests command
func ViewRequestsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewRequests <YYYY-MM>",
		Short: "View the request grid, requirements and short days of a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.ViewRequests(app.Ctx, app.Database, app.SheetsClient, app.Cfg, app.Logger, args[0])
			if err != nil {
				return err
			}

			printRequestsView(os.Stdout, view)
			return nil
		},
	}
}

// requestColor colors day-off requests green and shift requests yellow
func requestColor(label model.Label) string {
	switch {
	case label.IsDayOff():
		return colorGreen
	case label.IsShift():
		return colorYellow
	}
	return ""
}

func printRequestsView(w io.Writer, view *services.RequestsView) {
	fmt.Fprintf(w, "\n%sRequests for %s%s (%d common days off)\n\n", colorBold, view.Calendar, colorReset, view.TotalCommonDaysOff)

	rows := make([]gridRow, 0, len(view.Staff)+1)
	addRow := func(sr services.StaffRequests, name string) {
		cells := sr.Cells
		rows = append(rows, gridRow{
			Name:    name,
			Cells:   cells,
			DaysOff: sr.DaysOff,
			Color: func(day int) string {
				if day > len(cells) {
					return ""
				}
				return requestColor(cells[day-1])
			},
		})
	}
	for _, sr := range view.Staff {
		addRow(sr, sr.Staff.Name)
	}
	if view.Leader != nil {
		addRow(*view.Leader, view.Leader.Staff.Name+" *")
	}

	nameColWidth := printGrid(w, view.Calendar, view.CommonDaysOff, rows)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Requirements:\n")
	for _, shift := range model.ShiftTypes {
		fmt.Fprintf(w, "%-*s", nameColWidth, "  "+string(shift.Label()))
		for _, req := range view.Requirements {
			fmt.Fprintf(w, "%-*d", cellWidth, req.Of(shift))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	if view.Leader != nil {
		fmt.Fprintf(w, "* leader, not scheduled by the optimizer\n")
	}
	fmt.Fprintf(w, "Legend: %sday off%s  %sshift%s\n", colorGreen, colorReset, colorYellow, colorReset)

	if len(view.ShortDays) > 0 {
		fmt.Fprintf(w, "\n⚠️  Fewer people available than required on day(s): %v\n", view.ShortDays)
	}
	fmt.Fprintln(w)
}
