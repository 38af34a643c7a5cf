package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/model"
)

// ListStaffCmd creates the listStaff command
func ListStaffCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listStaff",
		Short: "List all staff from the staff directory sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("listStaff command")

			staff, err := app.SheetsClient.ListStaff(app.Cfg)
			if err != nil {
				return fmt.Errorf("failed to list staff: %w", err)
			}

			app.Logger.Info("Staff fetched successfully", zap.Int("count", len(staff)))

			printStaff(os.Stdout, staff)
			return nil
		},
	}
}

func printStaff(w io.Writer, staff []model.Staff) {
	fmt.Fprintf(w, "\nFound %d staff:\n\n", len(staff))
	for _, s := range staff {
		extra := ""
		if s.Restriction != nil {
			extra = fmt.Sprintf(" [Only: %s]", s.Restriction.Label())
		}
		if s.ExternalID != "" {
			extra += fmt.Sprintf(" [No. %s]", s.ExternalID)
		}
		fmt.Fprintf(w, "- %s (%s) - %s - prefers %s%s\n",
			s.Name,
			s.ID,
			s.Role,
			s.Preference.Shift().Label(),
			extra,
		)
	}
	fmt.Fprintln(w)
}
