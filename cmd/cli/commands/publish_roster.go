package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/core/services"
)

// PublishRosterCmd creates the publishRoster command
func PublishRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishRoster <YYYY-MM>",
		Short: "Publish the committed roster of a period to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("publishRoster command", zap.String("month", args[0]))

			published, err := services.PublishRoster(
				app.Ctx,
				app.Database,
				app.SheetsClient,
				app.SheetsClient,
				app.Cfg,
				app.Logger,
				args[0],
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Roster published successfully!\n\n")
			fmt.Printf("Tab:   %s\n", sheetsclient.RosterTabTitle(published.Month))
			fmt.Printf("Rows:  %d\n", len(published.Rows))
			fmt.Printf("Days:  %d\n\n", len(published.DayHeaders))

			return nil
		},
	}
}
