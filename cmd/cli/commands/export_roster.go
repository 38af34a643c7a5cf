package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiddos/scheduler/pkg/core/services"
)

// ExportRosterCmd creates the exportRoster command
func ExportRosterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportRoster <YYYY-MM>",
		Short: "Export the committed roster of a period as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := services.ExportRoster(app.Ctx, app.Database, app.Logger, args[0], w); err != nil {
				return err
			}

			if output != "" {
				fmt.Printf("\n✓ Roster exported to %s\n\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write the CSV to a file instead of stdout")

	return cmd
}
