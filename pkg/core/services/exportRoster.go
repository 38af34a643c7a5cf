package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// ExportRoster writes the committed roster of a month as CSV: one row per
// person with staff ID, name, one column per day and the days-off total
func ExportRoster(ctx context.Context, database PublishRosterStore, logger *zap.Logger, month string, w io.Writer) error {
	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return err
	}

	roster, err := loadRoster(ctx, database, period, cal)
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)

	header := []string{"Staff ID", "Name"}
	for day := 1; day <= cal.DaysInMonth(); day++ {
		header = append(header, cal.DayHeader(day))
	}
	header = append(header, "Days off")
	if err := out.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range roster.Rows {
		record := []string{row.StaffID, row.Name}
		for _, l := range row.Cells {
			record = append(record, string(l))
		}
		record = append(record, strconv.Itoa(row.DaysOff))
		if err := out.Write(record); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", row.StaffID, err)
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	logger.Debug("Roster exported", zap.String("month", cal.String()), zap.Int("rows", len(roster.Rows)))
	return nil
}
