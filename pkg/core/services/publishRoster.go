package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/db"
)

// PublishRosterStore defines the database operations needed for publishing
type PublishRosterStore interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
	GetRoster(ctx context.Context, periodID string) ([]db.RosterCell, error)
}

// PublishRoster writes the committed roster of a month to the roster
// spreadsheet's "Roster YYYY-MM" tab. Staff numbers come from the directory,
// falling back to the staff ID.
func PublishRoster(
	ctx context.Context,
	database PublishRosterStore,
	directory StaffDirectory,
	publisher RosterPublisher,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
) (*sheetsclient.PublishedRoster, error) {
	if cfg.RosterSheetID == "" {
		return nil, fmt.Errorf("rosterSheetID is not configured")
	}

	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return nil, err
	}

	roster, err := loadRoster(ctx, database, period, cal)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetching staff directory")
	staff, err := directory.ListStaff(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}

	published := &sheetsclient.PublishedRoster{Month: cal.String()}
	for day := 1; day <= cal.DaysInMonth(); day++ {
		published.DayHeaders = append(published.DayHeaders, cal.DayHeader(day))
	}

	for _, row := range roster.Rows {
		number := row.StaffID
		name := row.Name
		if s := findStaff(staff, row.StaffID); s != nil {
			if s.ExternalID != "" {
				number = s.ExternalID
			}
			if name == "" {
				name = s.Name
			}
		} else {
			logger.Warn("Rostered staff not in directory", zap.String("staff_id", row.StaffID))
		}

		cells := make([]string, len(row.Cells))
		for i, l := range row.Cells {
			cells[i] = string(l)
		}
		published.Rows = append(published.Rows, sheetsclient.PublishedRosterRow{
			StaffNumber: number,
			Name:        name,
			Cells:       cells,
			DaysOff:     row.DaysOff,
		})
	}

	logger.Info("Publishing roster",
		zap.String("month", cal.String()),
		zap.String("tab", sheetsclient.RosterTabTitle(cal.String())),
		zap.Int("rows", len(published.Rows)))

	if err := publisher.PublishRoster(cfg.RosterSheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish roster: %w", err)
	}

	return published, nil
}
