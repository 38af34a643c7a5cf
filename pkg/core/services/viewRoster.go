package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/db"
)

// ViewRosterStore defines the database operations needed to view a roster
type ViewRosterStore interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
	GetRequirements(ctx context.Context, periodID string) ([]db.Requirement, error)
	GetRequests(ctx context.Context, periodID string) ([]db.Request, error)
	GetRoster(ctx context.Context, periodID string) ([]db.RosterCell, error)
	GetRuns(ctx context.Context, periodID string) ([]db.OptimizationRun, error)
}

// RosterView is a committed roster with its diagnostics and run history.
// Roster is nil when nothing has been committed yet.
type RosterView struct {
	Roster       *StoredRoster
	Highlights   optimizer.Highlights
	Requirements []scheduling.Headcount
	Runs         []db.OptimizationRun
}

// ViewRoster loads the committed roster of a month and flags unhonoured
// day-off requests and overstaffed cells
func ViewRoster(ctx context.Context, database ViewRosterStore, logger *zap.Logger, month string) (*RosterView, error) {
	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return nil, err
	}

	runs, err := database.GetRuns(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch optimization runs: %w", err)
	}
	view := &RosterView{Runs: runs}

	roster, err := loadRoster(ctx, database, period, cal)
	if errors.Is(err, ErrNoRoster) {
		logger.Info("No roster committed yet", zap.String("month", cal.String()), zap.Int("runs", len(runs)))
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.Roster = roster

	days := cal.DaysInMonth()
	storedReqs, err := database.GetRequirements(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requirements: %w", err)
	}
	view.Requirements, err = requirementsFromDB(storedReqs, days)
	if err != nil {
		return nil, err
	}

	storedRequests, err := database.GetRequests(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	grid, err := requestGrid(storedRequests, days)
	if err != nil {
		return nil, err
	}

	in := &scheduling.Input{
		Period:        cal,
		CommonDaysOff: period.CommonDaysOff,
		Requirements:  view.Requirements,
		Requests:      grid,
	}
	view.Highlights = optimizer.Highlight(in, roster.optimizerRoster())

	logger.Debug("Roster loaded",
		zap.String("month", cal.String()),
		zap.Int("rows", len(roster.Rows)),
		zap.Int("unhonored_days_off", len(view.Highlights.UnhonoredDaysOff)),
		zap.Int("overstaffed", len(view.Highlights.Overstaffed)))

	return view, nil
}

// optimizerRoster converts the stored rows, keeping the leader apart
func (r *StoredRoster) optimizerRoster() *optimizer.Roster {
	out := &optimizer.Roster{Period: r.Calendar}
	for _, row := range r.Rows {
		rr := optimizer.RosterRow{StaffID: row.StaffID, Cells: row.Cells, DaysOff: row.DaysOff}
		if row.Leader {
			out.Leader = &rr
			continue
		}
		out.Rows = append(out.Rows, rr)
	}
	return out
}
