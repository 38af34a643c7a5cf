package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/optimizer/constraints"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
	"github.com/kiddos/scheduler/pkg/db"
	"github.com/kiddos/scheduler/pkg/metrics"
)

// OptimizeStore defines the database operations needed to optimise a period
type OptimizeStore interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
	GetRequirements(ctx context.Context, periodID string) ([]db.Requirement, error)
	GetRequests(ctx context.Context, periodID string) ([]db.Request, error)
	GetRoster(ctx context.Context, periodID string) ([]db.RosterCell, error)
	ReplaceRoster(ctx context.Context, periodID string, cells []db.RosterCell) error
	InsertRun(ctx context.Context, run *db.OptimizationRun) error
	TryLockPeriod(ctx context.Context, periodID string) (unlock func(), ok bool, err error)
}

// OptimizeOptions control a single run
type OptimizeOptions struct {
	DryRun      bool
	ForceCommit bool
	// WorkDays and DaysOff override the configured window when set
	WorkDays *int
	DaysOff  *int
}

// OptimizeResult represents the result of optimising a period
type OptimizeResult struct {
	RunID    string
	Calendar calendar.Period
	Outcome  *optimizer.Outcome
	// Names maps staff IDs to display names
	Names     map[string]string
	Committed bool
	// MissingCarryover lists staff absent from the previous roster
	MissingCarryover []string
}

// Success reports whether the roster exists and satisfies every hard
// constraint
func (r *OptimizeResult) Success() bool {
	return r.Outcome != nil && r.Outcome.Success()
}

// OptimizeRoster solves the roster of a month. The solved roster replaces the
// committed one when it is valid, or when forceCommit is set, unless this is
// a dry run. Every solve is recorded in the run history.
func OptimizeRoster(
	ctx context.Context,
	database OptimizeStore,
	directory StaffDirectory,
	backend solver.Backend,
	recorder *metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
	opts OptimizeOptions,
) (*OptimizeResult, error) {
	logger.Debug("Starting optimizeRoster",
		zap.String("month", month),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force_commit", opts.ForceCommit))

	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return nil, err
	}

	unlock, ok, err := database.TryLockPeriod(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock period: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOptimizationInProgress, cal)
	}
	defer unlock()

	// Step 1: parameters
	params := cfg.Params()
	if opts.WorkDays != nil {
		params.WorkDayConstrain = *opts.WorkDays
	}
	if opts.DaysOff != nil {
		params.DayOffConstrain = *opts.DaysOff
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", optimizer.ErrInvalidInput, err)
	}

	// Step 2: input
	in, err := loadInput(ctx, database, directory, cfg, logger, period, cal)
	if err != nil {
		return nil, err
	}
	in.Params = params

	// Step 3: carryover from the previous month's committed roster
	missing, err := loadCarryover(ctx, database, logger, in, cal)
	if err != nil {
		return nil, err
	}

	// Step 4: solve
	startedAt := time.Now()
	outcome, err := optimizer.Optimize(ctx, backend, in, optimizer.Config{
		Constraints: constraints.Default(params),
		TimeBudget:  cfg.TimeBudget(),
	}, logger)
	if err != nil {
		return nil, err
	}

	result := &OptimizeResult{
		RunID:            uuid.New().String(),
		Calendar:         cal,
		Outcome:          outcome,
		Names:            staffNames(in),
		MissingCarryover: missing,
	}
	result.Committed = outcome.Materialized() && !opts.DryRun && (outcome.Success() || opts.ForceCommit)

	// Step 5: history, then roster (cells reference the run)
	run := &db.OptimizationRun{
		ID:         result.RunID,
		PeriodID:   period.ID,
		Backend:    backend.Name(),
		Status:     outcome.Status.String(),
		Objective:  outcome.Objective,
		Conflicts:  outcome.Stats.Conflicts,
		Branches:   outcome.Stats.Branches,
		WallTimeMs: outcome.Stats.WallTime.Milliseconds(),
		Variables:  outcome.Variables,
		RowCount:   outcome.Rows,
		Violations: len(outcome.Violations),
		Committed:  result.Committed,
		StartedAt:  startedAt,
	}
	if err := database.InsertRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record optimization run: %w", err)
	}

	if result.Committed {
		cells := rosterToCells(period.ID, result.RunID, outcome.Roster, result.Names)
		if err := database.ReplaceRoster(ctx, period.ID, cells); err != nil {
			return nil, fmt.Errorf("failed to save roster: %w", err)
		}
		logger.Info("Roster committed", zap.String("run_id", result.RunID), zap.Int("cells", len(cells)))
	} else {
		logger.Info("Roster not committed",
			zap.String("status", outcome.Status.String()),
			zap.Int("violations", len(outcome.Violations)),
			zap.Bool("dry_run", opts.DryRun))
	}

	recorder.ObserveRun(metrics.Run{
		Period:     cal.String(),
		Backend:    backend.Name(),
		Status:     outcome.Status,
		Objective:  outcome.Objective,
		Stats:      outcome.Stats,
		Violations: len(outcome.Violations),
		Committed:  result.Committed,
	})
	if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("Failed to export metrics", zap.Error(err))
	}

	return result, nil
}

// loadCarryover fills in.Carryover from the previous month's roster. A
// previous month that was never defined or never committed gives zeros.
func loadCarryover(ctx context.Context, database OptimizeStore, logger *zap.Logger, in *scheduling.Input, cal calendar.Period) ([]string, error) {
	prevCal := cal.Previous()
	previous := map[string][]model.Label{}

	prev, err := database.GetPeriod(ctx, prevCal.String())
	switch {
	case errors.Is(err, db.ErrNotFound):
		logger.Info("No previous period, starting without carryover", zap.String("previous", prevCal.String()))
	case err != nil:
		return nil, fmt.Errorf("failed to fetch previous period: %w", err)
	default:
		roster, err := loadRoster(ctx, database, prev, prevCal)
		if errors.Is(err, ErrNoRoster) {
			logger.Info("Previous period has no roster, starting without carryover", zap.String("previous", prevCal.String()))
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load previous roster: %w", err)
		}
		previous = roster.CellsByStaff()
	}

	carryover, missing := scheduling.BuildCarryover(in.Staff, previous, in.Params.WorkDayConstrain)
	in.Carryover = carryover

	if len(previous) > 0 {
		for _, id := range missing {
			logger.Warn("Staff missing from previous roster, assuming no carryover", zap.String("staff_id", id))
		}
		return missing, nil
	}
	return nil, nil
}

func staffNames(in *scheduling.Input) map[string]string {
	names := make(map[string]string, len(in.Staff)+1)
	for _, s := range in.Staff {
		names[s.ID] = s.Name
	}
	if in.Leader != nil {
		names[in.Leader.ID] = in.Leader.Name
	}
	return names
}

// rosterToCells flattens a roster, leader row last
func rosterToCells(periodID, runID string, roster *optimizer.Roster, names map[string]string) []db.RosterCell {
	rows := append([]optimizer.RosterRow(nil), roster.Rows...)
	if roster.Leader != nil {
		rows = append(rows, *roster.Leader)
	}

	var cells []db.RosterCell
	for i, row := range rows {
		for d, label := range row.Cells {
			cells = append(cells, db.RosterCell{
				PeriodID:  periodID,
				RunID:     runID,
				StaffID:   row.StaffID,
				StaffName: names[row.StaffID],
				RowIndex:  i,
				Day:       d + 1,
				Code:      string(label),
			})
		}
	}
	return cells
}
