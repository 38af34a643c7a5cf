// Package optimizer formulates the monthly roster as a 0-1 integer program,
// solves it through a solver.Backend and maps the solution back to a roster.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// DefaultTimeBudget is the wall-clock budget of a solve when none is set.
const DefaultTimeBudget = 20 * time.Second

// ErrInvalidInput is returned when the input cannot be modelled.
var ErrInvalidInput = errors.New("invalid scheduling input")

// Config selects the hard constraints and the solve budget.
type Config struct {
	Constraints []Constraint
	TimeBudget  time.Duration
}

// Outcome is the result of a run. Roster is nil unless the solver returned
// a solution (OPTIMAL or FEASIBLE).
type Outcome struct {
	Status    solver.Status
	Stats     solver.Stats
	Objective float64

	Roster     *Roster
	Violations []Violation
	Highlights Highlights

	// ShortDays are days on which fewer people are available than required.
	ShortDays []int
	// Ambiguous counts staff-days the solver set more than one shift for.
	Ambiguous int
	Variables int
	Rows      int
}

// Materialized reports whether a roster was produced.
func (o *Outcome) Materialized() bool {
	return o.Roster != nil
}

// Success reports whether the roster exists and satisfies every hard
// constraint.
func (o *Outcome) Success() bool {
	return o.Materialized() && len(o.Violations) == 0
}

// Optimize builds the model for in, solves it and materializes the result.
// Solver statuses are reported in the outcome; an error means the input was
// invalid or the backend failed.
func Optimize(ctx context.Context, backend solver.Backend, in *scheduling.Input, cfg Config, logger *zap.Logger) (*Outcome, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	budget := cfg.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}

	logger.Debug("Building model",
		zap.String("period", in.Period.String()),
		zap.Int("staff", len(in.Staff)),
		zap.Int("constraints", len(cfg.Constraints)),
		zap.String("backend", backend.Name()))

	for _, id := range in.UnknownRequestRows() {
		logger.Warn("Ignoring requests of staff not in the directory", zap.String("staff_id", id))
	}

	outcome := &Outcome{ShortDays: in.ShortDays()}
	if len(outcome.ShortDays) > 0 {
		logger.Warn("Fewer staff available than required on some days", zap.Ints("days", outcome.ShortDays))
	}

	// Step 1: variables and hard constraints
	model := backend.NewModel()
	b := NewBuilder(model, in)
	for _, c := range cfg.Constraints {
		c.Apply(b)
	}
	for family, n := range b.RowCounts() {
		logger.Debug("Constraint rows added", zap.String("constraint", family), zap.Int("rows", n))
	}
	outcome.Variables = b.Vars.Len()
	outcome.Rows = b.Rows()

	// Step 2: objective
	model.Minimize(BuildObjective(b))

	// Step 3: solve
	logger.Info("Solving",
		zap.String("period", in.Period.String()),
		zap.Int("variables", outcome.Variables),
		zap.Int("rows", outcome.Rows),
		zap.Duration("budget", budget))

	result, err := model.Solve(ctx, budget)
	if err != nil {
		return nil, fmt.Errorf("solver %s failed: %w", backend.Name(), err)
	}

	outcome.Status = result.Status
	outcome.Stats = result.Stats
	outcome.Objective = result.Objective

	logger.Info("Solve finished",
		zap.String("status", result.Status.String()),
		zap.Float64("objective", result.Objective),
		zap.Int64("conflicts", result.Stats.Conflicts),
		zap.Int64("branches", result.Stats.Branches),
		zap.Duration("wall_time", result.Stats.WallTime))

	if !result.Status.HasSolution() {
		return outcome, nil
	}

	// Step 4: materialize and verify
	outcome.Roster, outcome.Ambiguous = Materialize(in, b.Vars, result)
	if outcome.Ambiguous > 0 {
		logger.Warn("Solver assigned several shifts to the same staff-day", zap.Int("cells", outcome.Ambiguous))
	}

	for _, c := range cfg.Constraints {
		outcome.Violations = append(outcome.Violations, c.Validate(in, outcome.Roster)...)
	}
	for _, v := range outcome.Violations {
		logger.Error("Roster violates hard constraint",
			zap.String("constraint", v.Constraint),
			zap.String("staff_id", v.StaffID),
			zap.Int("day", v.Day),
			zap.String("description", v.Description))
	}

	outcome.Highlights = Highlight(in, outcome.Roster)
	return outcome, nil
}
