package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/solver"
	"github.com/kiddos/scheduler/pkg/core/solver/solvertest"
	"github.com/kiddos/scheduler/pkg/db"
	"github.com/kiddos/scheduler/pkg/metrics"
)

func TestOptimizeRoster_Success(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	cfg.MetricsFile = filepath.Join(t.TempDir(), "scheduler.prom")
	period := seedJune(t, store, dir, cfg)

	result, err := OptimizeRoster(ctx, store, dir, &solvertest.Backend{}, metrics.NewRecorder(), cfg, zap.NewNop(), "2024-06", OptimizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, solver.StatusOptimal, result.Outcome.Status)
	assert.True(t, result.Success(), "violations: %v", result.Outcome.Violations)
	assert.True(t, result.Committed)
	assert.Empty(t, result.MissingCarryover)
	assert.Equal(t, "Alice", result.Names["a"])

	roster := result.Outcome.Roster
	assert.Equal(t, 2, roster.Count(5, model.ShiftDay), "leader off on day 5 needs an extra DAY")
	assert.Equal(t, model.LabelDayOffB, roster.Row("a").Cell(3))

	// History
	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, period.ID, run.PeriodID)
	assert.Equal(t, "solvertest", run.Backend)
	assert.Equal(t, "OPTIMAL", run.Status)
	assert.True(t, run.Committed)
	assert.Equal(t, 180, run.Variables)

	// Roster: two staff rows then the leader
	cells := store.roster[period.ID]
	require.Len(t, cells, 90)
	for _, c := range cells {
		assert.Equal(t, result.RunID, c.RunID)
		if c.StaffID == "lead" {
			assert.Equal(t, 2, c.RowIndex)
			assert.Equal(t, "Leader", c.StaffName)
		}
	}

	assert.Empty(t, store.locks, "lock released")

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `scheduler_optimization_runs_total{backend="solvertest",status="OPTIMAL"} 1`)
}

func TestOptimizeRoster_DryRun(t *testing.T) {
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	period := seedJune(t, store, dir, cfg)

	result, err := OptimizeRoster(context.Background(), store, dir, &solvertest.Backend{}, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.False(t, result.Committed)
	assert.Empty(t, store.roster[period.ID])
	require.Len(t, store.runs, 1, "dry runs are still recorded")
	assert.False(t, store.runs[0].Committed)
}

func TestOptimizeRoster_NoSolution(t *testing.T) {
	for _, status := range []solver.Status{solver.StatusInfeasible, solver.StatusUnknown, solver.StatusModelInvalid} {
		t.Run(status.String(), func(t *testing.T) {
			store := newMockStore()
			dir := testDirectory()
			cfg := testConfig()
			period := seedJune(t, store, dir, cfg)
			backend := &solvertest.Backend{Script: solvertest.Returns(status, solver.Stats{Conflicts: 3, Branches: 9})}

			result, err := OptimizeRoster(context.Background(), store, dir, backend, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{ForceCommit: true})
			require.NoError(t, err)

			assert.False(t, result.Committed, "nothing to commit without a solution")
			assert.Nil(t, result.Outcome.Roster)
			assert.Empty(t, store.roster[period.ID])
			require.Len(t, store.runs, 1)
			assert.Equal(t, status.String(), store.runs[0].Status)
			assert.Equal(t, int64(3), store.runs[0].Conflicts)
			assert.Equal(t, int64(9), store.runs[0].Branches)
		})
	}
}

func TestOptimizeRoster_NoSolutionKeepsCommittedRoster(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	period := seedJune(t, store, dir, cfg)

	first, err := OptimizeRoster(ctx, store, dir, &solvertest.Backend{}, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{})
	require.NoError(t, err)
	require.True(t, first.Committed)
	before := append([]db.RosterCell(nil), store.roster[period.ID]...)
	require.Len(t, before, 90)

	backend := &solvertest.Backend{Script: solvertest.Returns(solver.StatusInfeasible, solver.Stats{})}
	result, err := OptimizeRoster(ctx, store, dir, backend, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{ForceCommit: true})
	require.NoError(t, err)

	assert.False(t, result.Committed)
	if diff := cmp.Diff(before, store.roster[period.ID]); diff != "" {
		t.Errorf("committed roster changed (-before +after):\n%s", diff)
	}
	require.Len(t, store.runs, 2)
	assert.Equal(t, first.RunID, store.roster[period.ID][0].RunID)
}

func TestOptimizeRoster_Violations(t *testing.T) {
	// Every shift variable false: all days off, so coverage fails
	script := solvertest.Assigns(solver.StatusFeasible, solver.Stats{}, func(string) bool { return false })

	t.Run("not committed", func(t *testing.T) {
		store := newMockStore()
		dir := testDirectory()
		cfg := testConfig()
		period := seedJune(t, store, dir, cfg)

		result, err := OptimizeRoster(context.Background(), store, dir, &solvertest.Backend{Script: script}, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{})
		require.NoError(t, err)

		assert.False(t, result.Success())
		assert.NotEmpty(t, result.Outcome.Violations)
		assert.False(t, result.Committed)
		assert.Empty(t, store.roster[period.ID])
		assert.Equal(t, len(result.Outcome.Violations), store.runs[0].Violations)
	})

	t.Run("force commit", func(t *testing.T) {
		store := newMockStore()
		dir := testDirectory()
		cfg := testConfig()
		period := seedJune(t, store, dir, cfg)

		result, err := OptimizeRoster(context.Background(), store, dir, &solvertest.Backend{Script: script}, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{ForceCommit: true})
		require.NoError(t, err)

		assert.False(t, result.Success())
		assert.True(t, result.Committed)
		assert.Len(t, store.roster[period.ID], 90)
		assert.True(t, store.runs[0].Committed)
	})
}

func TestOptimizeRoster_CarryoverFromPreviousRoster(t *testing.T) {
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	seedJune(t, store, dir, cfg)

	// May 2024: Alice worked the final six days, Bob is not on the roster
	may := &db.Period{ID: "11111111-1111-1111-1111-111111111111", Month: "2024-05", CommonDaysOff: make([]bool, 31)}
	store.periods["2024-05"] = may
	for day := 1; day <= 31; day++ {
		code := "WW"
		if day >= 26 {
			code = "DAY"
		}
		store.roster[may.ID] = append(store.roster[may.ID], db.RosterCell{
			PeriodID: may.ID, RunID: "run-may", StaffID: "a", StaffName: "Alice", Day: day, Code: code,
		})
	}

	backend := &solvertest.Backend{Script: solvertest.Returns(solver.StatusInfeasible, solver.Stats{})}
	result, err := OptimizeRoster(context.Background(), store, dir, backend, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, result.MissingCarryover)

	m := backend.Last()
	rowsA := m.ConstraintsWithPrefix("carryover/a/")
	require.Len(t, rowsA, 6)
	for k, row := range rowsA {
		assert.Equal(t, k, row.Bound, "window ending on day %d", k+1)
	}
	for _, row := range m.ConstraintsWithPrefix("carryover/b/") {
		assert.Equal(t, 6, row.Bound)
	}
}

func TestOptimizeRoster_Overrides(t *testing.T) {
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	seedJune(t, store, dir, cfg)
	backend := &solvertest.Backend{Script: solvertest.Returns(solver.StatusInfeasible, solver.Stats{})}
	workDays, daysOff := 5, 2

	_, err := OptimizeRoster(context.Background(), store, dir, backend, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{WorkDays: &workDays, DaysOff: &daysOff})
	require.NoError(t, err)

	windows := backend.Last().ConstraintsWithPrefix("window/a/")
	require.Len(t, windows, 26)
	assert.Equal(t, 3, windows[0].Bound)

	daysOff = 6
	_, err = OptimizeRoster(context.Background(), store, dir, backend, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{WorkDays: &workDays, DaysOff: &daysOff})
	assert.ErrorIs(t, err, optimizer.ErrInvalidInput)
}

func TestOptimizeRoster_Errors(t *testing.T) {
	t.Run("undefined month", func(t *testing.T) {
		_, err := OptimizeRoster(context.Background(), newMockStore(), testDirectory(), &solvertest.Backend{}, nil, testConfig(), zap.NewNop(), "2024-06", OptimizeOptions{})
		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})

	t.Run("locked by another process", func(t *testing.T) {
		store := newMockStore()
		period := seedJune(t, store, testDirectory(), testConfig())
		store.locks[period.ID] = true
		backend := &solvertest.Backend{}

		_, err := OptimizeRoster(context.Background(), store, testDirectory(), backend, nil, testConfig(), zap.NewNop(), "2024-06", OptimizeOptions{})

		assert.ErrorIs(t, err, ErrOptimizationInProgress)
		assert.Nil(t, backend.Last(), "no model is built")
		assert.Empty(t, store.runs)
	})

	t.Run("backend failure", func(t *testing.T) {
		store := newMockStore()
		seedJune(t, store, testDirectory(), testConfig())
		backend := &solvertest.Backend{Script: solvertest.Fails(errors.New("out of memory"))}

		_, err := OptimizeRoster(context.Background(), store, testDirectory(), backend, nil, testConfig(), zap.NewNop(), "2024-06", OptimizeOptions{})

		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "out of memory"))
		assert.Empty(t, store.locks, "lock released on failure")
	})

	t.Run("run record failure", func(t *testing.T) {
		store := newMockStore()
		period := seedJune(t, store, testDirectory(), testConfig())
		store.insertRunErr = errors.New("disk full")

		_, err := OptimizeRoster(context.Background(), store, testDirectory(), &solvertest.Backend{}, nil, testConfig(), zap.NewNop(), "2024-06", OptimizeOptions{})

		require.Error(t, err)
		assert.Empty(t, store.roster[period.ID], "roster cells need a recorded run")
	})
}
