// Package metrics records optimisation statistics in a Prometheus registry.
// The CLI has no HTTP surface, so the registry is exported as a node-exporter
// textfile after each run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kiddos/scheduler/pkg/core/solver"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	solveTime   *prometheus.HistogramVec
	objective   *prometheus.GaugeVec
	conflicts   *prometheus.GaugeVec
	branches    *prometheus.GaugeVec
	violations  *prometheus.GaugeVec
	commitTotal *prometheus.CounterVec
}

// Run is what one optimisation run reports.
type Run struct {
	Period     string
	Backend    string
	Status     solver.Status
	Objective  float64
	Stats      solver.Stats
	Violations int
	Committed  bool
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_optimization_runs_total",
		Help: "Total number of optimisation runs by solver status",
	}, []string{"backend", "status"})

	solveTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_solve_duration_seconds",
		Help:    "Wall time of solver searches",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"backend"})

	objective := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_objective",
		Help: "Objective value of the last run of a period",
	}, []string{"period"})

	conflicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_solver_conflicts",
		Help: "Conflicts reported by the solver for the last run of a period",
	}, []string{"period"})

	branches := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_solver_branches",
		Help: "Branches reported by the solver for the last run of a period",
	}, []string{"period"})

	violations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_roster_violations",
		Help: "Hard constraint violations found in the last roster of a period",
	}, []string{"period"})

	commitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_roster_commits_total",
		Help: "Total number of rosters written to the store",
	}, []string{"period"})

	registry.MustRegister(runsTotal, solveTime, objective, conflicts, branches, violations, commitTotal)

	return &Recorder{
		registry:    registry,
		runsTotal:   runsTotal,
		solveTime:   solveTime,
		objective:   objective,
		conflicts:   conflicts,
		branches:    branches,
		violations:  violations,
		commitTotal: commitTotal,
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records a finished optimisation run.
func (r *Recorder) ObserveRun(run Run) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(run.Backend, run.Status.String()).Inc()
	r.solveTime.WithLabelValues(run.Backend).Observe(run.Stats.WallTime.Seconds())
	r.conflicts.WithLabelValues(run.Period).Set(float64(run.Stats.Conflicts))
	r.branches.WithLabelValues(run.Period).Set(float64(run.Stats.Branches))
	r.violations.WithLabelValues(run.Period).Set(float64(run.Violations))
	if run.Status.HasSolution() {
		r.objective.WithLabelValues(run.Period).Set(run.Objective)
	}
	if run.Committed {
		r.commitTotal.WithLabelValues(run.Period).Inc()
	}
}

// WriteTextfile writes the registry in the Prometheus text format. An empty
// path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
