// Package glpksolver is the GLPK backend of the solver interface. Models are
// recorded in Go and handed to GLPK's branch-and-cut as a whole when solved.
package glpksolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiddos/scheduler/pkg/core/solver"
)

// ErrUnavailable is returned by Solve in binaries built without GLPK.
var ErrUnavailable = errors.New("glpk backend not available in this build")

// Backend creates GLPK models.
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "glpk"
}

func (b *Backend) NewModel() solver.Model {
	return &Model{objective: make(map[int]float64)}
}

type boundKind int

const (
	boundUpper boundKind = iota
	boundLower
	boundFixed
)

// row is a constraint with merged, non-zero coefficients. Column indices
// are zero-based here and shifted when loaded into GLPK.
type row struct {
	name  string
	cols  []int32
	coefs []float64
	kind  boundKind
	lb    float64
	ub    float64
}

// solution is what a finished GLPK run reports.
type solution struct {
	status    solver.Status
	objective float64
	values    []bool
}

// runSolve is replaced in tests.
var runSolve = solveProblem

// Model records columns, rows and objective for a single solve.
type Model struct {
	names     []string
	rows      []row
	objective map[int]float64
}

func (m *Model) NewBoolVar(name string) solver.Var {
	m.names = append(m.names, name)
	return solver.Var(len(m.names) - 1)
}

func (m *Model) AddLinearConstraint(name string, expr solver.Expr, rel solver.Relation, bound int) {
	cols, coefs := mergeTerms(expr)
	r := row{name: name, cols: cols, coefs: coefs, lb: float64(bound), ub: float64(bound)}
	switch rel {
	case solver.LessEq:
		r.kind = boundUpper
	case solver.GreaterEq:
		r.kind = boundLower
	default:
		r.kind = boundFixed
	}
	m.rows = append(m.rows, r)
}

func (m *Model) Minimize(expr solver.Expr) {
	m.objective = make(map[int]float64)
	for _, t := range expr {
		m.objective[int(t.Var)] += float64(t.Coef)
	}
}

// mergeTerms sums repeated variables, since GLPK rejects duplicate column
// indices within a row, and drops zero coefficients.
func mergeTerms(expr solver.Expr) ([]int32, []float64) {
	position := make(map[solver.Var]int)
	var cols []int32
	var coefs []float64
	for _, t := range expr {
		if i, ok := position[t.Var]; ok {
			coefs[i] += float64(t.Coef)
			continue
		}
		position[t.Var] = len(cols)
		cols = append(cols, int32(t.Var))
		coefs = append(coefs, float64(t.Coef))
	}

	n := 0
	for i := range cols {
		if coefs[i] != 0 {
			cols[n], coefs[n] = cols[i], coefs[i]
			n++
		}
	}
	return cols[:n], coefs[:n]
}

type solveResult struct {
	sol *solution
	err error
}

// Solve runs GLPK on its own goroutine. GLPK cannot be interrupted, so when
// budget elapses first the status is UNKNOWN and the abandoned run finishes
// in the background. A budget of zero or less waits for completion.
func (m *Model) Solve(ctx context.Context, budget time.Duration) (*solver.Result, error) {
	start := time.Now()
	done := make(chan solveResult, 1)
	go func() {
		sol, err := runSolve(m)
		done <- solveResult{sol: sol, err: err}
	}()

	var expired <-chan time.Time
	if budget > 0 {
		timer := time.NewTimer(budget)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		stats := solver.Stats{WallTime: time.Since(start)}
		return solver.NewResult(r.sol.status, r.sol.objective, stats, r.sol.values), nil
	case <-expired:
		return solver.NewResult(solver.StatusUnknown, 0, solver.Stats{WallTime: time.Since(start)}, nil), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("solve interrupted: %w", ctx.Err())
	}
}
