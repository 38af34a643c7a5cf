// Package solvertest provides an in-memory solver backend for tests. Models
// record everything the optimizer adds to them, so tests can inspect the
// formulation, and are solved either by a scripted function or by Search, a
// small exhaustive branch-and-bound that is practical for toy instances.
package solvertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kiddos/scheduler/pkg/core/solver"
)

// Constraint is a recorded linear constraint.
type Constraint struct {
	Name  string
	Expr  solver.Expr
	Rel   solver.Relation
	Bound int
}

// Holds reports whether the constraint is satisfied by values.
func (c Constraint) Holds(values []bool) bool {
	return c.Rel.Holds(c.Expr.Eval(valueFunc(values)), c.Bound)
}

// SolveFunc produces the result for a fully built model.
type SolveFunc func(ctx context.Context, m *Model, budget time.Duration) (*solver.Result, error)

// Model records variables, constraints and the objective.
type Model struct {
	Names       []string
	Constraints []Constraint
	Objective   solver.Expr
	Budget      time.Duration
	Solved      bool

	solve SolveFunc
	index map[string]solver.Var
}

func (m *Model) NewBoolVar(name string) solver.Var {
	v := solver.Var(len(m.Names))
	m.Names = append(m.Names, name)
	if m.index == nil {
		m.index = make(map[string]solver.Var)
	}
	m.index[name] = v
	return v
}

func (m *Model) AddLinearConstraint(name string, expr solver.Expr, rel solver.Relation, bound int) {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Expr: expr, Rel: rel, Bound: bound})
}

func (m *Model) Minimize(expr solver.Expr) {
	m.Objective = expr
}

func (m *Model) Solve(ctx context.Context, budget time.Duration) (*solver.Result, error) {
	m.Budget = budget
	m.Solved = true
	if m.solve == nil {
		return Search(ctx, m, budget)
	}
	return m.solve(ctx, m, budget)
}

// Var looks a variable up by name.
func (m *Model) Var(name string) (solver.Var, bool) {
	v, ok := m.index[name]
	return v, ok
}

// ConstraintsWithPrefix returns the constraints whose name starts with prefix.
func (m *Model) ConstraintsWithPrefix(prefix string) []Constraint {
	var out []Constraint
	for _, c := range m.Constraints {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Violated returns every constraint that values do not satisfy.
func (m *Model) Violated(values []bool) []Constraint {
	var out []Constraint
	for _, c := range m.Constraints {
		if !c.Holds(values) {
			out = append(out, c)
		}
	}
	return out
}

// ObjectiveValue evaluates the objective under values.
func (m *Model) ObjectiveValue(values []bool) int {
	return m.Objective.Eval(valueFunc(values))
}

// Values builds a value slice from a predicate over variable names.
func (m *Model) Values(assign func(name string) bool) []bool {
	values := make([]bool, len(m.Names))
	for i, name := range m.Names {
		values[i] = assign(name)
	}
	return values
}

// Backend hands out Models and keeps them for inspection. A nil Script means
// every model is solved by Search.
type Backend struct {
	Script SolveFunc

	mu     sync.Mutex
	models []*Model
}

func (b *Backend) Name() string { return "solvertest" }

func (b *Backend) NewModel() solver.Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := &Model{solve: b.Script}
	b.models = append(b.models, m)
	return m
}

// Models returns every model created so far.
func (b *Backend) Models() []*Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Model(nil), b.models...)
}

// Last returns the most recently created model, or nil.
func (b *Backend) Last() *Model {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.models) == 0 {
		return nil
	}
	return b.models[len(b.models)-1]
}

// Returns scripts a fixed status with every variable false.
func Returns(status solver.Status, stats solver.Stats) SolveFunc {
	return Assigns(status, stats, func(string) bool { return false })
}

// Assigns scripts a fixed status with values chosen by name.
func Assigns(status solver.Status, stats solver.Stats, assign func(name string) bool) SolveFunc {
	return func(_ context.Context, m *Model, _ time.Duration) (*solver.Result, error) {
		values := m.Values(assign)
		return solver.NewResult(status, float64(m.ObjectiveValue(values)), stats, values), nil
	}
}

// Fails scripts a backend failure.
func Fails(err error) SolveFunc {
	return func(context.Context, *Model, time.Duration) (*solver.Result, error) {
		return nil, err
	}
}

func valueFunc(values []bool) func(solver.Var) bool {
	return func(v solver.Var) bool {
		return int(v) < len(values) && values[v]
	}
}
