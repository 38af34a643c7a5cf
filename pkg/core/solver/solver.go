// Package solver defines the capability the optimizer needs from a 0-1
// integer programming backend: boolean variables, linear constraints with
// integer coefficients, a minimised linear objective and a time-bounded solve.
package solver

import (
	"context"
	"time"
)

// Var is a handle to a boolean decision variable of a Model.
type Var int

// Term is Coef * Var.
type Term struct {
	Var  Var
	Coef int
}

// Expr is a linear expression: the sum of its terms.
type Expr []Term

// Sum returns the expression v1 + v2 + ... with unit coefficients.
func Sum(vars ...Var) Expr {
	expr := make(Expr, len(vars))
	for i, v := range vars {
		expr[i] = Term{Var: v, Coef: 1}
	}
	return expr
}

// Plus returns the concatenation of e and other.
func (e Expr) Plus(other Expr) Expr {
	out := make(Expr, 0, len(e)+len(other))
	out = append(out, e...)
	return append(out, other...)
}

// Eval evaluates the expression under the given assignment.
func (e Expr) Eval(value func(Var) bool) int {
	total := 0
	for _, t := range e {
		if value(t.Var) {
			total += t.Coef
		}
	}
	return total
}

type Relation int

const (
	LessEq Relation = iota
	GreaterEq
	Equal
)

func (r Relation) String() string {
	switch r {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "=="
	}
	return "?"
}

// Holds reports whether lhs <rel> bound.
func (r Relation) Holds(lhs, bound int) bool {
	switch r {
	case LessEq:
		return lhs <= bound
	case GreaterEq:
		return lhs >= bound
	case Equal:
		return lhs == bound
	}
	return false
}

// Status is the closed set of solve outcomes.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	}
	return "UNKNOWN"
}

// HasSolution reports whether variable values can be read back.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) Status {
	for _, st := range []Status{StatusOptimal, StatusFeasible, StatusInfeasible, StatusModelInvalid} {
		if st.String() == s {
			return st
		}
	}
	return StatusUnknown
}

// Stats are search statistics. Backends that do not track conflicts or
// branches leave them at zero.
type Stats struct {
	Conflicts int64
	Branches  int64
	WallTime  time.Duration
}

// Result is returned by Model.Solve.
type Result struct {
	Status    Status
	Objective float64
	Stats     Stats

	values []bool
}

// NewResult builds a result from per-variable values indexed by Var.
func NewResult(status Status, objective float64, stats Stats, values []bool) *Result {
	return &Result{Status: status, Objective: objective, Stats: stats, values: values}
}

// Value returns the solved value of v. It is false when the status carries
// no solution.
func (r *Result) Value(v Var) bool {
	if !r.Status.HasSolution() || int(v) < 0 || int(v) >= len(r.values) {
		return false
	}
	return r.values[v]
}

// Model is a single optimisation problem under construction.
type Model interface {
	// NewBoolVar adds a 0-1 variable.
	NewBoolVar(name string) Var
	// AddLinearConstraint adds expr <rel> bound. The name is used for
	// diagnostics only.
	AddLinearConstraint(name string, expr Expr, rel Relation, bound int)
	// Minimize sets the objective.
	Minimize(expr Expr)
	// Solve searches for at most budget. It must return once the budget has
	// elapsed, reporting FEASIBLE with the best solution found so far or
	// UNKNOWN. An error means the backend itself failed.
	Solve(ctx context.Context, budget time.Duration) (*Result, error)
}

// Backend creates fresh models.
type Backend interface {
	Name() string
	NewModel() Model
}
