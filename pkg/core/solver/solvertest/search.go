package solvertest

import (
	"context"
	"time"

	"github.com/kiddos/scheduler/pkg/core/solver"
)

type occurrence struct {
	constraint int
	coef       int
}

type rowTerm struct {
	v    int
	coef int
}

type searcher struct {
	ctx      context.Context
	deadline time.Time

	rows  []Constraint
	terms [][]rowTerm
	occ   [][]occurrence
	lo    []int
	hi    []int

	objCoef []int
	objLo   int

	val   []int8
	trail []int
	queue []int

	best    []bool
	bestObj int
	found   bool
	stopped bool

	nodes, fails int64
}

// Search solves m exactly by depth-first branch and bound with bounds
// propagation. It honours budget and ctx, returning the best solution found
// as FEASIBLE when interrupted. Only use it for small models.
func Search(ctx context.Context, m *Model, budget time.Duration) (*solver.Result, error) {
	start := time.Now()
	n := len(m.Names)

	s := &searcher{
		ctx:      ctx,
		deadline: start.Add(budget),
		rows:     m.Constraints,
		terms:    make([][]rowTerm, len(m.Constraints)),
		occ:      make([][]occurrence, n),
		lo:       make([]int, len(m.Constraints)),
		hi:       make([]int, len(m.Constraints)),
		objCoef:  make([]int, n),
		val:      make([]int8, n),
	}
	for i := range s.val {
		s.val[i] = -1
	}

	for ci, c := range m.Constraints {
		coefs := make(map[int]int)
		var order []int
		for _, t := range c.Expr {
			if _, seen := coefs[int(t.Var)]; !seen {
				order = append(order, int(t.Var))
			}
			coefs[int(t.Var)] += t.Coef
		}
		for _, v := range order {
			coef := coefs[v]
			if coef == 0 {
				continue
			}
			s.terms[ci] = append(s.terms[ci], rowTerm{v: v, coef: coef})
			s.occ[v] = append(s.occ[v], occurrence{constraint: ci, coef: coef})
			s.lo[ci] += min(0, coef)
			s.hi[ci] += max(0, coef)
		}
	}
	for _, t := range m.Objective {
		s.objCoef[t.Var] += t.Coef
	}
	for _, c := range s.objCoef {
		s.objLo += min(0, c)
	}

	for ci := range s.rows {
		s.queue = append(s.queue, ci)
	}
	if s.propagate() {
		s.dfs()
	}

	stats := solver.Stats{Conflicts: s.fails, Branches: s.nodes, WallTime: time.Since(start)}
	switch {
	case s.found && !s.stopped:
		return solver.NewResult(solver.StatusOptimal, float64(s.bestObj), stats, s.best), nil
	case s.found:
		return solver.NewResult(solver.StatusFeasible, float64(s.bestObj), stats, s.best), nil
	case s.stopped:
		return solver.NewResult(solver.StatusUnknown, 0, stats, nil), nil
	}
	return solver.NewResult(solver.StatusInfeasible, 0, stats, nil), nil
}

func (s *searcher) dfs() {
	s.nodes++
	if s.nodes%256 == 0 && (time.Now().After(s.deadline) || s.ctx.Err() != nil) {
		s.stopped = true
	}
	if s.stopped {
		return
	}
	if s.found && s.objLo >= s.bestObj {
		return
	}

	next := -1
	for i, v := range s.val {
		if v < 0 {
			next = i
			break
		}
	}
	if next < 0 {
		s.best = make([]bool, len(s.val))
		for i, v := range s.val {
			s.best[i] = v == 1
		}
		s.bestObj = s.objLo
		s.found = true
		return
	}

	for _, value := range []int8{0, 1} {
		mark := len(s.trail)
		if s.assign(next, value) && s.propagate() {
			s.dfs()
		} else {
			s.fails++
		}
		s.undo(mark)
		if s.stopped {
			return
		}
	}
}

func (s *searcher) assign(v int, value int8) bool {
	s.val[v] = value
	s.trail = append(s.trail, v)

	ok := true
	for _, o := range s.occ[v] {
		contribution := 0
		if value == 1 {
			contribution = o.coef
		}
		s.lo[o.constraint] += contribution - min(0, o.coef)
		s.hi[o.constraint] += contribution - max(0, o.coef)
		if !s.feasible(o.constraint) {
			ok = false
		}
		s.queue = append(s.queue, o.constraint)
	}

	if c := s.objCoef[v]; c != 0 {
		contribution := 0
		if value == 1 {
			contribution = c
		}
		s.objLo += contribution - min(0, c)
	}
	return ok
}

func (s *searcher) undo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		value := s.val[v]
		s.val[v] = -1

		for _, o := range s.occ[v] {
			contribution := 0
			if value == 1 {
				contribution = o.coef
			}
			s.lo[o.constraint] -= contribution - min(0, o.coef)
			s.hi[o.constraint] -= contribution - max(0, o.coef)
		}
		if c := s.objCoef[v]; c != 0 {
			contribution := 0
			if value == 1 {
				contribution = c
			}
			s.objLo -= contribution - min(0, c)
		}
	}
	s.queue = s.queue[:0]
}

func (s *searcher) feasible(ci int) bool {
	c := s.rows[ci]
	switch c.Rel {
	case solver.LessEq:
		return s.lo[ci] <= c.Bound
	case solver.GreaterEq:
		return s.hi[ci] >= c.Bound
	}
	return s.lo[ci] <= c.Bound && s.hi[ci] >= c.Bound
}

// propagate fixes every unassigned variable whose value is implied by a
// queued constraint, until a fixpoint or a conflict.
func (s *searcher) propagate() bool {
	for len(s.queue) > 0 {
		ci := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]
		if !s.feasible(ci) {
			s.queue = s.queue[:0]
			return false
		}

		c := s.rows[ci]
		upper := c.Rel == solver.LessEq || c.Rel == solver.Equal
		lower := c.Rel == solver.GreaterEq || c.Rel == solver.Equal

		for _, t := range s.terms[ci] {
			if s.val[t.v] >= 0 {
				continue
			}
			forced := int8(-1)
			if upper {
				if t.coef > 0 && s.lo[ci]+t.coef > c.Bound {
					forced = 0
				} else if t.coef < 0 && s.lo[ci]-t.coef > c.Bound {
					forced = 1
				}
			}
			if forced < 0 && lower {
				if t.coef > 0 && s.hi[ci]-t.coef < c.Bound {
					forced = 1
				} else if t.coef < 0 && s.hi[ci]+t.coef < c.Bound {
					forced = 0
				}
			}
			if forced < 0 {
				continue
			}
			if !s.assign(t.v, forced) {
				s.queue = s.queue[:0]
				return false
			}
		}
	}
	return true
}
