package optimizer

import (
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// Builder owns the decision variables of one run and is handed to every
// Constraint in turn.
type Builder struct {
	Model solver.Model
	Input *scheduling.Input
	Vars  *VarIndex

	rowCounts map[string]int
	rows      int
}

// NewBuilder creates one boolean variable per (staff, day, shift), staff
// major, in the order of in.Staff.
func NewBuilder(m solver.Model, in *scheduling.Input) *Builder {
	days := in.Days()
	b := &Builder{
		Model:     m,
		Input:     in,
		Vars:      newVarIndex(in.Staff, days),
		rowCounts: make(map[string]int),
	}

	for i, s := range in.Staff {
		for day := 1; day <= days; day++ {
			for _, shift := range model.ShiftTypes {
				b.Vars.vars[b.Vars.offset(i, day, shift)] = m.NewBoolVar(VarName(s.ID, day, shift))
			}
		}
	}
	return b
}

func (b *Builder) Days() int {
	return b.Vars.days
}

func (b *Builder) Staff() []model.Staff {
	return b.Input.Staff
}

func (b *Builder) Var(staffIdx, day int, shift model.ShiftType) solver.Var {
	return b.Vars.At(staffIdx, day, shift)
}

// Day is the sum of the three shift variables of a staff-day.
func (b *Builder) Day(staffIdx, day int) solver.Expr {
	return b.Span(staffIdx, day, day)
}

// Span is the sum of every shift variable from day from to day to inclusive.
func (b *Builder) Span(staffIdx, from, to int) solver.Expr {
	var expr solver.Expr
	for day := from; day <= to; day++ {
		for _, shift := range model.ShiftTypes {
			expr = append(expr, solver.Term{Var: b.Var(staffIdx, day, shift), Coef: 1})
		}
	}
	return expr
}

// ShiftSpan is the sum of one shift type's variables over a day range.
func (b *Builder) ShiftSpan(staffIdx int, shift model.ShiftType, from, to int) solver.Expr {
	var expr solver.Expr
	for day := from; day <= to; day++ {
		expr = append(expr, solver.Term{Var: b.Var(staffIdx, day, shift), Coef: 1})
	}
	return expr
}

// Add adds a row named "<family>/<detail>".
func (b *Builder) Add(family, detail string, expr solver.Expr, rel solver.Relation, bound int) {
	b.Model.AddLinearConstraint(family+"/"+detail, expr, rel, bound)
	b.rowCounts[family]++
	b.rows++
}

// RowCounts returns how many rows each constraint family added.
func (b *Builder) RowCounts() map[string]int {
	out := make(map[string]int, len(b.rowCounts))
	for k, v := range b.rowCounts {
		out[k] = v
	}
	return out
}

// Rows is the total number of rows added.
func (b *Builder) Rows() int {
	return b.rows
}
