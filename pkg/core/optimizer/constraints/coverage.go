package constraints

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// CoverageConstraint enforces the minimum headcount of every shift.
//
// Rows:
//   - For each day and shift type: sum over staff of the shift variable >= required headcount
//   - Requirements are read already adjusted for the leader
type CoverageConstraint struct{}

func NewCoverageConstraint() *CoverageConstraint {
	return &CoverageConstraint{}
}

func (c *CoverageConstraint) Name() string {
	return "coverage"
}

func (c *CoverageConstraint) Apply(b *optimizer.Builder) {
	for day := 1; day <= b.Days(); day++ {
		req := b.Input.Requirement(day)
		for _, shift := range model.ShiftTypes {
			expr := make(solver.Expr, 0, len(b.Staff()))
			for i := range b.Staff() {
				expr = append(expr, solver.Term{Var: b.Var(i, day, shift), Coef: 1})
			}
			b.Add(c.Name(), fmt.Sprintf("d%02d/%s", day, shift), expr, solver.GreaterEq, req.Of(shift))
		}
	}
}

func (c *CoverageConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	var violations []optimizer.Violation
	for day := 1; day <= in.Days(); day++ {
		req := in.Requirement(day)
		for _, shift := range model.ShiftTypes {
			if got := roster.Count(day, shift); got < req.Of(shift) {
				violations = append(violations, optimizer.Violation{
					Constraint:  c.Name(),
					Day:         day,
					Description: fmt.Sprintf("%s has %d staff, %d required", shift, got, req.Of(shift)),
				})
			}
		}
	}
	return violations
}
