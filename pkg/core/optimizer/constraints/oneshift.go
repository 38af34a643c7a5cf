package constraints

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// OneShiftPerDayConstraint allows at most one shift per staff-day.
type OneShiftPerDayConstraint struct{}

func NewOneShiftPerDayConstraint() *OneShiftPerDayConstraint {
	return &OneShiftPerDayConstraint{}
}

func (c *OneShiftPerDayConstraint) Name() string {
	return "one-shift"
}

func (c *OneShiftPerDayConstraint) Apply(b *optimizer.Builder) {
	for i, s := range b.Staff() {
		for day := 1; day <= b.Days(); day++ {
			b.Add(c.Name(), fmt.Sprintf("%s/d%02d", s.ID, day), b.Day(i, day), solver.LessEq, 1)
		}
	}
}

// Validate checks that every cell holds exactly one known label.
func (c *OneShiftPerDayConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	var violations []optimizer.Violation
	for _, row := range roster.Rows {
		if len(row.Cells) != in.Days() {
			violations = append(violations, optimizer.Violation{
				Constraint:  c.Name(),
				StaffID:     row.StaffID,
				Description: fmt.Sprintf("row has %d cells, period has %d days", len(row.Cells), in.Days()),
			})
			continue
		}
		for i, l := range row.Cells {
			if l == "" || !l.IsValid() {
				violations = append(violations, optimizer.Violation{
					Constraint:  c.Name(),
					StaffID:     row.StaffID,
					Day:         i + 1,
					Description: fmt.Sprintf("cell holds %q", l),
				})
			}
		}
	}
	return violations
}
