package constraints

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// BusinessTravelConstraint keeps staff on business travel off every shift
// that day.
type BusinessTravelConstraint struct{}

func NewBusinessTravelConstraint() *BusinessTravelConstraint {
	return &BusinessTravelConstraint{}
}

func (c *BusinessTravelConstraint) Name() string {
	return "travel"
}

func (c *BusinessTravelConstraint) Apply(b *optimizer.Builder) {
	for i, s := range b.Staff() {
		for day := 1; day <= b.Days(); day++ {
			if b.Input.Request(s.ID, day) == model.LabelBusinessTravel {
				b.Add(c.Name(), fmt.Sprintf("%s/d%02d", s.ID, day), b.Day(i, day), solver.Equal, 0)
			}
		}
	}
}

func (c *BusinessTravelConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	var violations []optimizer.Violation
	for _, row := range roster.Rows {
		for day := 1; day <= in.Days(); day++ {
			if in.Request(row.StaffID, day) == model.LabelBusinessTravel && row.Cell(day).IsShift() {
				violations = append(violations, optimizer.Violation{
					Constraint:  c.Name(),
					StaffID:     row.StaffID,
					Day:         day,
					Description: fmt.Sprintf("assigned %s while on business travel", row.Cell(day)),
				})
			}
		}
	}
	return violations
}

// StatutoryDaysOffConstraint gives everyone at least as many days off as
// the shared calendar row has common days off.
type StatutoryDaysOffConstraint struct{}

func NewStatutoryDaysOffConstraint() *StatutoryDaysOffConstraint {
	return &StatutoryDaysOffConstraint{}
}

func (c *StatutoryDaysOffConstraint) Name() string {
	return "days-off"
}

func (c *StatutoryDaysOffConstraint) Apply(b *optimizer.Builder) {
	limit := b.Days() - b.Input.RequiredDaysOff()
	for i, s := range b.Staff() {
		b.Add(c.Name(), s.ID, b.Span(i, 1, b.Days()), solver.LessEq, limit)
	}
}

func (c *StatutoryDaysOffConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	limit := in.Days() - in.RequiredDaysOff()
	var violations []optimizer.Violation
	for _, row := range roster.Rows {
		if got := row.Worked(1, in.Days()); got > limit {
			violations = append(violations, optimizer.Violation{
				Constraint:  c.Name(),
				StaffID:     row.StaffID,
				Description: fmt.Sprintf("%d shifts, at most %d", got, limit),
			})
		}
	}
	return violations
}

// ShiftRestrictionConstraint keeps restricted staff on their one shift type.
type ShiftRestrictionConstraint struct{}

func NewShiftRestrictionConstraint() *ShiftRestrictionConstraint {
	return &ShiftRestrictionConstraint{}
}

func (c *ShiftRestrictionConstraint) Name() string {
	return "restriction"
}

func (c *ShiftRestrictionConstraint) Apply(b *optimizer.Builder) {
	for i, s := range b.Staff() {
		if s.Restriction == nil {
			continue
		}
		var expr solver.Expr
		for _, other := range s.Restriction.Others() {
			expr = append(expr, b.ShiftSpan(i, other, 1, b.Days())...)
		}
		b.Add(c.Name(), fmt.Sprintf("%s/%s-only", s.ID, *s.Restriction), expr, solver.Equal, 0)
	}
}

func (c *ShiftRestrictionConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	var violations []optimizer.Violation
	for _, s := range in.Staff {
		row := roster.Row(s.ID)
		if s.Restriction == nil || row == nil {
			continue
		}
		for day := 1; day <= in.Days(); day++ {
			if shift, ok := row.Cell(day).ShiftType(); ok && shift != *s.Restriction {
				violations = append(violations, optimizer.Violation{
					Constraint:  c.Name(),
					StaffID:     s.ID,
					Day:         day,
					Description: fmt.Sprintf("assigned %s, restricted to %s", shift, *s.Restriction),
				})
			}
		}
	}
	return violations
}
