package constraints

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// WorkloadWindowConstraint caps the shifts in every window of
// workDayConstrain consecutive days fully inside the period at
// workDayConstrain - dayOffConstrain. Skipped when the window length is at
// most 1 or longer than the period.
type WorkloadWindowConstraint struct {
	params scheduling.Params
}

func NewWorkloadWindowConstraint(params scheduling.Params) *WorkloadWindowConstraint {
	return &WorkloadWindowConstraint{params: params}
}

func (c *WorkloadWindowConstraint) Name() string {
	return "window"
}

func (c *WorkloadWindowConstraint) Apply(b *optimizer.Builder) {
	days := b.Days()
	if !c.params.WindowsApply(days) {
		return
	}
	w := c.params.WorkDayConstrain
	for i, s := range b.Staff() {
		for start := 1; start+w-1 <= days; start++ {
			b.Add(c.Name(), fmt.Sprintf("%s/d%02d", s.ID, start),
				b.Span(i, start, start+w-1), solver.LessEq, c.params.WindowCap())
		}
	}
}

func (c *WorkloadWindowConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	days := in.Days()
	if !c.params.WindowsApply(days) {
		return nil
	}
	w := c.params.WorkDayConstrain
	var violations []optimizer.Violation
	for _, row := range roster.Rows {
		for start := 1; start+w-1 <= days; start++ {
			if got := row.Worked(start, start+w-1); got > c.params.WindowCap() {
				violations = append(violations, optimizer.Violation{
					Constraint:  c.Name(),
					StaffID:     row.StaffID,
					Day:         start,
					Description: fmt.Sprintf("%d shifts in %d days from day %d, at most %d", got, w, start, c.params.WindowCap()),
				})
			}
		}
	}
	return violations
}

// CarryoverWindowConstraint applies the same cap to the windows that start
// in the previous period. For k = 1..workDayConstrain-1 the shifts of days
// 1..k may not exceed the cap minus the days worked in the final
// workDayConstrain-k days of the previous period.
type CarryoverWindowConstraint struct {
	params scheduling.Params
}

func NewCarryoverWindowConstraint(params scheduling.Params) *CarryoverWindowConstraint {
	return &CarryoverWindowConstraint{params: params}
}

func (c *CarryoverWindowConstraint) Name() string {
	return "carryover"
}

func (c *CarryoverWindowConstraint) Apply(b *optimizer.Builder) {
	days := b.Days()
	if !c.params.WindowsApply(days) {
		return
	}
	for i, s := range b.Staff() {
		carry := b.Input.CarryoverFor(s.ID)
		for k := 1; k < c.params.WorkDayConstrain; k++ {
			b.Add(c.Name(), fmt.Sprintf("%s/k%02d", s.ID, k),
				b.Span(i, 1, k), solver.LessEq, c.params.WindowCap()-carry.At(k-1))
		}
	}
}

func (c *CarryoverWindowConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	if !c.params.WindowsApply(in.Days()) {
		return nil
	}
	var violations []optimizer.Violation
	for _, s := range in.Staff {
		row := roster.Row(s.ID)
		if row == nil {
			continue
		}
		carry := in.CarryoverFor(s.ID)
		for k := 1; k < c.params.WorkDayConstrain; k++ {
			if got := row.Worked(1, k) + carry.At(k-1); got > c.params.WindowCap() {
				violations = append(violations, optimizer.Violation{
					Constraint:  c.Name(),
					StaffID:     s.ID,
					Day:         k,
					Description: fmt.Sprintf("%d shifts in the window ending on day %d, at most %d", got, k, c.params.WindowCap()),
				})
			}
		}
	}
	return violations
}
