package optimizer

import (
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// BuildObjective returns the expression to minimise. Each day-off request
// costs one per shift assigned that day, each shift request costs one per
// other shift assigned that day, and NIGHT or EVENING preference costs one
// per shift of another type across the period.
func BuildObjective(b *Builder) solver.Expr {
	in := b.Input
	days := b.Days()

	var objective solver.Expr
	for i, s := range b.Staff() {
		for day := 1; day <= days; day++ {
			req := in.Request(s.ID, day)
			if req.IsDayOff() {
				objective = append(objective, b.Day(i, day)...)
				continue
			}
			if shift, ok := req.ShiftType(); ok {
				for _, other := range shift.Others() {
					objective = append(objective, solver.Term{Var: b.Var(i, day, other), Coef: 1})
				}
			}
		}

		if s.Preference.HasQuota() {
			for _, other := range s.Preference.Shift().Others() {
				objective = append(objective, b.ShiftSpan(i, other, 1, days)...)
			}
		}
	}
	return objective
}
