package constraints

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// transition is a shift on one day followed by a shift on the next.
type transition struct {
	from, to model.ShiftType
}

// nightIsolationForbidden are the transitions excluded by the night
// isolation rows, given at most one shift per day.
var nightIsolationForbidden = []transition{
	{model.ShiftEvening, model.ShiftNight},
	{model.ShiftNight, model.ShiftNight},
	{model.ShiftNight, model.ShiftDay},
}

// RestConstraint enforces rest between shifts on adjacent days.
//
// With scheduling.RestNightIsolation, for every day d < last:
//   - EVENING_d + NIGHT_d + NIGHT_{d+1} <= 1
//   - NIGHT_d + NIGHT_{d+1} + DAY_{d+1} <= 1
//
// With scheduling.RestMinimumGap, a shift a on day d may not be followed by a
// shift b on day d+1 when the clock gap between the end of a and the start
// of b is below MinRestHours. One row per (d, a) with forbidden successors:
//   - a_d + sum(b_{d+1}) <= 1
type RestConstraint struct {
	rule         scheduling.RestRule
	minRestHours int
}

func NewRestConstraint(params scheduling.Params) *RestConstraint {
	return &RestConstraint{rule: params.RestRule, minRestHours: params.MinRestHours}
}

func (c *RestConstraint) Name() string {
	return "rest"
}

// forbidden returns the transitions the configured rule excludes.
func (c *RestConstraint) forbidden() []transition {
	if c.rule != scheduling.RestMinimumGap {
		return nightIsolationForbidden
	}

	var out []transition
	for _, from := range model.ShiftTypes {
		_, end := from.Hours()
		for _, to := range model.ShiftTypes {
			start, _ := to.Hours()
			if 24-end+start < c.minRestHours {
				out = append(out, transition{from: from, to: to})
			}
		}
	}
	return out
}

func (c *RestConstraint) Apply(b *optimizer.Builder) {
	days := b.Days()

	if c.rule != scheduling.RestMinimumGap {
		night, day, evening := model.ShiftNight, model.ShiftDay, model.ShiftEvening
		for i, s := range b.Staff() {
			for d := 1; d < days; d++ {
				b.Add(c.Name(), fmt.Sprintf("%s/d%02d/into-night", s.ID, d),
					solver.Sum(b.Var(i, d, evening), b.Var(i, d, night), b.Var(i, d+1, night)),
					solver.LessEq, 1)
				b.Add(c.Name(), fmt.Sprintf("%s/d%02d/after-night", s.ID, d),
					solver.Sum(b.Var(i, d, night), b.Var(i, d+1, night), b.Var(i, d+1, day)),
					solver.LessEq, 1)
			}
		}
		return
	}

	successors := make(map[model.ShiftType][]model.ShiftType)
	for _, t := range c.forbidden() {
		successors[t.from] = append(successors[t.from], t.to)
	}
	for i, s := range b.Staff() {
		for d := 1; d < days; d++ {
			for _, from := range model.ShiftTypes {
				next := successors[from]
				if len(next) == 0 {
					continue
				}
				vars := []solver.Var{b.Var(i, d, from)}
				for _, to := range next {
					vars = append(vars, b.Var(i, d+1, to))
				}
				b.Add(c.Name(), fmt.Sprintf("%s/d%02d/after-%s", s.ID, d, from), solver.Sum(vars...), solver.LessEq, 1)
			}
		}
	}
}

func (c *RestConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	excluded := c.forbidden()
	var violations []optimizer.Violation
	for _, row := range roster.Rows {
		for d := 1; d < in.Days(); d++ {
			from, ok := row.Cell(d).ShiftType()
			if !ok {
				continue
			}
			to, ok := row.Cell(d + 1).ShiftType()
			if !ok {
				continue
			}
			for _, t := range excluded {
				if t.from == from && t.to == to {
					violations = append(violations, optimizer.Violation{
						Constraint:  c.Name(),
						StaffID:     row.StaffID,
						Day:         d,
						Description: fmt.Sprintf("%s followed by %s", from, to),
					})
				}
			}
		}
	}
	return violations
}
