package constraints

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// PreferenceQuotaConstraint guarantees NIGHT and EVENING preferring staff a
// minimum number of their preferred shift, and bounds everyone's total by
// the length of the period.
type PreferenceQuotaConstraint struct {
	quota int
}

func NewPreferenceQuotaConstraint(params scheduling.Params) *PreferenceQuotaConstraint {
	return &PreferenceQuotaConstraint{quota: params.PreferenceQuota}
}

func (c *PreferenceQuotaConstraint) Name() string {
	return "quota"
}

func (c *PreferenceQuotaConstraint) Apply(b *optimizer.Builder) {
	days := b.Days()
	for i, s := range b.Staff() {
		if s.Preference.HasQuota() {
			b.Add(c.Name(), fmt.Sprintf("%s/%s", s.ID, s.Preference),
				b.ShiftSpan(i, s.Preference.Shift(), 1, days), solver.GreaterEq, c.quota)
		}
		b.Add(c.Name(), fmt.Sprintf("%s/total", s.ID), b.Span(i, 1, days), solver.LessEq, days)
	}
}

func (c *PreferenceQuotaConstraint) Validate(in *scheduling.Input, roster *optimizer.Roster) []optimizer.Violation {
	var violations []optimizer.Violation
	for _, s := range in.Staff {
		row := roster.Row(s.ID)
		if row == nil || !s.Preference.HasQuota() {
			continue
		}
		if got := row.CountShift(s.Preference.Shift()); got < c.quota {
			violations = append(violations, optimizer.Violation{
				Constraint:  c.Name(),
				StaffID:     s.ID,
				Description: fmt.Sprintf("%d %s shifts, at least %d required", got, s.Preference, c.quota),
			})
		}
	}
	return violations
}
