package scheduling

import "fmt"

// RestRule selects how the minimum rest between shifts on adjacent days is
// encoded.
type RestRule string

const (
	// RestNightIsolation forbids EVENING or NIGHT followed by NIGHT, and
	// NIGHT followed by NIGHT or DAY.
	RestNightIsolation RestRule = "night-isolation"
	// RestMinimumGap forbids any pair of shifts on adjacent days whose clock
	// gap is shorter than MinRestHours.
	RestMinimumGap RestRule = "minimum-gap"
)

func (r RestRule) IsValid() bool {
	return r == RestNightIsolation || r == RestMinimumGap
}

// Params are the tunable constraint parameters of a run.
type Params struct {
	// WorkDayConstrain is the rolling window length in days.
	WorkDayConstrain int
	// DayOffConstrain is the minimum number of days off in every window.
	DayOffConstrain int
	// PreferenceQuota is the minimum number of preferred NIGHT or EVENING
	// shifts per period.
	PreferenceQuota int
	RestRule        RestRule
	MinRestHours    int
}

func DefaultParams() Params {
	return Params{
		WorkDayConstrain: 7,
		DayOffConstrain:  1,
		PreferenceQuota:  16,
		RestRule:         RestNightIsolation,
		MinRestHours:     16,
	}
}

// WindowsApply reports whether the rolling workload constraints are
// meaningful for a period of the given length.
func (p Params) WindowsApply(days int) bool {
	return p.WorkDayConstrain > 1 && p.WorkDayConstrain <= days
}

// WindowCap is the maximum number of shifts in any window.
func (p Params) WindowCap() int {
	return p.WorkDayConstrain - p.DayOffConstrain
}

func (p Params) Validate() error {
	if p.WorkDayConstrain < 0 {
		return fmt.Errorf("workDayConstrain must not be negative, got %d", p.WorkDayConstrain)
	}
	if p.DayOffConstrain < 0 {
		return fmt.Errorf("dayOffConstrain must not be negative, got %d", p.DayOffConstrain)
	}
	if p.DayOffConstrain > p.WorkDayConstrain {
		return fmt.Errorf("dayOffConstrain (%d) exceeds workDayConstrain (%d)", p.DayOffConstrain, p.WorkDayConstrain)
	}
	if p.PreferenceQuota < 0 {
		return fmt.Errorf("preferenceQuota must not be negative, got %d", p.PreferenceQuota)
	}
	if !p.RestRule.IsValid() {
		return fmt.Errorf("unknown rest rule %q", p.RestRule)
	}
	if p.RestRule == RestMinimumGap && (p.MinRestHours < 0 || p.MinRestHours > 48) {
		return fmt.Errorf("minRestHours must be between 0 and 48, got %d", p.MinRestHours)
	}
	return nil
}
