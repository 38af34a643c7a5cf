package scheduling

import "github.com/kiddos/scheduler/pkg/core/model"

// Headcount is a minimum number of staff per shift type, indexed by
// model.ShiftType.
type Headcount [model.NumShiftTypes]int

// NewHeadcount builds a headcount from per-shift values.
func NewHeadcount(night, day, evening int) Headcount {
	var h Headcount
	h[model.ShiftNight] = night
	h[model.ShiftDay] = day
	h[model.ShiftEvening] = evening
	return h
}

// Of returns the headcount for shift.
func (h Headcount) Of(shift model.ShiftType) int {
	return h[shift]
}

func (h Headcount) Total() int {
	return h[model.ShiftNight] + h[model.ShiftDay] + h[model.ShiftEvening]
}

// AdjustForLeader derives a day's requirement from the base table and the
// designated leader's request for that day. When the leader is off on a
// working day, DAY needs one extra person. When the leader works EVENING,
// EVENING needs one fewer and DAY one extra unless the day is a common day
// off. Otherwise the base applies.
func AdjustForLeader(base Headcount, leaderRequest model.Label, commonDayOff bool) Headcount {
	adjusted := base
	switch {
	case leaderRequest.IsDayOff():
		if !commonDayOff {
			adjusted[model.ShiftDay]++
		}
	case leaderRequest == model.LabelEvening:
		if !commonDayOff {
			adjusted[model.ShiftDay]++
		}
		if adjusted[model.ShiftEvening] > 0 {
			adjusted[model.ShiftEvening]--
		}
	}
	return adjusted
}

// DeriveRequirements applies AdjustForLeader to every day. leaderRequests
// may be shorter than the period or nil.
func DeriveRequirements(base Headcount, commonDaysOff []bool, leaderRequests []model.Label) []Headcount {
	reqs := make([]Headcount, len(commonDaysOff))
	for i := range commonDaysOff {
		req := model.LabelUnassigned
		if i < len(leaderRequests) {
			req = leaderRequests[i]
		}
		reqs[i] = AdjustForLeader(base, req, commonDaysOff[i])
	}
	return reqs
}
