package scheduling

import (
	"fmt"
	"sort"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
)

// Input is everything a single optimisation run reads. It is not modified
// by the optimizer.
type Input struct {
	Period calendar.Period

	// Staff are the rows that receive decision variables, in roster order.
	// The leader is not among them.
	Staff  []model.Staff
	Leader *model.Staff

	// CommonDaysOff is the shared weekend/holiday row, indexed by day-1.
	CommonDaysOff []bool
	// Requirements are the per-day minimum headcounts, indexed by day-1,
	// already adjusted for the leader.
	Requirements []Headcount

	// Requests holds each staff member's requested cells keyed by staff ID,
	// indexed by day-1. Missing rows and short rows read as unassigned.
	Requests       map[string][]model.Label
	LeaderRequests []model.Label

	Carryover map[string]Carryover
	Params    Params
}

// Days is the number of days of the period.
func (in *Input) Days() int {
	return in.Period.DaysInMonth()
}

// Request returns the staff member's request for day (1-based).
func (in *Input) Request(staffID string, day int) model.Label {
	return labelAt(in.Requests[staffID], day)
}

// LeaderRequest returns the leader's request for day (1-based).
func (in *Input) LeaderRequest(day int) model.Label {
	return labelAt(in.LeaderRequests, day)
}

// Requirement returns the headcount of day (1-based).
func (in *Input) Requirement(day int) Headcount {
	if day < 1 || day > len(in.Requirements) {
		return Headcount{}
	}
	return in.Requirements[day-1]
}

// IsCommonDayOff reports whether day (1-based) is on the shared calendar row.
func (in *Input) IsCommonDayOff(day int) bool {
	return day >= 1 && day <= len(in.CommonDaysOff) && in.CommonDaysOff[day-1]
}

// RequiredDaysOff is the number of common days off in the period.
func (in *Input) RequiredDaysOff() int {
	return calendar.CountDaysOff(in.CommonDaysOff)
}

// CarryoverFor returns the staff member's carryover, zero when unknown.
func (in *Input) CarryoverFor(staffID string) Carryover {
	return in.Carryover[staffID]
}

// Validate checks the structural consistency of the input.
func (in *Input) Validate() error {
	days := in.Days()

	if err := in.Params.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if len(in.CommonDaysOff) != days {
		return fmt.Errorf("calendar row has %d days, period %s has %d", len(in.CommonDaysOff), in.Period, days)
	}
	if len(in.Requirements) != days {
		return fmt.Errorf("requirements cover %d days, period %s has %d", len(in.Requirements), in.Period, days)
	}
	for i, req := range in.Requirements {
		for _, shift := range model.ShiftTypes {
			if req.Of(shift) < 0 {
				return fmt.Errorf("day %d: negative %s requirement %d", i+1, shift, req.Of(shift))
			}
		}
	}

	seen := make(map[string]bool, len(in.Staff))
	for _, s := range in.Staff {
		if s.ID == "" {
			return fmt.Errorf("staff %q has no ID", s.Name)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate staff ID %q", s.ID)
		}
		seen[s.ID] = true
		if in.Leader != nil && s.ID == in.Leader.ID {
			return fmt.Errorf("leader %q must not be listed among staff", s.ID)
		}
	}

	for id, row := range in.Requests {
		if len(row) > days {
			return fmt.Errorf("staff %q has %d request cells, period has %d days", id, len(row), days)
		}
		for i, l := range row {
			if !l.IsValid() {
				return fmt.Errorf("staff %q day %d: invalid request %q", id, i+1, l)
			}
		}
	}
	for i, l := range in.LeaderRequests {
		if !l.IsValid() {
			return fmt.Errorf("leader day %d: invalid request %q", i+1, l)
		}
	}

	return nil
}

// UnknownRequestRows returns the IDs of request rows that belong to no staff
// member. Such rows are ignored by the optimizer.
func (in *Input) UnknownRequestRows() []string {
	known := make(map[string]bool, len(in.Staff))
	for _, s := range in.Staff {
		known[s.ID] = true
	}
	var unknown []string
	for id := range in.Requests {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ShortDays returns the days (1-based) on which fewer people are available,
// leader included, than the total required headcount.
func (in *Input) ShortDays() []int {
	var short []int
	for day := 1; day <= in.Days(); day++ {
		available := 0
		for _, s := range in.Staff {
			if !in.Request(s.ID, day).IsDayOff() {
				available++
			}
		}
		if in.Leader != nil && !in.LeaderRequest(day).IsDayOff() {
			available++
		}
		if available < in.Requirement(day).Total() {
			short = append(short, day)
		}
	}
	return short
}

// RequestedDaysOff counts the day-off codes in a request row.
func RequestedDaysOff(row []model.Label) int {
	n := 0
	for _, l := range row {
		if l.IsDayOff() {
			n++
		}
	}
	return n
}

func labelAt(row []model.Label, day int) model.Label {
	if day < 1 || day > len(row) {
		return model.LabelUnassigned
	}
	return row[day-1]
}
