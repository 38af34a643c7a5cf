package optimizer

import (
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
)

// CellRef identifies a roster cell.
type CellRef struct {
	StaffID string
	Day     int
}

// Highlights are presentation-only flags over a roster.
type Highlights struct {
	// UnhonoredDaysOff are cells where WW or FF was requested but not given.
	UnhonoredDaysOff []CellRef
	// Overstaffed are cells whose shift has more people that day than
	// required. Every holder of that shift on that day is flagged.
	Overstaffed []CellRef

	unhonored   map[CellRef]bool
	overstaffed map[CellRef]bool
}

func (h Highlights) IsUnhonored(staffID string, day int) bool {
	return h.unhonored[CellRef{StaffID: staffID, Day: day}]
}

func (h Highlights) IsOverstaffed(staffID string, day int) bool {
	return h.overstaffed[CellRef{StaffID: staffID, Day: day}]
}

// Highlight compares a roster with the requests and requirements of in. The
// leader's row is not considered.
func Highlight(in *scheduling.Input, roster *Roster) Highlights {
	h := Highlights{
		unhonored:   make(map[CellRef]bool),
		overstaffed: make(map[CellRef]bool),
	}
	days := roster.Period.DaysInMonth()

	for _, row := range roster.Rows {
		for day := 1; day <= days; day++ {
			if in.Request(row.StaffID, day).IsRequestedOff() && !row.Cell(day).IsRequestedOff() {
				ref := CellRef{StaffID: row.StaffID, Day: day}
				h.UnhonoredDaysOff = append(h.UnhonoredDaysOff, ref)
				h.unhonored[ref] = true
			}
		}
	}

	for day := 1; day <= days; day++ {
		req := in.Requirement(day)
		for _, shift := range model.ShiftTypes {
			if roster.Count(day, shift) <= req.Of(shift) {
				continue
			}
			for _, row := range roster.Rows {
				if s, ok := row.Cell(day).ShiftType(); ok && s == shift {
					ref := CellRef{StaffID: row.StaffID, Day: day}
					h.Overstaffed = append(h.Overstaffed, ref)
					h.overstaffed[ref] = true
				}
			}
		}
	}

	return h
}
