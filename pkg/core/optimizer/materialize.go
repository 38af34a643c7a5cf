package optimizer

import (
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// shiftPrecedence decides the label when several shift variables of the same
// staff-day are true.
var shiftPrecedence = [...]model.ShiftType{model.ShiftNight, model.ShiftDay, model.ShiftEvening}

// Materialize turns a solved model back into a roster. Days without a shift
// become the requested day-off code, or DAY_OFF_A when none was requested.
// The leader's row is their requests with empty cells set to DAY. It also
// returns the number of staff-days that had more than one shift set.
func Materialize(in *scheduling.Input, vars *VarIndex, result *solver.Result) (*Roster, int) {
	days := in.Days()
	roster := &Roster{Period: in.Period, Rows: make([]RosterRow, len(in.Staff))}

	ambiguous := 0
	for i, s := range in.Staff {
		row := RosterRow{StaffID: s.ID, Cells: make([]model.Label, days)}
		for day := 1; day <= days; day++ {
			label, multiple := materializeCell(in.Request(s.ID, day), func(shift model.ShiftType) bool {
				return result.Value(vars.At(i, day, shift))
			})
			if multiple {
				ambiguous++
			}
			row.Cells[day-1] = label
		}
		row.recountDaysOff()
		roster.Rows[i] = row
	}

	if in.Leader != nil {
		roster.Leader = leaderRow(in)
	}
	return roster, ambiguous
}

func materializeCell(request model.Label, assigned func(model.ShiftType) bool) (model.Label, bool) {
	var chosen model.Label
	count := 0
	for _, shift := range shiftPrecedence {
		if assigned(shift) {
			if count == 0 {
				chosen = shift.Label()
			}
			count++
		}
	}
	if count > 0 {
		return chosen, count > 1
	}

	switch request {
	case model.LabelBusinessTravel, model.LabelDayOffA, model.LabelDayOffB:
		return request, false
	}
	return model.LabelDayOffA, false
}

func leaderRow(in *scheduling.Input) *RosterRow {
	days := in.Days()
	row := &RosterRow{StaffID: in.Leader.ID, Cells: make([]model.Label, days)}
	for day := 1; day <= days; day++ {
		label := in.LeaderRequest(day)
		if label == model.LabelUnassigned {
			label = model.LabelDay
		}
		row.Cells[day-1] = label
	}
	row.recountDaysOff()
	return row
}
