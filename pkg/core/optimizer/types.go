package optimizer

import (
	"fmt"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver"
)

// Constraint is one family of hard constraints. Apply adds its rows to the
// model being built; Validate checks a materialized roster against the same
// rule so that solver output can be verified independently of the backend.
type Constraint interface {
	// Name is the prefix of every row the constraint adds.
	Name() string
	Apply(b *Builder)
	Validate(in *scheduling.Input, roster *Roster) []Violation
}

// Violation describes a roster cell, or row when Day is 0, that breaks a
// hard constraint.
type Violation struct {
	Constraint  string
	StaffID     string
	Day         int
	Description string
}

// RosterRow is one person's labels for the period.
type RosterRow struct {
	StaffID string
	// Cells is indexed by day-1.
	Cells []model.Label
	// DaysOff is the number of day-off labels in Cells.
	DaysOff int
}

// Cell returns the label of day (1-based).
func (r *RosterRow) Cell(day int) model.Label {
	if day < 1 || day > len(r.Cells) {
		return model.LabelUnassigned
	}
	return r.Cells[day-1]
}

// Worked counts the shift labels from day from to day to inclusive.
func (r *RosterRow) Worked(from, to int) int {
	n := 0
	for day := from; day <= to; day++ {
		if r.Cell(day).IsShift() {
			n++
		}
	}
	return n
}

// CountShift counts the labels of one shift type across the whole row.
func (r *RosterRow) CountShift(shift model.ShiftType) int {
	n := 0
	for _, l := range r.Cells {
		if s, ok := l.ShiftType(); ok && s == shift {
			n++
		}
	}
	return n
}

func (r *RosterRow) recountDaysOff() {
	r.DaysOff = scheduling.RequestedDaysOff(r.Cells)
}

// Roster is the output artifact of a run: one row per optimised staff
// member, in input order, plus the leader's row.
type Roster struct {
	Period calendar.Period
	Rows   []RosterRow
	Leader *RosterRow
}

// Row returns the row of staffID, including the leader's, or nil.
func (r *Roster) Row(staffID string) *RosterRow {
	for i := range r.Rows {
		if r.Rows[i].StaffID == staffID {
			return &r.Rows[i]
		}
	}
	if r.Leader != nil && r.Leader.StaffID == staffID {
		return r.Leader
	}
	return nil
}

// Count returns how many staff rows, leader excluded, carry shift on day.
func (r *Roster) Count(day int, shift model.ShiftType) int {
	n := 0
	for i := range r.Rows {
		if s, ok := r.Rows[i].Cell(day).ShiftType(); ok && s == shift {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (r *Roster) Clone() *Roster {
	out := &Roster{Period: r.Period, Rows: make([]RosterRow, len(r.Rows))}
	for i, row := range r.Rows {
		out.Rows[i] = RosterRow{StaffID: row.StaffID, Cells: append([]model.Label(nil), row.Cells...), DaysOff: row.DaysOff}
	}
	if r.Leader != nil {
		leader := RosterRow{StaffID: r.Leader.StaffID, Cells: append([]model.Label(nil), r.Leader.Cells...), DaysOff: r.Leader.DaysOff}
		out.Leader = &leader
	}
	return out
}

// VarIndex maps (staff, day, shift) to the decision variable of a model.
type VarIndex struct {
	staffIDs []string
	position map[string]int
	days     int
	vars     []solver.Var
}

func newVarIndex(staff []model.Staff, days int) *VarIndex {
	idx := &VarIndex{
		staffIDs: make([]string, len(staff)),
		position: make(map[string]int, len(staff)),
		days:     days,
		vars:     make([]solver.Var, len(staff)*days*model.NumShiftTypes),
	}
	for i, s := range staff {
		idx.staffIDs[i] = s.ID
		idx.position[s.ID] = i
	}
	return idx
}

func (x *VarIndex) offset(staffIdx, day int, shift model.ShiftType) int {
	return (staffIdx*x.days+(day-1))*model.NumShiftTypes + int(shift)
}

// At returns the variable of the staffIdx-th staff member.
func (x *VarIndex) At(staffIdx, day int, shift model.ShiftType) solver.Var {
	return x.vars[x.offset(staffIdx, day, shift)]
}

// Lookup returns the variable of staffID, if the staff member has variables.
func (x *VarIndex) Lookup(staffID string, day int, shift model.ShiftType) (solver.Var, bool) {
	i, ok := x.position[staffID]
	if !ok || day < 1 || day > x.days {
		return 0, false
	}
	return x.At(i, day, shift), true
}

// Len is the number of variables.
func (x *VarIndex) Len() int {
	return len(x.vars)
}

// VarName is the name given to a decision variable.
func VarName(staffID string, day int, shift model.ShiftType) string {
	return fmt.Sprintf("%s/d%02d/%s", staffID, day, shift)
}
