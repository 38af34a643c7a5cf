package model

import "strings"

// ShiftType is one of the three daily shifts. The order is fixed and is used
// as the third index of the decision variable grid.
type ShiftType int

const (
	ShiftNight ShiftType = iota
	ShiftDay
	ShiftEvening
)

// ShiftTypes lists every shift in index order.
var ShiftTypes = [...]ShiftType{ShiftNight, ShiftDay, ShiftEvening}

// NumShiftTypes is the number of shift variables per staff-day.
const NumShiftTypes = len(ShiftTypes)

func (s ShiftType) String() string {
	switch s {
	case ShiftNight:
		return "NIGHT"
	case ShiftDay:
		return "DAY"
	case ShiftEvening:
		return "EVENING"
	}
	return "UNKNOWN"
}

// Label returns the roster label used for the shift.
func (s ShiftType) Label() Label {
	switch s {
	case ShiftNight:
		return LabelNight
	case ShiftEvening:
		return LabelEvening
	}
	return LabelDay
}

// Others returns the two shift types other than s.
func (s ShiftType) Others() [2]ShiftType {
	var out [2]ShiftType
	i := 0
	for _, t := range ShiftTypes {
		if t != s {
			out[i] = t
			i++
		}
	}
	return out
}

// Hours returns the clock window of the shift as [start, end) hours of its day.
func (s ShiftType) Hours() (start, end int) {
	switch s {
	case ShiftNight:
		return 0, 8
	case ShiftEvening:
		return 16, 24
	}
	return 8, 16
}

// ParseShiftType accepts either the roster label ("PH", "DAY", "4N") or the
// shift name ("NIGHT", "DAY", "EVENING"), case-insensitively.
func ParseShiftType(s string) (ShiftType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LabelNight), "NIGHT":
		return ShiftNight, true
	case string(LabelDay):
		return ShiftDay, true
	case string(LabelEvening), "EVENING":
		return ShiftEvening, true
	}
	return 0, false
}

// Label is the content of a single request or roster cell.
type Label string

const (
	LabelNight   Label = "PH"
	LabelDay     Label = "DAY"
	LabelEvening Label = "4N"

	LabelDayOffA        Label = "WW"
	LabelDayOffB        Label = "FF"
	LabelBusinessTravel Label = "SS"
	LabelUnassigned     Label = ""
)

// ParseLabel normalises user input into a Label.
func ParseLabel(s string) (Label, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if shift, ok := ParseShiftType(trimmed); ok {
		return shift.Label(), true
	}
	l := Label(trimmed)
	switch l {
	case LabelDayOffA, LabelDayOffB, LabelBusinessTravel, LabelUnassigned:
		return l, true
	}
	return "", false
}

// IsValid reports whether l is one of the known cell values.
func (l Label) IsValid() bool {
	return l.IsShift() || l.IsDayOff() || l == LabelUnassigned
}

// ShiftType returns the shift the label stands for, if any.
func (l Label) ShiftType() (ShiftType, bool) {
	switch l {
	case LabelNight:
		return ShiftNight, true
	case LabelDay:
		return ShiftDay, true
	case LabelEvening:
		return ShiftEvening, true
	}
	return 0, false
}

// IsShift reports whether the label is a working shift.
func (l Label) IsShift() bool {
	_, ok := l.ShiftType()
	return ok
}

// IsDayOff reports whether the label is one of the day-off codes.
func (l Label) IsDayOff() bool {
	return l == LabelDayOffA || l == LabelDayOffB || l == LabelBusinessTravel
}

// IsRequestedOff reports whether the label is one of the two interchangeable
// requested-off codes.
func (l Label) IsRequestedOff() bool {
	return l == LabelDayOffA || l == LabelDayOffB
}

type Role string

const (
	RoleLeader Role = "Leader"
	RoleStaff  Role = "Staff"
)

func (r Role) IsValid() bool {
	return r == RoleLeader || r == RoleStaff
}

// Preference is the shift a staff member favours. The zero value is DAY.
type Preference int

const (
	PreferDay Preference = iota
	PreferNight
	PreferEvening
)

// PreferenceFor returns the preference for shift.
func PreferenceFor(shift ShiftType) Preference {
	switch shift {
	case ShiftNight:
		return PreferNight
	case ShiftEvening:
		return PreferEvening
	}
	return PreferDay
}

// Shift returns the preferred shift type.
func (p Preference) Shift() ShiftType {
	switch p {
	case PreferNight:
		return ShiftNight
	case PreferEvening:
		return ShiftEvening
	}
	return ShiftDay
}

// HasQuota reports whether the preference carries a monthly minimum of its
// shift. Only NIGHT and EVENING do.
func (p Preference) HasQuota() bool {
	return p == PreferNight || p == PreferEvening
}

func (p Preference) String() string {
	return p.Shift().String()
}

// Staff is an entry of the staff directory. ID is the stable key used to
// match staff across periods; Name is display only.
type Staff struct {
	ID          string
	ExternalID  string
	Name        string
	Role        Role
	Preference  Preference
	Restriction *ShiftType
}

// IsLeader reports whether the entry is a designated leader.
func (s Staff) IsLeader() bool {
	return s.Role == RoleLeader
}
