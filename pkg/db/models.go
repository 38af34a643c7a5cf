package db

import "time"

// Period represents a defined scheduling month
type Period struct {
	ID            string
	Month         string // YYYY-MM
	LeaderID      string
	CommonDaysOff []bool
	CreatedAt     time.Time
}

// Requirement represents the minimum headcount of one shift on one day
type Requirement struct {
	PeriodID  string
	Day       int
	Shift     string
	Headcount int
}

// Request represents a staff member's requested code for one day
type Request struct {
	PeriodID string
	StaffID  string
	Day      int
	Code     string
}

// RosterCell represents one committed cell of a period's roster
type RosterCell struct {
	PeriodID  string
	RunID     string
	StaffID   string
	StaffName string
	RowIndex  int
	Day       int
	Code      string
}

// OptimizationRun represents a single solve of a period, whatever its outcome
type OptimizationRun struct {
	ID         string
	PeriodID   string
	Backend    string
	Status     string
	Objective  float64
	Conflicts  int64
	Branches   int64
	WallTimeMs int64
	Variables  int
	RowCount   int
	Violations int
	Committed  bool
	StartedAt  time.Time
}
