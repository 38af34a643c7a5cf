package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/db"
)

var (
	// ErrPeriodNotFound is returned when a month has not been defined
	ErrPeriodNotFound = errors.New("period not defined")
	// ErrPeriodExists is returned when a month is defined twice
	ErrPeriodExists = errors.New("period already defined")
	// ErrNoRoster is returned when a period has no committed roster
	ErrNoRoster = errors.New("no roster committed for period")
)

// StaffDirectory lists the people who can be rostered
type StaffDirectory interface {
	ListStaff(cfg *config.Config) ([]model.Staff, error)
}

// RosterPublisher writes a roster grid to a spreadsheet
type RosterPublisher interface {
	PublishRoster(spreadsheetID string, roster *sheetsclient.PublishedRoster) error
}

// periodGetter is the lookup every service starts from
type periodGetter interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
}

type rosterGetter interface {
	GetRoster(ctx context.Context, periodID string) ([]db.RosterCell, error)
}

// loadPeriod resolves a YYYY-MM month to its stored period
func loadPeriod(ctx context.Context, database periodGetter, month string) (*db.Period, calendar.Period, error) {
	cal, err := calendar.ParsePeriod(month)
	if err != nil {
		return nil, calendar.Period{}, err
	}

	period, err := database.GetPeriod(ctx, cal.String())
	if errors.Is(err, db.ErrNotFound) {
		return nil, cal, fmt.Errorf("%w: %s", ErrPeriodNotFound, cal)
	}
	if err != nil {
		return nil, cal, fmt.Errorf("failed to fetch period: %w", err)
	}

	if len(period.CommonDaysOff) != cal.DaysInMonth() {
		return nil, cal, fmt.Errorf("period %s has %d calendar days stored, expected %d", cal, len(period.CommonDaysOff), cal.DaysInMonth())
	}

	return period, cal, nil
}

// splitLeader separates the period's leader from the rostered staff.
// The leader is nil when leaderID is empty or not in the directory.
func splitLeader(staff []model.Staff, leaderID string) ([]model.Staff, *model.Staff) {
	var leader *model.Staff
	rows := make([]model.Staff, 0, len(staff))
	for i := range staff {
		if leaderID != "" && staff[i].ID == leaderID {
			s := staff[i]
			leader = &s
			continue
		}
		rows = append(rows, staff[i])
	}
	return rows, leader
}

// defaultLeader returns the first directory entry with the Leader role
func defaultLeader(staff []model.Staff) *model.Staff {
	for i := range staff {
		if staff[i].IsLeader() {
			return &staff[i]
		}
	}
	return nil
}

func findStaff(staff []model.Staff, id string) *model.Staff {
	for i := range staff {
		if staff[i].ID == id {
			return &staff[i]
		}
	}
	return nil
}

// requestGrid groups stored requests into day-indexed rows keyed by staff ID
func requestGrid(requests []db.Request, days int) (map[string][]model.Label, error) {
	grid := make(map[string][]model.Label)
	for _, r := range requests {
		if r.Day < 1 || r.Day > days {
			return nil, fmt.Errorf("request of %s has day %d outside 1..%d", r.StaffID, r.Day, days)
		}
		label, ok := model.ParseLabel(r.Code)
		if !ok {
			return nil, fmt.Errorf("request of %s on day %d has unknown code %q", r.StaffID, r.Day, r.Code)
		}
		row, exists := grid[r.StaffID]
		if !exists {
			row = make([]model.Label, days)
			grid[r.StaffID] = row
		}
		row[r.Day-1] = label
	}
	return grid, nil
}

// requirementsFromDB rebuilds the per-day headcount table. Days or shifts
// without a stored row read as zero.
func requirementsFromDB(rows []db.Requirement, days int) ([]scheduling.Headcount, error) {
	reqs := make([]scheduling.Headcount, days)
	for _, r := range rows {
		if r.Day < 1 || r.Day > days {
			return nil, fmt.Errorf("requirement has day %d outside 1..%d", r.Day, days)
		}
		shift, ok := model.ParseShiftType(r.Shift)
		if !ok {
			return nil, fmt.Errorf("requirement on day %d has unknown shift %q", r.Day, r.Shift)
		}
		reqs[r.Day-1][shift] = r.Headcount
	}
	return reqs, nil
}

// requirementsToDB flattens headcounts for the given days (all when nil)
func requirementsToDB(periodID string, reqs []scheduling.Headcount, days []int) []db.Requirement {
	if days == nil {
		for d := 1; d <= len(reqs); d++ {
			days = append(days, d)
		}
	}

	var rows []db.Requirement
	for _, day := range days {
		for _, shift := range model.ShiftTypes {
			rows = append(rows, db.Requirement{
				PeriodID:  periodID,
				Day:       day,
				Shift:     shift.String(),
				Headcount: reqs[day-1].Of(shift),
			})
		}
	}
	return rows
}

// StoredRosterRow is one person's committed roster line
type StoredRosterRow struct {
	StaffID string
	Name    string
	Cells   []model.Label
	DaysOff int
	Leader  bool
}

// StoredRoster is the committed roster of a period in row order
type StoredRoster struct {
	Period   *db.Period
	Calendar calendar.Period
	RunID    string
	Rows     []StoredRosterRow
}

// loadRoster fetches and regroups the committed cells of a period
func loadRoster(ctx context.Context, database rosterGetter, period *db.Period, cal calendar.Period) (*StoredRoster, error) {
	cells, err := database.GetRoster(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRoster, cal)
	}

	days := cal.DaysInMonth()
	roster := &StoredRoster{Period: period, Calendar: cal, RunID: cells[0].RunID}
	byStaff := make(map[string]*StoredRosterRow)
	order := make(map[string]int)

	for _, c := range cells {
		if c.Day < 1 || c.Day > days {
			return nil, fmt.Errorf("roster cell of %s has day %d outside 1..%d", c.StaffID, c.Day, days)
		}
		row, ok := byStaff[c.StaffID]
		if !ok {
			row = &StoredRosterRow{
				StaffID: c.StaffID,
				Name:    c.StaffName,
				Cells:   make([]model.Label, days),
				Leader:  c.StaffID == period.LeaderID,
			}
			byStaff[c.StaffID] = row
			order[c.StaffID] = c.RowIndex
		}
		row.Cells[c.Day-1] = model.Label(c.Code)
	}

	for _, row := range byStaff {
		row.DaysOff = scheduling.RequestedDaysOff(row.Cells)
		roster.Rows = append(roster.Rows, *row)
	}
	sort.Slice(roster.Rows, func(i, j int) bool {
		return order[roster.Rows[i].StaffID] < order[roster.Rows[j].StaffID]
	})

	return roster, nil
}

// CellsByStaff returns the stored rows keyed by staff ID
func (r *StoredRoster) CellsByStaff() map[string][]model.Label {
	out := make(map[string][]model.Label, len(r.Rows))
	for _, row := range r.Rows {
		out[row.StaffID] = row.Cells
	}
	return out
}

// logDirectoryMismatch warns about request rows for unknown staff
func logDirectoryMismatch(logger *zap.Logger, staff []model.Staff, grid map[string][]model.Label, leaderID string) {
	for id := range grid {
		if id != leaderID && findStaff(staff, id) == nil {
			logger.Warn("Requests found for staff not in the directory", zap.String("staff_id", id))
		}
	}
}
