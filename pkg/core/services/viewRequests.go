package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/db"
)

// ViewRequestsStore defines the database operations needed to view requests
type ViewRequestsStore interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
	GetRequirements(ctx context.Context, periodID string) ([]db.Requirement, error)
	GetRequests(ctx context.Context, periodID string) ([]db.Request, error)
}

// StaffRequests is one person's line of the request grid
type StaffRequests struct {
	Staff   model.Staff
	Cells   []model.Label
	DaysOff int
}

// RequestsView is the request grid of a period with its derived totals
type RequestsView struct {
	Period        *db.Period
	Calendar      calendar.Period
	Staff         []StaffRequests
	Leader        *StaffRequests
	Requirements  []scheduling.Headcount
	CommonDaysOff []bool
	// TotalCommonDaysOff is the statutory number of days off per person
	TotalCommonDaysOff int
	// ShortDays have fewer available people than required
	ShortDays []int
}

// ViewRequests assembles the request grid of a month in directory order
func ViewRequests(
	ctx context.Context,
	database ViewRequestsStore,
	directory StaffDirectory,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
) (*RequestsView, error) {
	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return nil, err
	}

	in, err := loadInput(ctx, database, directory, cfg, logger, period, cal)
	if err != nil {
		return nil, err
	}

	view := &RequestsView{
		Period:             period,
		Calendar:           cal,
		Requirements:       in.Requirements,
		CommonDaysOff:      in.CommonDaysOff,
		TotalCommonDaysOff: in.RequiredDaysOff(),
		ShortDays:          in.ShortDays(),
	}

	for _, s := range in.Staff {
		view.Staff = append(view.Staff, staffRequests(s, in.Requests[s.ID], cal.DaysInMonth()))
	}
	if in.Leader != nil {
		leader := staffRequests(*in.Leader, in.LeaderRequests, cal.DaysInMonth())
		view.Leader = &leader
	}

	if len(view.ShortDays) > 0 {
		logger.Warn("Fewer staff available than required", zap.Ints("days", view.ShortDays))
	}

	return view, nil
}

func staffRequests(s model.Staff, row []model.Label, days int) StaffRequests {
	cells := make([]model.Label, days)
	copy(cells, row)
	return StaffRequests{Staff: s, Cells: cells, DaysOff: scheduling.RequestedDaysOff(cells)}
}

// loadInput gathers everything but carryover and parameters for a period
func loadInput(
	ctx context.Context,
	database ViewRequestsStore,
	directory StaffDirectory,
	cfg *config.Config,
	logger *zap.Logger,
	period *db.Period,
	cal calendar.Period,
) (*scheduling.Input, error) {
	days := cal.DaysInMonth()

	staff, err := directory.ListStaff(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	rows, leader := splitLeader(staff, period.LeaderID)
	if period.LeaderID != "" && leader == nil {
		logger.Warn("Period leader not found in staff directory", zap.String("leader_id", period.LeaderID))
	}

	storedReqs, err := database.GetRequirements(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requirements: %w", err)
	}
	requirements, err := requirementsFromDB(storedReqs, days)
	if err != nil {
		return nil, err
	}

	storedRequests, err := database.GetRequests(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	grid, err := requestGrid(storedRequests, days)
	if err != nil {
		return nil, err
	}
	logDirectoryMismatch(logger, staff, grid, period.LeaderID)

	in := &scheduling.Input{
		Period:        cal,
		Staff:         rows,
		Leader:        leader,
		CommonDaysOff: period.CommonDaysOff,
		Requirements:  requirements,
		Requests:      grid,
	}
	if leader != nil {
		in.LeaderRequests = grid[leader.ID]
		delete(grid, leader.ID)
	}
	return in, nil
}
