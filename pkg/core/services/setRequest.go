package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/db"
)

// SetRequestStore defines the database operations needed to edit requests
type SetRequestStore interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
	SaveRequests(ctx context.Context, requests []db.Request, requirements []db.Requirement) error
	UpsertRequirements(ctx context.Context, requirements []db.Requirement) error
}

// SetRequestResult reports what a request edit changed
type SetRequestResult struct {
	StaffID string
	Code    model.Label
	Days    []int
	// Requirements holds the recomputed headcounts by day when the staff
	// member is the period's leader
	Requirements map[int]scheduling.Headcount
}

// SetRequest writes code into the request grid for each of days. An empty
// code clears the cells. When staffID is the period's leader, the affected
// days' requirements are recomputed from the base with the leader rule.
func SetRequest(
	ctx context.Context,
	database SetRequestStore,
	directory StaffDirectory,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
	staffID string,
	days []int,
	code string,
) (*SetRequestResult, error) {
	label, ok := model.ParseLabel(code)
	if !ok {
		return nil, fmt.Errorf("unknown request code %q", code)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no days given")
	}

	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return nil, err
	}

	for _, day := range days {
		if day < 1 || day > cal.DaysInMonth() {
			return nil, fmt.Errorf("day %d outside 1..%d of %s", day, cal.DaysInMonth(), cal)
		}
	}

	staff, err := directory.ListStaff(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	if findStaff(staff, staffID) == nil {
		return nil, fmt.Errorf("staff %q not found in staff directory", staffID)
	}

	requests := make([]db.Request, len(days))
	for i, day := range days {
		requests[i] = db.Request{PeriodID: period.ID, StaffID: staffID, Day: day, Code: string(label)}
	}

	result := &SetRequestResult{StaffID: staffID, Code: label, Days: days}

	// Manual overrides on the leader's days are replaced by the derived values
	var requirements []db.Requirement
	if staffID == period.LeaderID {
		reqs := make([]scheduling.Headcount, cal.DaysInMonth())
		result.Requirements = make(map[int]scheduling.Headcount, len(days))
		for _, day := range days {
			reqs[day-1] = scheduling.AdjustForLeader(cfg.BaseRequirements(), label, period.CommonDaysOff[day-1])
			result.Requirements[day] = reqs[day-1]
		}
		requirements = requirementsToDB(period.ID, reqs, days)
	}

	if err := database.SaveRequests(ctx, requests, requirements); err != nil {
		return nil, fmt.Errorf("failed to save requests: %w", err)
	}

	logger.Info("Requests updated",
		zap.String("month", cal.String()),
		zap.String("staff_id", staffID),
		zap.Ints("days", days),
		zap.String("code", string(label)))
	if requirements != nil {
		logger.Info("Leader requirements recomputed", zap.Ints("days", days))
	}

	return result, nil
}

// SetRequirement overrides the headcount of one shift on one day
func SetRequirement(
	ctx context.Context,
	database SetRequestStore,
	logger *zap.Logger,
	month string,
	day int,
	shift string,
	headcount int,
) error {
	shiftType, ok := model.ParseShiftType(shift)
	if !ok {
		return fmt.Errorf("unknown shift %q", shift)
	}
	if headcount < 0 {
		return fmt.Errorf("headcount must not be negative, got %d", headcount)
	}

	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return err
	}
	if day < 1 || day > cal.DaysInMonth() {
		return fmt.Errorf("day %d outside 1..%d of %s", day, cal.DaysInMonth(), cal)
	}

	err = database.UpsertRequirements(ctx, []db.Requirement{{
		PeriodID:  period.ID,
		Day:       day,
		Shift:     shiftType.String(),
		Headcount: headcount,
	}})
	if err != nil {
		return fmt.Errorf("failed to update requirement: %w", err)
	}

	logger.Info("Requirement overridden",
		zap.String("month", cal.String()),
		zap.Int("day", day),
		zap.String("shift", shiftType.String()),
		zap.Int("headcount", headcount))

	return nil
}
