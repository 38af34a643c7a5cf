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

// SetLeaderStore defines the database operations needed to change a leader
type SetLeaderStore interface {
	GetPeriod(ctx context.Context, month string) (*db.Period, error)
	GetRequests(ctx context.Context, periodID string) ([]db.Request, error)
	SetPeriodLeader(ctx context.Context, periodID, leaderID string, requirements []db.Requirement) error
}

// SetLeaderResult reports a leader change
type SetLeaderResult struct {
	Calendar         calendar.Period
	PreviousLeaderID string
	// Leader is nil when the period was left without a leader
	Leader       *model.Staff
	Requirements []scheduling.Headcount
	// AdjustedDays are the days whose requirements differ from the base
	AdjustedDays []int
}

// SetLeader designates leaderID as the period's leader, or clears the leader
// when leaderID is empty. Every day's requirements are derived again from the
// base and the new leader's requests, replacing manual overrides.
func SetLeader(
	ctx context.Context,
	database SetLeaderStore,
	directory StaffDirectory,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
	leaderID string,
) (*SetLeaderResult, error) {
	period, cal, err := loadPeriod(ctx, database, month)
	if err != nil {
		return nil, err
	}

	logger.Debug("Changing period leader",
		zap.String("month", cal.String()),
		zap.String("from", period.LeaderID),
		zap.String("to", leaderID))

	result := &SetLeaderResult{Calendar: cal, PreviousLeaderID: period.LeaderID}

	var leaderRequests []model.Label
	if leaderID != "" {
		staff, err := directory.ListStaff(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch staff: %w", err)
		}
		result.Leader = findStaff(staff, leaderID)
		if result.Leader == nil {
			return nil, fmt.Errorf("leader %q not found in staff directory", leaderID)
		}

		requests, err := database.GetRequests(ctx, period.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch requests: %w", err)
		}
		grid, err := requestGrid(requests, cal.DaysInMonth())
		if err != nil {
			return nil, err
		}
		leaderRequests = grid[leaderID]
	}

	base := cfg.BaseRequirements()
	result.Requirements = scheduling.DeriveRequirements(base, period.CommonDaysOff, leaderRequests)
	for i, req := range result.Requirements {
		if req != base {
			result.AdjustedDays = append(result.AdjustedDays, i+1)
		}
	}

	err = database.SetPeriodLeader(ctx, period.ID, leaderID, requirementsToDB(period.ID, result.Requirements, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to set period leader: %w", err)
	}

	logger.Info("Period leader changed",
		zap.String("month", cal.String()),
		zap.String("previous_leader_id", result.PreviousLeaderID),
		zap.String("leader_id", leaderID),
		zap.Ints("adjusted_days", result.AdjustedDays))

	return result, nil
}
