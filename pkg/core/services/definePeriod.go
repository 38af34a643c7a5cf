package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/db"
)

// DefinePeriodResult represents the result of defining a new period
type DefinePeriodResult struct {
	Period        *db.Period
	Calendar      calendar.Period
	Leader        *model.Staff
	Requirements  []scheduling.Headcount
	CommonDaysOff int
}

// DefinePeriod creates the period record of a month. The common day-off row
// comes from the configured calendar rules and holidays, every day starts at
// the base requirements, and the leader is leaderID or, when empty, the first
// Leader in the directory.
func DefinePeriod(
	ctx context.Context,
	database db.PeriodStore,
	directory StaffDirectory,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
	leaderID string,
) (*DefinePeriodResult, error) {
	cal, err := calendar.ParsePeriod(month)
	if err != nil {
		return nil, err
	}

	logger.Debug("Defining period", zap.String("month", cal.String()), zap.String("leader_id", leaderID))

	_, err = database.GetPeriod(ctx, cal.String())
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPeriodExists, cal)
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing period: %w", err)
	}

	logger.Debug("Fetching staff directory")
	staff, err := directory.ListStaff(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}

	var leader *model.Staff
	if leaderID != "" {
		leader = findStaff(staff, leaderID)
		if leader == nil {
			return nil, fmt.Errorf("leader %q not found in staff directory", leaderID)
		}
	} else {
		leader = defaultLeader(staff)
	}
	if leader == nil {
		logger.Warn("No leader in staff directory, requirements will not be adjusted")
	}

	commonDaysOff, err := calendar.CommonDaysOff(cal, cfg.CommonDaysOff, cfg.Holidays)
	if err != nil {
		return nil, fmt.Errorf("failed to compute common days off: %w", err)
	}

	// No leader requests exist yet, so every day is at base
	requirements := scheduling.DeriveRequirements(cfg.BaseRequirements(), commonDaysOff, nil)

	period := &db.Period{
		ID:            uuid.New().String(),
		Month:         cal.String(),
		CommonDaysOff: commonDaysOff,
		CreatedAt:     time.Now(),
	}
	if leader != nil {
		period.LeaderID = leader.ID
	}

	if err := database.InsertPeriod(ctx, period, requirementsToDB(period.ID, requirements, nil)); err != nil {
		return nil, fmt.Errorf("failed to insert period: %w", err)
	}

	logger.Info("Period defined",
		zap.String("period_id", period.ID),
		zap.String("month", period.Month),
		zap.String("leader_id", period.LeaderID),
		zap.Int("common_days_off", calendar.CountDaysOff(commonDaysOff)))

	return &DefinePeriodResult{
		Period:        period,
		Calendar:      cal,
		Leader:        leader,
		Requirements:  requirements,
		CommonDaysOff: calendar.CountDaysOff(commonDaysOff),
	}, nil
}
