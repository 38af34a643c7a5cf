package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
)

func weekendConfig() *config.Config {
	cfg := config.Default()
	cfg.StaffSheetID = "staff-sheet"
	cfg.StaffTab = "Staff"
	return cfg
}

func TestDefinePeriod_Success(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()

	result, err := DefinePeriod(ctx, store, testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "")
	require.NoError(t, err)

	assert.Equal(t, "2024-06", result.Period.Month)
	assert.NotEmpty(t, result.Period.ID)
	assert.Equal(t, 10, result.CommonDaysOff, "June 2024 has five full weekends")
	assert.True(t, result.Period.CommonDaysOff[0], "June 1st 2024 is a Saturday")
	assert.False(t, result.Period.CommonDaysOff[2])

	require.NotNil(t, result.Leader)
	assert.Equal(t, "lead", result.Leader.ID)
	assert.Equal(t, "lead", result.Period.LeaderID)

	require.Len(t, result.Requirements, 30)
	assert.Equal(t, scheduling.NewHeadcount(2, 4, 3), result.Requirements[0])

	stored, ok := store.periods["2024-06"]
	require.True(t, ok)
	assert.Equal(t, result.Period.ID, stored.ID)
	assert.Len(t, store.requirements[stored.ID], 90)
	headcount, ok := store.requirementOf(stored.ID, 30, "EVENING")
	require.True(t, ok)
	assert.Equal(t, 3, headcount)
}

func TestDefinePeriod_Holidays(t *testing.T) {
	cfg := weekendConfig()
	cfg.Holidays = []string{"2024-06-10", "2024-07-04"}

	result, err := DefinePeriod(context.Background(), newMockStore(), testDirectory(), cfg, zap.NewNop(), "2024-06", "")
	require.NoError(t, err)

	assert.Equal(t, 11, result.CommonDaysOff)
	assert.True(t, result.Period.CommonDaysOff[9])
}

func TestDefinePeriod_ExplicitLeader(t *testing.T) {
	result, err := DefinePeriod(context.Background(), newMockStore(), testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "b")
	require.NoError(t, err)

	assert.Equal(t, "b", result.Period.LeaderID)
}

func TestDefinePeriod_NoLeaderInDirectory(t *testing.T) {
	dir := &mockDirectory{staff: []model.Staff{{ID: "a", Name: "Alice", Role: model.RoleStaff}}}

	result, err := DefinePeriod(context.Background(), newMockStore(), dir, weekendConfig(), zap.NewNop(), "2024-06", "")
	require.NoError(t, err)

	assert.Nil(t, result.Leader)
	assert.Empty(t, result.Period.LeaderID)
}

func TestDefinePeriod_Errors(t *testing.T) {
	t.Run("already defined", func(t *testing.T) {
		store := newMockStore()
		_, err := DefinePeriod(context.Background(), store, testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "")
		require.NoError(t, err)

		_, err = DefinePeriod(context.Background(), store, testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "")
		assert.ErrorIs(t, err, ErrPeriodExists)
	})

	t.Run("unknown leader", func(t *testing.T) {
		_, err := DefinePeriod(context.Background(), newMockStore(), testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("malformed month", func(t *testing.T) {
		_, err := DefinePeriod(context.Background(), newMockStore(), testDirectory(), weekendConfig(), zap.NewNop(), "June", "")
		assert.Error(t, err)
	})

	t.Run("directory failure", func(t *testing.T) {
		dir := &mockDirectory{err: errors.New("sheets unavailable")}
		_, err := DefinePeriod(context.Background(), newMockStore(), dir, weekendConfig(), zap.NewNop(), "2024-06", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch staff")
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMockStore()
		store.getPeriodErr = errors.New("connection refused")
		_, err := DefinePeriod(context.Background(), store, testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPeriodExists)
	})

	t.Run("insert failure", func(t *testing.T) {
		store := newMockStore()
		store.insertPeriodErr = errors.New("constraint violation")
		_, err := DefinePeriod(context.Background(), store, testDirectory(), weekendConfig(), zap.NewNop(), "2024-06", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert period")
	})
}
