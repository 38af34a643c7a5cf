package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/db"
)

func TestSetLeader_RederivesRequirements(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	cfg := weekendConfig()
	defined, err := DefinePeriod(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "")
	require.NoError(t, err)
	periodID := defined.Period.ID

	// Days 3 and 4 are working days
	_, err = SetRequest(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "a", []int{3}, "WW")
	require.NoError(t, err)
	_, err = SetRequest(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "lead", []int{4}, "WW")
	require.NoError(t, err)
	day, _ := store.requirementOf(periodID, 4, "DAY")
	require.Equal(t, 5, day)

	result, err := SetLeader(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "a")
	require.NoError(t, err)

	assert.Equal(t, "lead", result.PreviousLeaderID)
	require.NotNil(t, result.Leader)
	assert.Equal(t, "Alice", result.Leader.Name)
	if diff := cmp.Diff([]int{3}, result.AdjustedDays); diff != "" {
		t.Errorf("adjusted days mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, scheduling.NewHeadcount(2, 5, 3), result.Requirements[2])

	assert.Equal(t, "a", store.periods["2024-06"].LeaderID)
	day, _ = store.requirementOf(periodID, 3, "DAY")
	assert.Equal(t, 5, day)
	day, _ = store.requirementOf(periodID, 4, "DAY")
	assert.Equal(t, 4, day, "the previous leader's day off no longer counts")
	assert.Len(t, store.requirements[periodID], 90)
}

func TestSetLeader_Clear(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	cfg := weekendConfig()
	defined, err := DefinePeriod(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "")
	require.NoError(t, err)
	_, err = SetRequest(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "lead", []int{4}, "WW")
	require.NoError(t, err)

	result, err := SetLeader(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "")
	require.NoError(t, err)

	assert.Nil(t, result.Leader)
	assert.Empty(t, result.AdjustedDays)
	assert.Empty(t, store.periods["2024-06"].LeaderID)
	day, _ := store.requirementOf(defined.Period.ID, 4, "DAY")
	assert.Equal(t, 4, day)
}

func TestSetLeader_Errors(t *testing.T) {
	ctx := context.Background()
	cfg := weekendConfig()

	t.Run("unknown staff", func(t *testing.T) {
		store := newMockStore()
		_, err := DefinePeriod(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "")
		require.NoError(t, err)

		_, err = SetLeader(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in staff directory")
		assert.Equal(t, "lead", store.periods["2024-06"].LeaderID)
	})

	t.Run("undefined month", func(t *testing.T) {
		_, err := SetLeader(ctx, newMockStore(), testDirectory(), cfg, zap.NewNop(), "2024-07", "a")
		assert.ErrorIs(t, err, ErrPeriodNotFound)
	})

	t.Run("directory failure", func(t *testing.T) {
		store := newMockStore()
		_, err := DefinePeriod(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "")
		require.NoError(t, err)

		_, err = SetLeader(ctx, store, &mockDirectory{err: errors.New("sheets down")}, cfg, zap.NewNop(), "2024-06", "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch staff")
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMockStore()
		defined, err := DefinePeriod(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "")
		require.NoError(t, err)
		before := append([]db.Requirement(nil), store.requirements[defined.Period.ID]...)
		store.setLeaderErr = errors.New("connection lost")

		_, err = SetLeader(ctx, store, testDirectory(), cfg, zap.NewNop(), "2024-06", "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to set period leader")
		assert.Equal(t, "lead", store.periods["2024-06"].LeaderID)
		if diff := cmp.Diff(before, store.requirements[defined.Period.ID]); diff != "" {
			t.Errorf("requirements changed (-before +after):\n%s", diff)
		}
	})
}
