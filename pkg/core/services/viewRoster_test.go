package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
	"github.com/kiddos/scheduler/pkg/core/solver/solvertest"
	"github.com/kiddos/scheduler/pkg/db"
)

// committedJune seeds June and commits a solved roster
func committedJune(t *testing.T) (*mockStore, *db.Period) {
	t.Helper()
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	period := seedJune(t, store, dir, cfg)

	result, err := OptimizeRoster(context.Background(), store, dir, &solvertest.Backend{}, nil, cfg, zap.NewNop(), "2024-06", OptimizeOptions{})
	require.NoError(t, err)
	require.True(t, result.Committed)
	return store, period
}

// setCell rewrites one committed cell
func setCell(store *mockStore, periodID, staffID string, day int, code string) {
	cells := store.roster[periodID]
	for i := range cells {
		if cells[i].StaffID == staffID && cells[i].Day == day {
			cells[i].Code = code
		}
	}
}

func TestViewRequests(t *testing.T) {
	store := newMockStore()
	dir := testDirectory()
	cfg := testConfig()
	seedJune(t, store, dir, cfg)
	// Both staff and the leader off on day 5 leaves nobody for two DAY shifts
	_, err := SetRequest(context.Background(), store, dir, cfg, zap.NewNop(), "2024-06", "b", []int{5}, "WW")
	require.NoError(t, err)
	_, err = SetRequest(context.Background(), store, dir, cfg, zap.NewNop(), "2024-06", "a", []int{5}, "FF")
	require.NoError(t, err)

	view, err := ViewRequests(context.Background(), store, dir, cfg, zap.NewNop(), "2024-06")
	require.NoError(t, err)

	require.Len(t, view.Staff, 2)
	assert.Equal(t, "a", view.Staff[0].Staff.ID)
	assert.Equal(t, 4, view.Staff[0].DaysOff)
	assert.Equal(t, 2, view.Staff[1].DaysOff, "business travel counts as a day off")
	require.NotNil(t, view.Leader)
	assert.Equal(t, model.LabelDayOffA, view.Leader.Cells[4])
	assert.Equal(t, 0, view.TotalCommonDaysOff)
	assert.Equal(t, scheduling.NewHeadcount(0, 2, 0), view.Requirements[4])
	assert.Equal(t, []int{5}, view.ShortDays)
}

func TestViewRoster(t *testing.T) {
	store, period := committedJune(t)
	// Hand edits: Alice works a requested day off, Bob doubles up on day 20
	setCell(store, period.ID, "a", 1, "DAY")
	setCell(store, period.ID, "a", 20, "DAY")
	setCell(store, period.ID, "b", 20, "DAY")

	view, err := ViewRoster(context.Background(), store, zap.NewNop(), "2024-06")
	require.NoError(t, err)

	require.NotNil(t, view.Roster)
	require.Len(t, view.Roster.Rows, 3)
	assert.Equal(t, []string{"a", "b", "lead"}, []string{view.Roster.Rows[0].StaffID, view.Roster.Rows[1].StaffID, view.Roster.Rows[2].StaffID})
	assert.True(t, view.Roster.Rows[2].Leader)
	assert.Len(t, view.Runs, 1)

	assert.Equal(t, []optimizer.CellRef{{StaffID: "a", Day: 1}}, view.Highlights.UnhonoredDaysOff)
	assert.True(t, view.Highlights.IsOverstaffed("a", 20))
	assert.True(t, view.Highlights.IsOverstaffed("b", 20))
	assert.False(t, view.Highlights.IsOverstaffed("lead", 20), "the leader row is not highlighted")
}

func TestViewRoster_NothingCommitted(t *testing.T) {
	store := newMockStore()
	seedJune(t, store, testDirectory(), testConfig())

	view, err := ViewRoster(context.Background(), store, zap.NewNop(), "2024-06")
	require.NoError(t, err)

	assert.Nil(t, view.Roster)
	assert.Empty(t, view.Runs)
}

func TestPublishRoster(t *testing.T) {
	store, _ := committedJune(t)
	publisher := &mockPublisher{}

	published, err := PublishRoster(context.Background(), store, testDirectory(), publisher, testConfig(), zap.NewNop(), "2024-06")
	require.NoError(t, err)

	assert.Equal(t, "roster-sheet", publisher.spreadsheetID)
	require.Len(t, publisher.published, 1)
	assert.Same(t, published, publisher.published[0])

	assert.Equal(t, "2024-06", published.Month)
	require.Len(t, published.DayHeaders, 30)
	assert.Equal(t, "6/1 Sat", published.DayHeaders[0])

	want := []string{"S001 Alice", "S002 Bob", "lead Leader"}
	var got []string
	for _, row := range published.Rows {
		got = append(got, row.StaffNumber+" "+row.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("published rows mismatch (-want +got):\n%s", diff)
	}

	alice := published.Rows[0]
	require.Len(t, alice.Cells, 30)
	assert.Equal(t, []string{"WW", "WW", "FF"}, alice.Cells[:3])
	assert.Equal(t, "DAY", published.Rows[2].Cells[0])
	assert.Equal(t, 1, published.Rows[2].DaysOff)
}

func TestPublishRoster_Errors(t *testing.T) {
	t.Run("no roster sheet", func(t *testing.T) {
		store, _ := committedJune(t)
		cfg := testConfig()
		cfg.RosterSheetID = ""

		_, err := PublishRoster(context.Background(), store, testDirectory(), &mockPublisher{}, cfg, zap.NewNop(), "2024-06")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rosterSheetID")
	})

	t.Run("nothing committed", func(t *testing.T) {
		store := newMockStore()
		seedJune(t, store, testDirectory(), testConfig())

		_, err := PublishRoster(context.Background(), store, testDirectory(), &mockPublisher{}, testConfig(), zap.NewNop(), "2024-06")
		assert.ErrorIs(t, err, ErrNoRoster)
	})

	t.Run("sheets failure", func(t *testing.T) {
		store, _ := committedJune(t)
		publisher := &mockPublisher{err: errors.New("quota exceeded")}

		_, err := PublishRoster(context.Background(), store, testDirectory(), publisher, testConfig(), zap.NewNop(), "2024-06")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestExportRoster(t *testing.T) {
	store, _ := committedJune(t)
	var buf bytes.Buffer

	require.NoError(t, ExportRoster(context.Background(), store, zap.NewNop(), "2024-06", &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	require.Len(t, header, 33)
	assert.Equal(t, []string{"Staff ID", "Name", "6/1 Sat"}, header[:3])
	assert.Equal(t, "Days off", header[32])

	assert.Equal(t, []string{"a", "Alice", "WW", "WW", "FF"}, records[1][:5])
	assert.Equal(t, "lead", records[3][0])
	assert.Equal(t, "1", records[3][32])
}

var _ RosterPublisher = (*sheetsclient.Client)(nil)
var _ StaffDirectory = (*sheetsclient.Client)(nil)
