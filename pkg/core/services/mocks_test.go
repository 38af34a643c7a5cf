package services

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/db"
)

// mockStore is an in-memory db.Database with failure injection
type mockStore struct {
	periods      map[string]*db.Period
	requirements map[string][]db.Requirement
	requests     map[string][]db.Request
	roster       map[string][]db.RosterCell
	runs         []db.OptimizationRun
	locks        map[string]bool

	getPeriodErr     error
	insertPeriodErr  error
	saveRequestsErr  error
	setLeaderErr     error
	insertRunErr     error
	replaceRosterErr error
}

var _ db.Database = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		periods:      make(map[string]*db.Period),
		requirements: make(map[string][]db.Requirement),
		requests:     make(map[string][]db.Request),
		roster:       make(map[string][]db.RosterCell),
		locks:        make(map[string]bool),
	}
}

func (m *mockStore) GetPeriod(ctx context.Context, month string) (*db.Period, error) {
	if m.getPeriodErr != nil {
		return nil, m.getPeriodErr
	}
	p, ok := m.periods[month]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockStore) GetPeriods(ctx context.Context) ([]db.Period, error) {
	var out []db.Period
	for _, p := range m.periods {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *mockStore) InsertPeriod(ctx context.Context, period *db.Period, requirements []db.Requirement) error {
	if m.insertPeriodErr != nil {
		return m.insertPeriodErr
	}
	copied := *period
	m.periods[period.Month] = &copied
	m.requirements[period.ID] = append([]db.Requirement(nil), requirements...)
	return nil
}

func (m *mockStore) SetPeriodLeader(ctx context.Context, periodID, leaderID string, requirements []db.Requirement) error {
	if m.setLeaderErr != nil {
		return m.setLeaderErr
	}
	for _, p := range m.periods {
		if p.ID == periodID {
			p.LeaderID = leaderID
			return m.UpsertRequirements(ctx, requirements)
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) GetRequirements(ctx context.Context, periodID string) ([]db.Requirement, error) {
	return m.requirements[periodID], nil
}

func (m *mockStore) UpsertRequirements(ctx context.Context, requirements []db.Requirement) error {
	for _, r := range requirements {
		rows := m.requirements[r.PeriodID]
		replaced := false
		for i := range rows {
			if rows[i].Day == r.Day && rows[i].Shift == r.Shift {
				rows[i] = r
				replaced = true
			}
		}
		if !replaced {
			rows = append(rows, r)
		}
		m.requirements[r.PeriodID] = rows
	}
	return nil
}

func (m *mockStore) GetRequests(ctx context.Context, periodID string) ([]db.Request, error) {
	return m.requests[periodID], nil
}

// SaveRequests writes nothing when saveRequestsErr is set
func (m *mockStore) SaveRequests(ctx context.Context, requests []db.Request, requirements []db.Requirement) error {
	if m.saveRequestsErr != nil {
		return m.saveRequestsErr
	}
	if err := m.UpsertRequests(ctx, requests); err != nil {
		return err
	}
	return m.UpsertRequirements(ctx, requirements)
}

func (m *mockStore) UpsertRequests(ctx context.Context, requests []db.Request) error {
	for _, r := range requests {
		var kept []db.Request
		for _, existing := range m.requests[r.PeriodID] {
			if existing.StaffID != r.StaffID || existing.Day != r.Day {
				kept = append(kept, existing)
			}
		}
		if r.Code != "" {
			kept = append(kept, r)
		}
		m.requests[r.PeriodID] = kept
	}
	return nil
}

func (m *mockStore) GetRoster(ctx context.Context, periodID string) ([]db.RosterCell, error) {
	return m.roster[periodID], nil
}

func (m *mockStore) ReplaceRoster(ctx context.Context, periodID string, cells []db.RosterCell) error {
	if m.replaceRosterErr != nil {
		return m.replaceRosterErr
	}
	m.roster[periodID] = append([]db.RosterCell(nil), cells...)
	return nil
}

func (m *mockStore) InsertRun(ctx context.Context, run *db.OptimizationRun) error {
	if m.insertRunErr != nil {
		return m.insertRunErr
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockStore) GetRuns(ctx context.Context, periodID string) ([]db.OptimizationRun, error) {
	var out []db.OptimizationRun
	for _, r := range m.runs {
		if r.PeriodID == periodID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) TryLockPeriod(ctx context.Context, periodID string) (func(), bool, error) {
	if m.locks[periodID] {
		return nil, false, nil
	}
	m.locks[periodID] = true
	return func() { delete(m.locks, periodID) }, true, nil
}

func (m *mockStore) requirementOf(periodID string, day int, shift string) (int, bool) {
	for _, r := range m.requirements[periodID] {
		if r.Day == day && r.Shift == shift {
			return r.Headcount, true
		}
	}
	return 0, false
}

type mockDirectory struct {
	staff []model.Staff
	err   error
}

func (m *mockDirectory) ListStaff(cfg *config.Config) ([]model.Staff, error) {
	return m.staff, m.err
}

type mockPublisher struct {
	spreadsheetID string
	published     []*sheetsclient.PublishedRoster
	err           error
}

func (m *mockPublisher) PublishRoster(spreadsheetID string, roster *sheetsclient.PublishedRoster) error {
	if m.err != nil {
		return m.err
	}
	m.spreadsheetID = spreadsheetID
	m.published = append(m.published, roster)
	return nil
}

// testConfig has no common days off and one DAY shift per day
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.StaffSheetID = "staff-sheet"
	cfg.StaffTab = "Staff"
	cfg.RosterSheetID = "roster-sheet"
	cfg.Requirements = config.Requirements{Night: 0, Day: 1, Evening: 0}
	cfg.CommonDaysOff = nil
	cfg.Solver.TimeBudgetSeconds = 10
	return cfg
}

func testDirectory() *mockDirectory {
	return &mockDirectory{staff: []model.Staff{
		{ID: "a", ExternalID: "S001", Name: "Alice", Role: model.RoleStaff, Preference: model.PreferDay},
		{ID: "b", ExternalID: "S002", Name: "Bob", Role: model.RoleStaff, Preference: model.PreferDay},
		{ID: "lead", Name: "Leader", Role: model.RoleLeader, Preference: model.PreferDay},
	}}
}

// seedJune defines June 2024 with the leader off on day 5, Alice off on days
// 1-3 and Bob travelling on day 10
func seedJune(t *testing.T, store *mockStore, dir *mockDirectory, cfg *config.Config) *db.Period {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	result, err := DefinePeriod(ctx, store, dir, cfg, logger, "2024-06", "")
	require.NoError(t, err)

	_, err = SetRequest(ctx, store, dir, cfg, logger, "2024-06", "lead", []int{5}, "WW")
	require.NoError(t, err)
	_, err = SetRequest(ctx, store, dir, cfg, logger, "2024-06", "a", []int{1, 2}, "WW")
	require.NoError(t, err)
	_, err = SetRequest(ctx, store, dir, cfg, logger, "2024-06", "a", []int{3}, "FF")
	require.NoError(t, err)
	_, err = SetRequest(ctx, store, dir, cfg, logger, "2024-06", "b", []int{10}, "SS")
	require.NoError(t, err)

	return result.Period
}
