package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
)

var base = NewHeadcount(2, 4, 3)

func TestAdjustForLeader(t *testing.T) {
	tests := []struct {
		name         string
		request      model.Label
		commonDayOff bool
		expected     Headcount
	}{
		{"no request keeps base", model.LabelUnassigned, false, NewHeadcount(2, 4, 3)},
		{"leader on DAY keeps base", model.LabelDay, false, NewHeadcount(2, 4, 3)},
		{"leader on NIGHT keeps base", model.LabelNight, false, NewHeadcount(2, 4, 3)},
		{"leader off on working day adds DAY", model.LabelDayOffA, false, NewHeadcount(2, 5, 3)},
		{"leader FF on working day adds DAY", model.LabelDayOffB, false, NewHeadcount(2, 5, 3)},
		{"leader business travel on working day adds DAY", model.LabelBusinessTravel, false, NewHeadcount(2, 5, 3)},
		{"leader off on common day off keeps base", model.LabelDayOffA, true, NewHeadcount(2, 4, 3)},
		{"leader on EVENING on working day", model.LabelEvening, false, NewHeadcount(2, 5, 2)},
		{"leader on EVENING on common day off", model.LabelEvening, true, NewHeadcount(2, 4, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AdjustForLeader(base, tt.request, tt.commonDayOff))
		})
	}
}

func TestAdjustForLeader_EveningNeverNegative(t *testing.T) {
	got := AdjustForLeader(NewHeadcount(1, 1, 0), model.LabelEvening, false)
	assert.Equal(t, 0, got.Of(model.ShiftEvening))
}

func TestDeriveRequirements(t *testing.T) {
	off := []bool{false, true, false, false}
	leader := []model.Label{model.LabelBusinessTravel, model.LabelBusinessTravel, model.LabelEvening}

	reqs := DeriveRequirements(base, off, leader)

	require.Len(t, reqs, 4)
	assert.Equal(t, 5, reqs[0].Of(model.ShiftDay), "business travel on a working day adds one DAY")
	assert.Equal(t, 4, reqs[1].Of(model.ShiftDay), "common day off keeps base")
	assert.Equal(t, NewHeadcount(2, 5, 2), reqs[2])
	assert.Equal(t, base, reqs[3], "missing leader cells read as unassigned")
	assert.Equal(t, 9, reqs[3].Total())
}

func TestCarryoverFromRow(t *testing.T) {
	row := make([]model.Label, 30)
	for i := range row {
		row[i] = model.LabelDay
	}
	copy(row[24:], []model.Label{
		model.LabelDay, model.LabelDayOffA, model.LabelNight,
		model.LabelNight, model.LabelDayOffB, model.LabelEvening,
	})

	c := CarryoverFromRow(row, 7)

	assert.Equal(t, []int{4, 3, 3, 2, 1, 1}, c.Counts)
	assert.Equal(t, 0, c.At(6))
	assert.Equal(t, 0, c.At(-1))
}

func TestCarryoverFromRow_EdgeCases(t *testing.T) {
	assert.Empty(t, CarryoverFromRow([]model.Label{model.LabelDay}, 1).Counts)
	assert.Equal(t, []int{0, 0, 0}, CarryoverFromRow(nil, 4).Counts)
	assert.Equal(t, []int{2, 1, 1}, CarryoverFromRow([]model.Label{model.LabelDay, model.LabelUnassigned, model.LabelNight}, 4).Counts[0:3],
		"unassigned cells do not count as worked")
	assert.Equal(t, []int{1, 1, 1}, CarryoverFromRow([]model.Label{model.LabelEvening}, 4).Counts,
		"short rows are padded with days off at the front")
}

func TestBuildCarryover_MatchesByID(t *testing.T) {
	staff := []model.Staff{
		{ID: "s1", Name: "Amy"},
		{ID: "s2", Name: "Ben"},
	}
	previous := map[string][]model.Label{
		"s1":    {model.LabelDay, model.LabelDay},
		"Ben":   {model.LabelDay, model.LabelDay},
		"other": {model.LabelDay},
	}

	carry, missing := BuildCarryover(staff, previous, 3)

	assert.Equal(t, []int{2, 1}, carry["s1"].Counts)
	assert.Equal(t, []int{0, 0}, carry["s2"].Counts, "rows keyed by name are not matched")
	assert.Equal(t, []string{"s2"}, missing)
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.DayOffConstrain = 8
	assert.ErrorContains(t, p.Validate(), "exceeds workDayConstrain")

	p = DefaultParams()
	p.RestRule = "sometimes"
	assert.ErrorContains(t, p.Validate(), "unknown rest rule")

	p = DefaultParams()
	p.WorkDayConstrain = -1
	assert.Error(t, p.Validate())
}

func TestParams_WindowsApply(t *testing.T) {
	p := DefaultParams()
	assert.True(t, p.WindowsApply(30))
	assert.Equal(t, 6, p.WindowCap())

	p.WorkDayConstrain = 1
	assert.False(t, p.WindowsApply(30))

	p.WorkDayConstrain = 31
	assert.False(t, p.WindowsApply(30))
}

func newInput(t *testing.T) *Input {
	t.Helper()
	period := calendar.Period{Year: 2024, Month: time.June}
	days := period.DaysInMonth()
	off := make([]bool, days)
	return &Input{
		Period:        period,
		Staff:         []model.Staff{{ID: "s1"}, {ID: "s2"}},
		Leader:        &model.Staff{ID: "lead", Role: model.RoleLeader},
		CommonDaysOff: off,
		Requirements:  DeriveRequirements(NewHeadcount(0, 1, 0), off, nil),
		Requests:      map[string][]model.Label{},
		Params:        DefaultParams(),
	}
}

func TestInput_Validate(t *testing.T) {
	in := newInput(t)
	require.NoError(t, in.Validate())

	in = newInput(t)
	in.Staff = append(in.Staff, model.Staff{ID: "s1"})
	assert.ErrorContains(t, in.Validate(), "duplicate staff ID")

	in = newInput(t)
	in.Staff = append(in.Staff, model.Staff{ID: "lead"})
	assert.ErrorContains(t, in.Validate(), "leader")

	in = newInput(t)
	in.Requirements = in.Requirements[:10]
	assert.ErrorContains(t, in.Validate(), "requirements cover 10 days")

	in = newInput(t)
	in.Requests["s1"] = []model.Label{"XX"}
	assert.ErrorContains(t, in.Validate(), "invalid request")

	in = newInput(t)
	in.Requirements[3][model.ShiftNight] = -1
	assert.ErrorContains(t, in.Validate(), "negative NIGHT requirement")
}

func TestInput_Lookups(t *testing.T) {
	in := newInput(t)
	in.Requests["s1"] = []model.Label{model.LabelDayOffA, model.LabelNight}
	in.Requests["ghost"] = []model.Label{model.LabelDay}
	in.CommonDaysOff[0] = true

	assert.Equal(t, model.LabelDayOffA, in.Request("s1", 1))
	assert.Equal(t, model.LabelNight, in.Request("s1", 2))
	assert.Equal(t, model.LabelUnassigned, in.Request("s1", 3))
	assert.Equal(t, model.LabelUnassigned, in.Request("s2", 1))
	assert.True(t, in.IsCommonDayOff(1))
	assert.False(t, in.IsCommonDayOff(31))
	assert.Equal(t, 1, in.RequiredDaysOff())
	assert.Equal(t, []string{"ghost"}, in.UnknownRequestRows())
	assert.Empty(t, in.CarryoverFor("s1").Counts)
}

func TestInput_ShortDays(t *testing.T) {
	in := newInput(t)
	in.Requirements[4] = NewHeadcount(1, 1, 1)
	in.Requests["s1"] = []model.Label{model.LabelDayOffA, model.LabelUnassigned, model.LabelUnassigned, model.LabelUnassigned, model.LabelBusinessTravel}
	in.LeaderRequests = []model.Label{model.LabelDayOffB}

	// Day 1: s2 available, requirement 1. Day 5: s2 and leader, requirement 3.
	assert.Equal(t, []int{5}, in.ShortDays())
}

func TestRequestedDaysOff(t *testing.T) {
	row := []model.Label{model.LabelDayOffA, model.LabelDay, model.LabelBusinessTravel, model.LabelUnassigned, model.LabelDayOffB}
	assert.Equal(t, 3, RequestedDaysOff(row))
}
