package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		wantDays    int
		wantOffset  int
		expectError bool
	}{
		{"May 2024 starts on Wednesday", 2024, 5, 31, 2, false},
		{"leap February", 2024, 2, 29, 3, false},
		{"non-leap February", 2023, 2, 28, 2, false},
		{"June 2024 starts on Saturday", 2024, 6, 30, 5, false},
		{"month zero", 2024, 0, 0, 0, true},
		{"month thirteen", 2024, 13, 0, 0, true},
		{"year zero", 0, 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPeriod(tt.year, tt.month)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, p.DaysInMonth())
			assert.Equal(t, tt.wantOffset, p.FirstWeekdayOffset())
		})
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2025, Month: time.March}, p)
	assert.Equal(t, "2025-03", p.String())

	_, err = ParsePeriod("March 2025")
	assert.Error(t, err)
}

func TestPeriod_PreviousAndNext(t *testing.T) {
	jan := Period{Year: 2025, Month: time.January}
	assert.Equal(t, Period{Year: 2024, Month: time.December}, jan.Previous())
	assert.Equal(t, Period{Year: 2025, Month: time.February}, jan.Next())

	dec := Period{Year: 2024, Month: time.December}
	assert.Equal(t, jan, dec.Next())
}

func TestPeriod_DayHeader(t *testing.T) {
	p := Period{Year: 2024, Month: time.May}
	assert.Equal(t, "5/1 Wed", p.DayHeader(1))
	assert.Equal(t, time.Sunday, p.Weekday(5))
}

func TestCommonDaysOff_Weekends(t *testing.T) {
	p := Period{Year: 2024, Month: time.June}

	off, err := CommonDaysOff(p, []string{DefaultDaysOffRule}, nil)
	require.NoError(t, err)
	require.Len(t, off, 30)

	var days []int
	for i, o := range off {
		if o {
			days = append(days, i+1)
		}
	}
	assert.Equal(t, []int{1, 2, 8, 9, 15, 16, 22, 23, 29, 30}, days)
	assert.Equal(t, 10, CountDaysOff(off))
}

func TestCommonDaysOff_Holidays(t *testing.T) {
	p := Period{Year: 2024, Month: time.June}

	off, err := CommonDaysOff(p, []string{DefaultDaysOffRule}, []string{"2024-06-10", "2024-07-01"})
	require.NoError(t, err)
	assert.True(t, off[9], "June 10 should be a holiday")
	assert.Equal(t, 11, CountDaysOff(off), "holiday outside the month is ignored")
}

func TestCommonDaysOff_NoRules(t *testing.T) {
	p := Period{Year: 2024, Month: time.June}

	off, err := CommonDaysOff(p, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, CountDaysOff(off))
}

func TestCommonDaysOff_InvalidInput(t *testing.T) {
	p := Period{Year: 2024, Month: time.June}

	_, err := CommonDaysOff(p, []string{"NOT A RULE"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse days-off rule 0")

	_, err = CommonDaysOff(p, nil, []string{"10/06/2024"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid holiday")
}
