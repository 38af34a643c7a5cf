package calendar

import (
	"fmt"
	"time"
)

// Period is a single calendar month. Days are numbered from 1.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates year and month and returns the period.
func NewPeriod(year, month int) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("year out of range: %d", year)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("month out of range: %d", month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (expected YYYY-MM): %w", s, err)
	}
	return NewPeriod(t.Year(), int(t.Month()))
}

// DaysInMonth returns the number of days of the period.
func (p Period) DaysInMonth() int {
	// Day 0 of the next month normalises to the last day of this one
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset returns the weekday of day 1 with Monday as 0.
func (p Period) FirstWeekdayOffset() int {
	return (int(p.Weekday(1)) + 6) % 7
}

// Date returns midnight UTC of the given day.
func (p Period) Date(day int) time.Time {
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

func (p Period) Weekday(day int) time.Weekday {
	return p.Date(day).Weekday()
}

func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// String formats the period as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// DayHeader returns a short column header such as "5/14 Wed".
func (p Period) DayHeader(day int) string {
	return fmt.Sprintf("%d/%d %s", int(p.Month), day, p.Weekday(day).String()[:3])
}
