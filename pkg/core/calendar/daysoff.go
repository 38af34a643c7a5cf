package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultDaysOffRule marks every Saturday and Sunday as a common day off.
const DefaultDaysOffRule = "FREQ=WEEKLY;BYDAY=SA,SU"

// CommonDaysOff computes the shared day-off row for the period. A day is off
// when any of the RRULEs produces an occurrence on it or it is listed in
// holidays (YYYY-MM-DD). The result is indexed by day-1.
func CommonDaysOff(p Period, rules []string, holidays []string) ([]bool, error) {
	days := p.DaysInMonth()
	off := make([]bool, days)

	start := p.Date(1)
	end := p.Date(days)

	for i, ruleStr := range rules {
		rule, err := rrule.StrToRRule(ruleStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse days-off rule %d: %w", i, err)
		}

		// Anchor the rule at the first day so weekly rules line up with the month
		rule.DTStart(start)
		for _, occurrence := range rule.Between(start, end, true) {
			if occurrence.Year() == p.Year && occurrence.Month() == p.Month {
				off[occurrence.Day()-1] = true
			}
		}
	}

	for _, h := range holidays {
		date, err := time.Parse("2006-01-02", h)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		if date.Year() == p.Year && date.Month() == p.Month {
			off[date.Day()-1] = true
		}
	}

	return off, nil
}

// CountDaysOff returns the number of days marked off.
func CountDaysOff(off []bool) int {
	n := 0
	for _, o := range off {
		if o {
			n++
		}
	}
	return n
}
