package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kiddos/scheduler/pkg/core/calendar"
	"github.com/kiddos/scheduler/pkg/core/model"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

const cellWidth = 4

// gridRow is one line of a day grid
type gridRow struct {
	Name    string
	Cells   []model.Label
	DaysOff int
	// Color picks the color of a cell (1-based day); empty means none
	Color func(day int) string
}

// printGrid prints a name column, one column per day and the days-off total.
// Common days off are dimmed in the header. It returns the width of the name
// column.
func printGrid(w io.Writer, cal calendar.Period, commonDaysOff []bool, rows []gridRow) int {
	nameColWidth := 12
	for _, row := range rows {
		if len(row.Name)+2 > nameColWidth {
			nameColWidth = len(row.Name) + 2
		}
	}
	days := cal.DaysInMonth()

	fmt.Fprintf(w, "%-*s", nameColWidth, "")
	for day := 1; day <= days; day++ {
		header := fmt.Sprintf("%-*d", cellWidth, day)
		if day <= len(commonDaysOff) && commonDaysOff[day-1] {
			header = colorDim + header + colorReset
		}
		fmt.Fprint(w, header)
	}
	fmt.Fprintln(w, "Off")

	fmt.Fprintf(w, "%-*s", nameColWidth, "")
	for day := 1; day <= days; day++ {
		fmt.Fprintf(w, "%-*s", cellWidth, cal.Weekday(day).String()[:2])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("-", nameColWidth+days*cellWidth+3))

	for _, row := range rows {
		fmt.Fprintf(w, "%-*s", nameColWidth, row.Name)
		for day := 1; day <= days; day++ {
			cell := "."
			if day <= len(row.Cells) && row.Cells[day-1] != model.LabelUnassigned {
				cell = string(row.Cells[day-1])
			}
			text := fmt.Sprintf("%-*s", cellWidth, cell)
			if row.Color != nil {
				if c := row.Color(day); c != "" {
					text = c + text + colorReset
				}
			}
			fmt.Fprint(w, text)
		}
		fmt.Fprintln(w, row.DaysOff)
	}
	return nameColWidth
}

// highlightColor returns red for an unhonoured day-off request, yellow for
// an overstaffed cell, or no color
func highlightColor(unhonored, overstaffed bool) string {
	switch {
	case unhonored:
		return colorRed
	case overstaffed:
		return colorYellow
	}
	return ""
}

// parseDays parses a day list such as "1,3,5-7"
func parseDays(s string) ([]int, error) {
	var days []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to := part, part
		if i := strings.Index(part, "-"); i > 0 {
			from, to = part[:i], part[i+1:]
		}
		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid day %q", part)
		}
		end, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("invalid day %q", part)
		}
		if end < start {
			return nil, fmt.Errorf("invalid day range %q", part)
		}

		for d := start; d <= end; d++ {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no days in %q", s)
	}
	return days, nil
}

// optionalInt returns nil unless the flag was set
func optionalInt(changed bool, value int) *int {
	if !changed {
		return nil
	}
	return &value
}

// formatHeadcount renders a headcount as "PH 2, DAY 4, 4N 3"
func formatHeadcount(h scheduling.Headcount) string {
	parts := make([]string, 0, model.NumShiftTypes)
	for _, shift := range model.ShiftTypes {
		parts = append(parts, fmt.Sprintf("%s %d", shift.Label(), h.Of(shift)))
	}
	return strings.Join(parts, ", ")
}
