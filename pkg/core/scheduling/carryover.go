package scheduling

import "github.com/kiddos/scheduler/pkg/core/model"

// Carryover describes the tail of a staff member's previous roster. Counts
// has workDayConstrain-1 entries; Counts[i] is the number of days worked from
// the i-th of those final days through the last day of the previous period.
type Carryover struct {
	Counts []int
}

// At returns Counts[i], or 0 when i is out of range.
func (c Carryover) At(i int) int {
	if i < 0 || i >= len(c.Counts) {
		return 0
	}
	return c.Counts[i]
}

// CarryoverFromRow computes the carryover of one previous-period roster row.
// Only shift labels count as worked days.
func CarryoverFromRow(row []model.Label, workDayConstrain int) Carryover {
	n := workDayConstrain - 1
	if n <= 0 {
		return Carryover{}
	}

	counts := make([]int, n)
	worked := 0
	for j := 0; j < n; j++ {
		// Walk backwards from the final day of the previous period
		idx := len(row) - 1 - j
		if idx >= 0 && row[idx].IsShift() {
			worked++
		}
		counts[n-1-j] = worked
	}
	return Carryover{Counts: counts}
}

// BuildCarryover computes carryover for every staff member from the previous
// period's roster rows keyed by staff ID. Staff without a previous row get
// zero counts and are returned in missing.
func BuildCarryover(staff []model.Staff, previous map[string][]model.Label, workDayConstrain int) (map[string]Carryover, []string) {
	out := make(map[string]Carryover, len(staff))
	var missing []string
	for _, s := range staff {
		row, ok := previous[s.ID]
		if !ok {
			missing = append(missing, s.ID)
		}
		out[s.ID] = CarryoverFromRow(row, workDayConstrain)
	}
	return out, missing
}
