package sheetsclient

import (
	"fmt"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/core/model"
)

// staffRecord is one row of the staff directory sheet
type staffRecord struct {
	ID          string `sheet:"Unique ID"`
	StaffNumber string `sheet:"Staff number,optional"`
	Name        string `sheet:"Name"`
	Role        string `sheet:"Role"`
	Preference  string `sheet:"Preference"`
	Restriction string `sheet:"Shift restriction,optional"`
}

// ListStaff retrieves and parses the staff directory from the configured spreadsheet
func (c *Client) ListStaff(cfg *config.Config) ([]model.Staff, error) {
	values, err := c.GetValues(cfg.StaffSheetID, cfg.StaffTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	staff, err := parseStaff(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse staff: %w", err)
	}

	return staff, nil
}

// parseStaff converts raw spreadsheet data into Staff entries in sheet order.
// Rows without a unique ID are skipped; an empty preference means DAY.
func parseStaff(raw [][]interface{}) ([]model.Staff, error) {
	records, rowNumbers, err := decodeRows[staffRecord](raw)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	staff := make([]model.Staff, 0, len(records))
	for i, rec := range records {
		row := rowNumbers[i]
		if rec.ID == "" {
			continue
		}
		if first, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate unique ID %q in rows %d and %d", rec.ID, first, row)
		}
		seen[rec.ID] = row

		role := model.Role(rec.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("invalid role %q for staff in row %d", rec.Role, row)
		}

		preference := model.PreferDay
		if rec.Preference != "" {
			p, ok := model.ParseShiftType(rec.Preference)
			if !ok {
				return nil, fmt.Errorf("invalid preference %q for staff in row %d", rec.Preference, row)
			}
			preference = model.PreferenceFor(p)
		}

		var restriction *model.ShiftType
		if rec.Restriction != "" {
			r, ok := model.ParseShiftType(rec.Restriction)
			if !ok {
				return nil, fmt.Errorf("invalid shift restriction %q for staff in row %d", rec.Restriction, row)
			}
			restriction = &r
		}

		name := rec.Name
		if name == "" {
			name = rec.ID
		}

		staff = append(staff, model.Staff{
			ID:          rec.ID,
			ExternalID:  rec.StaffNumber,
			Name:        name,
			Role:        role,
			Preference:  preference,
			Restriction: restriction,
		})
	}

	return staff, nil
}
