package sheetsclient

import (
	"fmt"
)

const (
	rosterHeaderRow   = 2 // zero-based: title, blank, header
	rosterStaffNumber = "Staff number"
	rosterName        = "Name"
	rosterDaysOff     = "Days off"
)

// PublishedRosterRow represents one person's line of the published roster
type PublishedRosterRow struct {
	StaffNumber string
	Name        string
	Cells       []string // one label per day
	DaysOff     int
}

// PublishedRoster represents the complete published roster grid
type PublishedRoster struct {
	Month      string   // YYYY-MM
	DayHeaders []string // e.g. "6/1 Sat"
	Rows       []PublishedRosterRow
}

// RosterTabTitle returns the tab a month's roster is published to
func RosterTabTitle(month string) string {
	return "Roster " + month
}

// PublishRoster publishes a roster to Google Sheets.
// If the tab doesn't exist it is created. If it exists, its grid is rewritten
// and any columns after "Days off" are carried over by staff name.
func (c *Client) PublishRoster(spreadsheetID string, roster *PublishedRoster) error {
	tabTitle := RosterTabTitle(roster.Month)

	exists, err := c.HasSheet(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	var existing [][]interface{}
	if exists {
		existing, err = c.GetValues(spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", tabTitle))
		if err != nil {
			return fmt.Errorf("failed to read existing tab data: %w", err)
		}
		if err := c.ClearValues(spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", tabTitle)); err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
		return fmt.Errorf("failed to create tab: %w", err)
	}

	grid := buildRosterGrid(roster, existing)
	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("'%s'!A1", tabTitle), grid); err != nil {
		return fmt.Errorf("failed to write roster: %w", err)
	}

	return nil
}

// buildRosterGrid lays out the title, a blank row, the header and one row
// per person. Extra columns found after "Days off" in existing are kept.
func buildRosterGrid(roster *PublishedRoster, existing [][]interface{}) [][]interface{} {
	extraHeaders, extraValues := extraColumns(existing)

	header := []interface{}{rosterStaffNumber, rosterName}
	for _, h := range roster.DayHeaders {
		header = append(header, h)
	}
	header = append(header, rosterDaysOff)
	header = append(header, extraHeaders...)

	grid := [][]interface{}{
		{RosterTabTitle(roster.Month)},
		{},
		header,
	}

	for _, row := range roster.Rows {
		sheetRow := []interface{}{row.StaffNumber, row.Name}
		for i := range roster.DayHeaders {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			sheetRow = append(sheetRow, cell)
		}
		sheetRow = append(sheetRow, row.DaysOff)

		kept := extraValues[row.Name]
		for i := range extraHeaders {
			if i < len(kept) {
				sheetRow = append(sheetRow, kept[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		grid = append(grid, sheetRow)
	}

	return grid
}

// extraColumns returns the headers after "Days off" in an existing grid and
// their values keyed by the row's name
func extraColumns(existing [][]interface{}) ([]interface{}, map[string][]interface{}) {
	values := make(map[string][]interface{})
	if len(existing) <= rosterHeaderRow {
		return nil, values
	}

	header := existing[rosterHeaderRow]
	nameCol := findColumnIndex(header, rosterName)
	daysOffCol := findColumnIndex(header, rosterDaysOff)
	if nameCol == -1 || daysOffCol == -1 || daysOffCol+1 >= len(header) {
		return nil, values
	}

	extraHeaders := header[daysOffCol+1:]
	for _, row := range existing[rosterHeaderRow+1:] {
		if nameCol >= len(row) {
			continue
		}
		name, ok := row[nameCol].(string)
		if !ok || name == "" {
			continue
		}
		kept := make([]interface{}, len(extraHeaders))
		for i := range extraHeaders {
			col := daysOffCol + 1 + i
			if col < len(row) {
				kept[i] = row[col]
			} else {
				kept[i] = ""
			}
		}
		values[name] = kept
	}

	return extraHeaders, values
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, cell := range header {
		if str, ok := cell.(string); ok && str == columnName {
			return i
		}
	}
	return -1
}
