package sheetsclient

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// sheetColumn is a struct field bound to a header cell through its `sheet`
// tag. A tag of "Name,optional" allows the column to be absent.
type sheetColumn struct {
	field    int
	header   string
	optional bool
}

func sheetColumns(t reflect.Type) []sheetColumn {
	var cols []sheetColumn
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("sheet")
		if tag == "" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		cols = append(cols, sheetColumn{field: i, header: name, optional: opts == "optional"})
	}
	return cols
}

// decodeRows maps every row under the header row onto a T. Rows whose
// cells are all empty are skipped; the returned row numbers are 1-based
// sheet rows for error messages.
func decodeRows[T any](raw [][]interface{}) ([]T, []int, error) {
	if len(raw) < 1 {
		return nil, nil, fmt.Errorf("no header row found")
	}

	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("decode target must be a struct, got %s", t.Kind())
	}

	headerIndex := make(map[string]int)
	for i, cell := range raw[0] {
		if str, ok := cell.(string); ok {
			headerIndex[strings.TrimSpace(str)] = i
		}
	}

	cols := sheetColumns(t)
	colIndex := make([]int, len(cols))
	for i, col := range cols {
		idx, ok := headerIndex[col.header]
		if !ok {
			if !col.optional {
				return nil, nil, fmt.Errorf("missing required field in header: %s", col.header)
			}
			idx = -1
		}
		colIndex[i] = idx
	}

	results := make([]T, 0, len(raw)-1)
	var rowNumbers []int
	for r := 1; r < len(raw); r++ {
		row := raw[r]
		if isBlankRow(row) {
			continue
		}

		result := reflect.New(t).Elem()
		for i, col := range cols {
			idx := colIndex[i]
			if idx < 0 || idx >= len(row) || row[idx] == nil {
				continue
			}
			if err := setFieldValue(result.Field(col.field), row[idx]); err != nil {
				return nil, nil, fmt.Errorf("row %d, column %s: %w", r+1, col.header, err)
			}
		}
		results = append(results, result.Interface().(T))
		rowNumbers = append(rowNumbers, r+1)
	}

	return results, rowNumbers, nil
}

func isBlankRow(row []interface{}) bool {
	for _, cell := range row {
		if cell == nil {
			continue
		}
		if str, ok := cell.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}
		return false
	}
	return true
}

// setFieldValue converts a sheet cell value to the field's type and sets it
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	cellStr, ok := cellValue.(string)
	if !ok {
		cellStr = fmt.Sprint(cellValue)
	}
	cellStr = strings.TrimSpace(cellStr)

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
			return nil
		}
		intVal, err := strconv.ParseInt(cellStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
			return nil
		}
		boolVal, err := strconv.ParseBool(cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
