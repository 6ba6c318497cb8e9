package snapshot

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook writes dumped records into an xlsx workbook: a header
// row of property names followed by one row per record, values
// rendered as strings.
func ExportWorkbook(records []ParsedRecord, sheetName, path string) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("closing workbook", "error", err)
		}
	}()

	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("naming sheet: %w", err)
		}
	}

	columns := propertyColumns(records)
	header := append([]string{"id"}, columns...)
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		row := make([]any, 0, len(header))
		row = append(row, rec.ID)
		for _, col := range columns {
			row = append(row, renderValue(rec.Properties[col].Value))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	slog.Info("workbook exported", "path", path, "records", len(records), "columns", len(columns))
	return nil
}

// propertyColumns collects every property name seen across the
// records, sorted for a stable column order.
func propertyColumns(records []ParsedRecord) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for name := range rec.Properties {
			seen[name] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, renderValue(e))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
