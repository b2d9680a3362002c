package services

import (
	"fmt"
	"strings"
)

// ColumnMap maps a logical field name to its zero-based column index on a
// sheet.
type ColumnMap map[string]int

// Has reports whether the logical field was located.
func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Cell returns the trimmed cell value of the logical field on the given
// row, or "" when the field is absent or the row is shorter than the
// column index (excelize trims trailing empty cells per row).
func (m ColumnMap) Cell(row []string, field string) string {
	idx, ok := m[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellAt(row, idx))
}

// SchemaError reports required columns that could not be located on a
// sheet during header inference.
type SchemaError struct {
	Sheet   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("aba %q: colunas obrigatórias faltando: %s",
		e.Sheet, strings.Join(e.Missing, ", "))
}

// HeaderSpec describes one logical column: the field name used by the
// code, the header labels that identify it on a sheet, and whether the
// sheet is unusable without it.
type HeaderSpec struct {
	Field    string
	Labels   []string
	Required bool
}

// LocateColumns maps a header row to column indices by matching cell text
// against each spec's labels (case-insensitive, trimmed). Missing required
// fields produce a *SchemaError naming them; optional fields are simply
// absent from the returned map.
func LocateColumns(sheet string, header []string, specs []HeaderSpec) (ColumnMap, error) {
	cols := ColumnMap{}
	for i, cell := range header {
		label := strings.TrimSpace(cell)
		if label == "" {
			continue
		}
		for _, spec := range specs {
			if cols.Has(spec.Field) {
				continue
			}
			for _, l := range spec.Labels {
				if strings.EqualFold(label, l) {
					cols[spec.Field] = i
					break
				}
			}
		}
	}

	var missing []string
	for _, spec := range specs {
		if spec.Required && !cols.Has(spec.Field) {
			missing = append(missing, spec.Labels[0])
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Sheet: sheet, Missing: missing}
	}
	return cols, nil
}

// findHeaderRow scans the first limit rows for a cell whose trimmed text
// equals label and returns its zero-based row index, or -1.
func findHeaderRow(rows [][]string, label string, limit int) int {
	for i, row := range rows {
		if i >= limit {
			break
		}
		for _, cell := range row {
			if strings.TrimSpace(cell) == label {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
