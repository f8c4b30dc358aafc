package collection

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ColumnKind decides how a column's cells are quoted in CSV output.
type ColumnKind int

const (
	// Text cells are always quoted.
	Text ColumnKind = iota
	// Number cells are written bare unless they contain a special character.
	Number
	// Enum cells behave like Number cells.
	Enum
)

// Column is one exported column: its header and the accessor producing the
// cell value.
type Column[T any] struct {
	Header string
	Kind   ColumnKind
	Value  func(T) string
}

// Format is an export file format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied name to a Format; the empty string is CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportFilename returns "{resource}_{YYYY-MM-DD}.{ext}".
func ExportFilename(resource string, format Format, now time.Time) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("%s_%s.%s", resource, now.Format(time.DateOnly), format)
}

// SerializeCSV renders a header row followed by one row per record in view
// order. Header and Text cells are always quoted; Number and Enum cells are
// quoted only when they contain a comma, quote or line break. An empty cell in
// a single-column export is quoted so the row is not read back as a blank
// line. Every row, including the last, ends with "\n".
func SerializeCSV[T any](view []T, columns []Column[T]) ([]byte, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns to export")
	}
	var buf bytes.Buffer
	for i, c := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeQuoted(&buf, c.Header)
	}
	buf.WriteByte('\n')
	for _, rec := range view {
		for i, c := range columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			v := c.Value(rec)
			if c.Kind == Text || needsQuotes(v) || (v == "" && len(columns) == 1) {
				writeQuoted(&buf, v)
			} else {
				buf.WriteString(v)
			}
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func needsQuotes(v string) bool {
	return strings.ContainsAny(v, ",\"\r\n")
}

func writeQuoted(buf *bytes.Buffer, v string) {
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(v, `"`, `""`))
	buf.WriteByte('"')
}

// SerializeXLSX renders the same grid as SerializeCSV into a single-sheet
// workbook. Number cells that parse as floats are stored numerically.
func SerializeXLSX[T any](sheet string, view []T, columns []Column[T]) ([]byte, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns to export")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Export"
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	for col, c := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheet, cell, c.Header); err != nil {
			return nil, err
		}
	}
	for row, rec := range view {
		for col, c := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			v := c.Value(rec)
			if c.Kind == Number {
				if n, perr := strconv.ParseFloat(v, 64); perr == nil {
					if err := f.SetCellFloat(sheet, cell, n, -1, 64); err != nil {
						return nil, err
					}
					continue
				}
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Serialize dispatches on format.
func Serialize[T any](format Format, sheet string, view []T, columns []Column[T]) ([]byte, error) {
	switch format {
	case "", FormatCSV:
		return SerializeCSV(view, columns)
	case FormatXLSX:
		return SerializeXLSX(sheet, view, columns)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
