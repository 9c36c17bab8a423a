// Package export writes tables and projected records as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/csvtables/internal/core"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the workbooks written by this package.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	minColWidth   = 12.0
	maxColWidth   = 60.0
	invalidInName = `[]:*?/\`
)

// WriteTables writes one sheet per table, named "Table N" after its index.
// Each sheet holds the header row followed by the body rows as text.
func WriteTables(w io.Writer, tables core.TableSet) error {
	wb := newWorkbook()
	defer wb.f.Close()

	for i, t := range tables {
		sheet, err := wb.addSheet(fmt.Sprintf("Table %d", i))
		if err != nil {
			return err
		}

		if err := wb.writeHeader(sheet, t.Header); err != nil {
			return err
		}
		for r, row := range t.Rows {
			cells := make([]any, len(row))
			for c, v := range row {
				cells[c] = v
			}
			if err := wb.writeRow(sheet, r+2, cells); err != nil {
				return err
			}
		}
		wb.fitColumns(sheet, t.Header)
	}

	return wb.write(w)
}

// WriteRecords writes one sheet per projection, named after the shape label.
// Columns follow the shape's fields; numeric values are stored as numbers.
func WriteRecords(w io.Writer, projections []core.Projection) error {
	wb := newWorkbook()
	defer wb.f.Close()

	for _, p := range projections {
		sheet, err := wb.addSheet(p.Shape.Label)
		if err != nil {
			return err
		}

		header := core.Row(p.Shape.FieldNames())
		if err := wb.writeHeader(sheet, header); err != nil {
			return err
		}
		for r, rec := range p.Records {
			if err := wb.writeRow(sheet, r+2, recordCells(p.Shape, rec)); err != nil {
				return err
			}
		}
		wb.fitColumns(sheet, header)
	}

	return wb.write(w)
}

// recordCells lays out rec in field order. Fields the table does not carry
// are left as empty cells.
func recordCells(shape core.Shape, rec core.Record) []any {
	cells := make([]any, len(shape.Fields))
	for i, f := range shape.Fields {
		if v, _ := rec.Get(f.Name); rec.Has(f.Name) {
			cells[i] = v
		}
	}
	return cells
}

type workbook struct {
	f      *excelize.File
	used   map[string]bool
	bold   int
	sheets int
}

func newWorkbook() *workbook {
	f := excelize.NewFile()
	bold, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	return &workbook{f: f, used: make(map[string]bool), bold: bold}
}

// addSheet creates a sheet with a valid, unique name derived from name.
// The first sheet reuses the workbook's default sheet.
func (wb *workbook) addSheet(name string) (string, error) {
	name = wb.uniqueName(sheetName(name))

	if wb.sheets == 0 {
		if err := wb.f.SetSheetName(defaultSheet, name); err != nil {
			return "", fmt.Errorf("rename sheet %q: %w", name, err)
		}
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", name, err)
	}

	wb.sheets++
	wb.used[strings.ToLower(name)] = true
	return name, nil
}

func (wb *workbook) uniqueName(name string) string {
	candidate := name
	for n := 2; wb.used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	return candidate
}

func (wb *workbook) writeHeader(sheet string, header core.Row) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := wb.writeRow(sheet, 1, cells); err != nil {
		return err
	}
	if len(header) == 0 {
		return nil
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return wb.f.SetCellStyle(sheet, "A1", last, wb.bold)
}

func (wb *workbook) writeRow(sheet string, row int, cells []any) error {
	if len(cells) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := wb.f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// fitColumns sizes columns from the header text (approximate).
func (wb *workbook) fitColumns(sheet string, header core.Row) {
	for i, h := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(utf8.RuneCountInString(h) + 4)
		width = max(minColWidth, min(width, maxColWidth))
		wb.f.SetColWidth(sheet, col, col, width)
	}
}

func (wb *workbook) write(w io.Writer) error {
	if err := wb.f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetName strips characters Excel rejects and applies the length limit.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidInName, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Sheet"
	}
	return truncate(name, maxSheetName)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
