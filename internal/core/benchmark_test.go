package core

import (
	"io"
	"strconv"
	"strings"
	"testing"
)

// ============================================================================
// Segmentation Benchmarks
// ============================================================================

// statementCSV builds a two-table export with n body rows per table.
func statementCSV(n int) string {
	var b strings.Builder
	b.WriteString("Symbol,Shares,Note\r\n")
	for i := 0; i < n; i++ {
		b.WriteString("VTSAX," + strconv.Itoa(i) + ".25,\"a, quoted note\"\r\n")
	}
	b.WriteString("\r\n\r\n\r\n")
	b.WriteString("Symbol,Cost Basis\r\n")
	for i := 0; i < n; i++ {
		b.WriteString("VMFXX," + strconv.Itoa(i) + "\r\n")
	}
	return b.String()
}

// BenchmarkCSVReader benchmarks row splitting with empty-line recovery.
func BenchmarkCSVReader(b *testing.B) {
	input := statementCSV(1000)
	b.SetBytes(int64(len(input)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src := NewCSVReader(strings.NewReader(input), DefaultReaderOptions())
		for {
			if _, err := src.ReadRow(); err == io.EOF {
				break
			} else if err != nil {
				b.Fatal(err)
			}
		}
	}
}

// BenchmarkReadTables benchmarks the full read and segment path.
func BenchmarkReadTables(b *testing.B) {
	input := statementCSV(1000)
	b.SetBytes(int64(len(input)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadTables(strings.NewReader(input), DefaultReaderOptions()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSegment isolates the state machine from CSV parsing.
func BenchmarkSegment(b *testing.B) {
	rows := make([]Row, 0, 2000)
	rows = append(rows, Row{"h"})
	for i := 0; i < 1000; i++ {
		rows = append(rows, Row{"1"})
		if i%100 == 0 {
			rows = append(rows, Row{""}, Row{""}, Row{""}, Row{"h"})
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Segment(RowsOf(rows...)); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Projection Benchmarks
// ============================================================================

// BenchmarkProject benchmarks header binding and numeric conversion.
func BenchmarkProject(b *testing.B) {
	tables, err := ReadTables(strings.NewReader(statementCSV(1000)), DefaultReaderOptions())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Project(tables[0], holdingShape); err != nil {
			b.Fatal(err)
		}
	}
}
