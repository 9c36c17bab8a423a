package core

// segment.go splits a row stream into tables.
//
// The first row of every table is its header, whatever it contains. After
// the header, blank rows are counted: a run of TerminatorRun blank rows
// closes the table and the next row starts a new one. Shorter runs are
// dropped and the table continues. A stream that ends mid-table still
// yields that table.
//
// Because the header rule is unconditional, a run of four or more blank
// rows produces a table whose header is [""]. This is kept on purpose:
// consumers may depend on the exact table count of such inputs.

import (
	"context"
	"errors"
	"io"
)

// TerminatorRun is the number of consecutive blank rows that ends a table.
const TerminatorRun = 3

// ContextCheckInterval is how often (in rows) SegmentContext checks for
// cancellation.
var ContextCheckInterval = 100

// segmenter holds the state of one forward pass.
type segmenter struct {
	tables  TableSet
	current Table
	seen    int // rows seen in the current table, header included
	blanks  int // length of the current blank run
}

func (s *segmenter) push(row Row) {
	if s.seen == 0 {
		s.current.Header = row
		s.seen = 1
		return
	}

	blank := row.IsBlank()
	if blank {
		s.blanks++
	} else {
		s.blanks = 0
	}

	if s.blanks == TerminatorRun {
		s.tables = append(s.tables, s.current)
		s.current = Table{}
		s.seen = 0
		s.blanks = 0
		return
	}

	s.seen++
	if !blank {
		s.current.Rows = append(s.current.Rows, row)
	}
}

func (s *segmenter) finish() TableSet {
	if s.seen > 0 {
		s.tables = append(s.tables, s.current)
	}
	if s.tables == nil {
		return TableSet{}
	}
	return s.tables
}

// Segment reads src to the end and partitions its rows into tables.
// The only error is a *StreamError from the source; no partial result is
// returned with it.
func Segment(src RowSource) (TableSet, error) {
	return SegmentContext(context.Background(), src)
}

// SegmentContext is Segment with periodic cancellation checks.
func SegmentContext(ctx context.Context, src RowSource) (TableSet, error) {
	var s segmenter

	for n := 1; ; n++ {
		if ContextCheckInterval > 0 && n%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *StreamError
			if errors.As(err, &se) {
				return nil, err
			}
			return nil, &StreamError{Err: err}
		}

		s.push(row)
	}

	return s.finish(), nil
}

// ReadTables splits delimited text from r into tables. A leading UTF-8
// BOM is ignored.
func ReadTables(r io.Reader, opts ReaderOptions) (TableSet, error) {
	return Segment(NewCSVReader(NewBOMSkippingReader(r), opts))
}
