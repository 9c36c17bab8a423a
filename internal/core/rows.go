package core

// rows.go provides the row sources the segmenter consumes.
//
// encoding/csv silently skips empty lines, but an empty line is exactly what
// separates tables. CSVReader puts them back: every physical empty line is
// reported as the row [""], the same shape a quoted empty field ("") has.
// Skipped lines are found by comparing the start line of each record with
// the line after the previous one; trailing empty lines are found by
// counting newlines in the raw input once the parser hits EOF.

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// RowSource yields rows one at a time. It returns io.EOF after the last row.
type RowSource interface {
	ReadRow() (Row, error)
}

// ReaderOptions configures the CSV row splitter.
type ReaderOptions struct {
	Comma      rune // Field delimiter (default ',')
	LazyQuotes bool // Allow bare quotes in unquoted fields
}

// DefaultReaderOptions returns comma-delimited, strict quoting.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{Comma: ','}
}

// CSVReader is a RowSource over delimited text that preserves empty lines.
type CSVReader struct {
	lines *lineCounter
	csv   *csv.Reader

	nextLine int // first source line not yet covered by a returned row
	pending  int // empty lines still to report before held
	held     Row // record waiting behind pending empty lines
	eof      bool
}

// NewCSVReader creates a CSVReader reading from r.
func NewCSVReader(r io.Reader, opts ReaderOptions) *CSVReader {
	lc := &lineCounter{reader: r}

	cr := csv.NewReader(lc)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = opts.LazyQuotes
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	return &CSVReader{
		lines:    lc,
		csv:      cr,
		nextLine: 1,
	}
}

// ReadRow implements RowSource.
func (r *CSVReader) ReadRow() (Row, error) {
	if r.pending > 0 {
		r.pending--
		return Row{""}, nil
	}
	if r.held != nil {
		row := r.held
		r.held = nil
		return row, nil
	}
	if r.eof {
		return nil, io.EOF
	}

	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		r.eof = true
		trailing := r.lines.total() - (r.nextLine - 1)
		if trailing > 0 {
			r.pending = trailing - 1
			return Row{""}, nil
		}
		return nil, io.EOF
	}
	if err != nil {
		line := r.nextLine
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			line = pe.Line
		}
		return nil, &StreamError{Line: line, Err: err}
	}

	start, _ := r.csv.FieldPos(0)
	for _, field := range record {
		if !utf8.ValidString(field) {
			return nil, &StreamError{Line: start, Err: ErrInvalidUTF8}
		}
	}

	skipped := start - r.nextLine
	r.nextLine = start + embeddedNewlines(record) + 1

	row := Row(record)
	if skipped > 0 {
		r.held = row
		r.pending = skipped - 1
		return Row{""}, nil
	}
	return row, nil
}

// embeddedNewlines counts line breaks inside quoted fields. encoding/csv
// folds \r\n to \n, so each physical break is exactly one \n.
func embeddedNewlines(record []string) int {
	n := 0
	for _, f := range record {
		n += strings.Count(f, "\n")
	}
	return n
}

// lineCounter counts physical lines in everything read through it.
type lineCounter struct {
	reader   io.Reader
	newlines int
	read     int64
	last     byte
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	if n > 0 {
		for _, b := range p[:n] {
			if b == '\n' {
				c.newlines++
			}
		}
		c.read += int64(n)
		c.last = p[n-1]
	}
	return n, err
}

// total returns the number of lines seen so far. A final line without a
// terminator still counts.
func (c *lineCounter) total() int {
	if c.read > 0 && c.last != '\n' {
		return c.newlines + 1
	}
	return c.newlines
}

// SliceSource is a RowSource over rows already in memory.
type SliceSource struct {
	rows []Row
	pos  int
}

// RowsOf returns a RowSource yielding rows in order.
func RowsOf(rows ...Row) *SliceSource {
	return &SliceSource{rows: rows}
}

// ReadRow implements RowSource.
func (s *SliceSource) ReadRow() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}
