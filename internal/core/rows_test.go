package core

import (
	"encoding/csv"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func readAllRows(t *testing.T, src RowSource) ([]Row, error) {
	t.Helper()

	var rows []Row
	for {
		row, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestCSVReader_EmptyLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "leading empty lines",
			input: "\n\na\n",
			want:  []Row{{""}, {""}, {"a"}},
		},
		{
			name:  "single newline",
			input: "\n",
			want:  []Row{{""}},
		},
		{
			name:  "trailing newline is a terminator not a row",
			input: "a\nb\n",
			want:  []Row{{"a"}, {"b"}},
		},
		{
			name:  "trailing empty lines",
			input: "a\n\n\n",
			want:  []Row{{"a"}, {""}, {""}},
		},
		{
			name:  "no final newline",
			input: "a\n\nb",
			want:  []Row{{"a"}, {""}, {"b"}},
		},
		{
			name:  "quoted empty field",
			input: "a\n\"\"\nb\n",
			want:  []Row{{"a"}, {""}, {"b"}},
		},
		{
			name:  "whitespace line is data",
			input: "a\n  \nb\n",
			want:  []Row{{"a"}, {"  "}, {"b"}},
		},
		{
			name:  "embedded CRLF inside quotes",
			input: "\"x\r\ny\"\n\nz\n",
			want:  []Row{{"x\ny"}, {""}, {"z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readAllRows(t, NewCSVReader(strings.NewReader(tt.input), DefaultReaderOptions()))
			if err != nil {
				t.Fatalf("ReadRow() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSVReader_Delimiter(t *testing.T) {
	src := NewCSVReader(strings.NewReader("a;b\n1;\"x;y\"\n"), ReaderOptions{Comma: ';'})

	got, err := readAllRows(t, src)
	if err != nil {
		t.Fatalf("ReadRow() error = %v", err)
	}
	want := []Row{{"a", "b"}, {"1", "x;y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestCSVReader_InvalidUTF8(t *testing.T) {
	src := NewCSVReader(strings.NewReader("a,b\n\n1,\xff\n"), DefaultReaderOptions())

	_, err := readAllRows(t, src)

	var se *StreamError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StreamError", err)
	}
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("error does not wrap ErrInvalidUTF8: %v", err)
	}
	if se.Line != 3 {
		t.Errorf("Line = %d, want 3", se.Line)
	}
}

func TestCSVReader_ParseError(t *testing.T) {
	src := NewCSVReader(strings.NewReader("a,b\n1,\"unterminated\n"), DefaultReaderOptions())

	_, err := readAllRows(t, src)

	var se *StreamError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StreamError", err)
	}
	if !errors.Is(err, csv.ErrQuote) {
		t.Errorf("error does not wrap csv.ErrQuote: %v", err)
	}
}

func TestCSVReader_LazyQuotes(t *testing.T) {
	src := NewCSVReader(strings.NewReader("a\nsay \"hi\"\n"), ReaderOptions{LazyQuotes: true})

	got, err := readAllRows(t, src)
	if err != nil {
		t.Fatalf("ReadRow() error = %v", err)
	}
	if len(got) != 2 || got[1][0] != `say "hi"` {
		t.Errorf("rows = %q", got)
	}
}

func TestRowIsBlank(t *testing.T) {
	tests := []struct {
		row  Row
		want bool
	}{
		{Row{""}, true},
		{Row{}, false},
		{nil, false},
		{Row{"", ""}, false},
		{Row{" "}, false},
		{Row{"a"}, false},
	}

	for _, tt := range tests {
		if got := tt.row.IsBlank(); got != tt.want {
			t.Errorf("Row(%q).IsBlank() = %v, want %v", tt.row, got, tt.want)
		}
	}
}
