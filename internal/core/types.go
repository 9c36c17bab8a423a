package core

import (
	"context"
	"time"
)

// Row is one physical record from the source stream. Field order is
// column order.
type Row []string

// IsBlank reports whether the row is the representation of an empty line:
// exactly one field holding the empty string. A row with zero fields or
// with several empty fields is not blank.
func (r Row) IsBlank() bool {
	return len(r) == 1 && r[0] == ""
}

// Table is a header row plus the body rows that followed it up to the
// terminator or end of stream. Body may be empty.
type Table struct {
	Header Row
	Rows   []Row
}

// TableSet is every table found in one stream, in order of appearance.
type TableSet []Table

// Get returns the table at position i.
func (ts TableSet) Get(i int) (Table, bool) {
	if i < 0 || i >= len(ts) {
		return Table{}, false
	}
	return ts[i], true
}

// TotalRows returns the number of body rows across all tables.
func (ts TableSet) TotalRows() int {
	n := 0
	for _, t := range ts {
		n += len(t.Rows)
	}
	return n
}

// HeaderIndex maps exact header names to their column position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row.
// Names are kept verbatim: matching is case and whitespace sensitive.
// On duplicate names the leftmost column wins.
func MakeHeaderIndex(header Row) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// FieldType represents the declared type of a shape field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// String returns a human-readable name for a field type.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	default:
		return "value"
	}
}

// FieldSpec binds one shape field to a table column.
type FieldSpec struct {
	Name     string    // Field name; also an accepted header spelling
	Aliases  []string  // Other accepted header spellings
	Column   string    // Database column name (derived from Name if empty)
	Type     FieldType // Declared type
	Required bool      // A table without a matching header cannot be projected
}

// Spellings returns every header name that matches this field, Name first.
func (f FieldSpec) Spellings() []string {
	out := make([]string, 0, 1+len(f.Aliases))
	out = append(out, f.Name)
	return append(out, f.Aliases...)
}

// DBColumn returns the database column name for the field.
func (f FieldSpec) DBColumn() string {
	if f.Column != "" {
		return f.Column
	}
	return toDBColumnName(f.Name)
}

// Shape is a caller-defined record layout used to project table rows.
type Shape struct {
	Key    string // Unique identifier: "account"
	Label  string // Display name: "Accounts"
	Fields []FieldSpec
}

// FieldNames returns the shape's field names in declaration order.
func (s Shape) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Binding selects which shape a table is projected into.
type Binding struct {
	Table int    // Position in the TableSet
	Shape string // Registered shape key
}

// Projection is the result of projecting one bound table.
type Projection struct {
	Binding Binding
	Shape   Shape
	Records []Record
}

// Sink receives projected records for persistence.
type Sink interface {
	ImportRecords(ctx context.Context, batchID string, shape Shape, records []Record) (int64, error)
}

// ImportedTable reports what happened to one binding during an import.
type ImportedTable struct {
	Table    int    `json:"table"`
	Shape    string `json:"shape"`
	Rows     int    `json:"rows"`
	Inserted int64  `json:"inserted"`
}

// ImportResult contains the final result of an import operation.
type ImportResult struct {
	BatchID  string          `json:"batchId"`
	FileName string          `json:"fileName"`
	Tables   int             `json:"tables"`
	Imported []ImportedTable `json:"imported"`
	Duration time.Duration   `json:"duration"`
}
