package core

// project.go maps table rows onto a Shape.
//
// Header binding happens once per table: each field is resolved to the
// leftmost column whose header equals one of its spellings. Rows are then
// converted independently, so a Projector can be shared by goroutines.

import (
	"encoding/json"
	"strconv"
)

// Record is one row projected onto a shape. Values are aligned with the
// shape's fields: string for FieldText, float64 for FieldNumeric, nil for an
// optional field the table does not carry.
type Record struct {
	shape  *boundShape
	values []any
}

// Text returns a text field's value, or "" if absent.
func (r Record) Text(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Number returns a numeric field's value, or 0 if absent.
func (r Record) Number(name string) float64 {
	v, _ := r.Get(name)
	f, _ := v.(float64)
	return f
}

// Has reports whether the field was bound to a column.
func (r Record) Has(name string) bool {
	v, ok := r.Get(name)
	return ok && v != nil
}

// Get returns the raw value of a field by name.
func (r Record) Get(name string) (any, bool) {
	if r.shape == nil {
		return nil, false
	}
	i, ok := r.shape.byName[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Values returns the field values in shape order.
func (r Record) Values() []any {
	return r.values
}

// Map returns the record keyed by field name. Absent optional fields are
// omitted.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	if r.shape == nil {
		return m
	}
	for i, f := range r.shape.fields {
		if r.values[i] != nil {
			m[f.Name] = r.values[i]
		}
	}
	return m
}

// MarshalJSON encodes the record as an object keyed by field name.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

type boundShape struct {
	fields []FieldSpec
	byName map[string]int
}

// Projector converts rows of one table into records of one shape.
type Projector struct {
	shape     Shape
	bound     *boundShape
	positions []int // column per field, -1 if unbound
}

// NewProjector binds shape fields to the header's columns.
// Returns a *FieldMissingError for the first required field that has no
// matching header.
func NewProjector(header Row, shape Shape) (*Projector, error) {
	idx := MakeHeaderIndex(header)

	bound := &boundShape{
		fields: shape.Fields,
		byName: make(map[string]int, len(shape.Fields)),
	}
	positions := make([]int, len(shape.Fields))

	for i, f := range shape.Fields {
		bound.byName[f.Name] = i

		pos := -1
		for _, name := range f.Spellings() {
			if p, ok := idx[name]; ok && (pos < 0 || p < pos) {
				pos = p
			}
		}
		if pos < 0 && f.Required {
			return nil, &FieldMissingError{Field: f.Name}
		}
		positions[i] = pos
	}

	return &Projector{shape: shape, bound: bound, positions: positions}, nil
}

// Shape returns the shape this projector produces.
func (p *Projector) Shape() Shape {
	return p.shape
}

// ProjectRow converts one body row. index is the row's position in the
// table body and is only used for error reporting. Cells missing from a
// short row read as "".
func (p *Projector) ProjectRow(row Row, index int) (Record, error) {
	values := make([]any, len(p.positions))

	for i, pos := range p.positions {
		if pos < 0 {
			continue
		}
		raw := ""
		if pos < len(row) {
			raw = row[pos]
		}

		f := p.bound.fields[i]
		switch f.Type {
		case FieldNumeric:
			if !isDecimal(raw) {
				return Record{}, &FieldTypeError{Field: f.Name, Value: raw, Row: index}
			}
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Record{}, &FieldTypeError{Field: f.Name, Value: raw, Row: index}
			}
			values[i] = n
		default:
			values[i] = raw
		}
	}

	return Record{shape: p.bound, values: values}, nil
}

// isDecimal reports whether s is a plain decimal number: an optional sign,
// digits with at most one point, and an optional exponent. Go literal
// syntax accepted by strconv (underscores, hex, Inf, NaN) is not.
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Project converts every body row of t. The first error aborts the whole
// table.
func Project(t Table, shape Shape) ([]Record, error) {
	p, err := NewProjector(t.Header, shape)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec, err := p.ProjectRow(row, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// RowResult is the outcome of projecting a single row.
type RowResult struct {
	Index  int
	Record Record
	Err    error
}

// ProjectEach converts every body row of t and keeps going past row
// errors. Only a header mismatch is returned as an error.
func ProjectEach(t Table, shape Shape) ([]RowResult, error) {
	p, err := NewProjector(t.Header, shape)
	if err != nil {
		return nil, err
	}

	results := make([]RowResult, len(t.Rows))
	for i, row := range t.Rows {
		rec, err := p.ProjectRow(row, i)
		results[i] = RowResult{Index: i, Record: rec, Err: err}
	}
	return results, nil
}

// ProjectAs converts t into values of T using build for each record.
func ProjectAs[T any](t Table, shape Shape, build func(Record) T) ([]T, error) {
	records, err := Project(t, shape)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(records))
	for i, rec := range records {
		out[i] = build(rec)
	}
	return out, nil
}
