package core

import (
	"errors"
	"fmt"
)

// Sentinels for matching error kinds with errors.Is.
var (
	ErrStream       = errors.New("stream error")
	ErrFieldMissing = errors.New("field missing")
	ErrFieldType    = errors.New("field type error")

	// ErrInvalidUTF8 is wrapped by a StreamError when a row is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("encoding error: invalid UTF-8")

	ErrUnknownShape  = errors.New("unknown shape")
	ErrTableIndex    = errors.New("table not found")
	ErrStoreDisabled = errors.New("import store not configured")
)

// StreamError reports a failure of the underlying row source.
// Segmentation aborts on it and returns no tables.
type StreamError struct {
	Line int // 1-based source line, 0 if unknown
	Err  error
}

func (e *StreamError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("read row at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("read row: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

func (e *StreamError) Is(target error) bool { return target == ErrStream }

// FieldMissingError reports a required shape field with no matching header.
type FieldMissingError struct {
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Field)
}

func (e *FieldMissingError) Is(target error) bool { return target == ErrFieldMissing }

// FieldTypeError reports a matched value that cannot be coerced to the
// field's declared type.
type FieldTypeError struct {
	Field string
	Value string
	Row   int // 0-based body row index
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("row %d: invalid number for %q: %q", e.Row, e.Field, e.Value)
}

func (e *FieldTypeError) Is(target error) bool { return target == ErrFieldType }
