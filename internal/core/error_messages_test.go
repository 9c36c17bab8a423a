package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "stream error maps correctly",
			err:         &StreamError{Line: 4, Err: errors.New("unexpected EOF")},
			wantCode:    "STR001",
			wantMessage: "The file could not be read",
		},
		{
			name:        "invalid UTF-8 maps before generic stream error",
			err:         &StreamError{Line: 2, Err: ErrInvalidUTF8},
			wantCode:    "STR002",
			wantMessage: "The file contains invalid characters",
		},
		{
			name:        "quote error maps correctly",
			err:         &StreamError{Line: 9, Err: &csv.ParseError{StartLine: 9, Line: 9, Err: csv.ErrQuote}},
			wantCode:    "STR003",
			wantMessage: "The file has malformed quoting",
		},
		{
			name:        "field missing maps correctly",
			err:         fmt.Errorf("table 1 as transaction: %w", &FieldMissingError{Field: "trade_date"}),
			wantCode:    "FLD001",
			wantMessage: "A required column is missing from the table",
		},
		{
			name:        "field type maps correctly",
			err:         &FieldTypeError{Field: "shares", Value: "abc", Row: 3},
			wantCode:    "FLD002",
			wantMessage: "A value does not match its column type",
		},
		{
			name:        "unknown shape maps correctly",
			err:         fmt.Errorf("%w: widget", ErrUnknownShape),
			wantCode:    "LKP001",
			wantMessage: "Unknown record type",
		},
		{
			name:        "table index maps correctly",
			err:         fmt.Errorf("%w: index 5 of 2", ErrTableIndex),
			wantCode:    "LKP002",
			wantMessage: "The file does not contain that table",
		},
		{
			name:        "too many imports maps correctly",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "store disabled maps correctly",
			err:         ErrStoreDisabled,
			wantCode:    "IMP002",
			wantMessage: "Importing is not available",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "IMP003",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "cancelled maps correctly",
			err:         fmt.Errorf("segment x.csv: %w", context.Canceled),
			wantCode:    "IMP004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline maps correctly",
			err:         context.DeadlineExceeded,
			wantCode:    "IMP005",
			wantMessage: "Request timed out",
		},
		{
			name:        "file too large maps correctly",
			err:         errors.New("file too large: 200MB exceeds limit"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("HTTP: REQUEST BODY TOO LARGE"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&FieldMissingError{Field: "symbol"})

	expected := "A required column is missing from the table (Code: FLD001). Check that the table header matches the selected record type"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "typed error is user facing",
			err:  &FieldTypeError{Field: "shares", Value: "x"},
			want: true,
		},
		{
			name: "pattern match is user facing",
			err:  errors.New("no file provided"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&StreamError{Line: 3, Err: ErrInvalidUTF8}, "read row at line 3: encoding error: invalid UTF-8"},
		{&StreamError{Err: errors.New("boom")}, "read row: boom"},
		{&FieldMissingError{Field: "symbol"}, `missing required column "symbol"`},
		{&FieldTypeError{Field: "shares", Value: "abc", Row: 2}, `row 2: invalid number for "shares": "abc"`},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
