package core

// error_messages.go maps errors to user-facing messages with a code for
// support reference.
//
// # Stream Errors (STR001-STR099)
//
//	STR001 - The file could not be read
//	STR002 - The file is not valid UTF-8
//	STR003 - Malformed quoting in the file
//
// # Field Errors (FLD001-FLD099)
//
//	FLD001 - A required column is missing from a table header
//	FLD002 - A value could not be converted to the column's type
//
// # Lookup Errors (LKP001-LKP099)
//
//	LKP001 - Unknown record shape
//	LKP002 - Table index out of range
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Too many imports running
//	IMP002 - No database configured
//	IMP003 - Database connection failure
//	IMP004 - Request cancelled
//	IMP005 - Request timed out
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - No file provided
//
// Typed errors are matched first with errors.Is. Anything else falls back to
// substring patterns on the lowercased message.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// UserMessage contains a user-friendly error message with an action to take.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgStreamRead = UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is a complete CSV export and try again",
		Code:    "STR001",
	}
	msgEncoding = UserMessage{
		Message: "The file contains invalid characters",
		Action:  "Save the file as UTF-8 and try again",
		Code:    "STR002",
	}
	msgQuoting = UserMessage{
		Message: "The file has malformed quoting",
		Action:  "Make sure quoted values are closed and inner quotes are doubled",
		Code:    "STR003",
	}
	msgFieldMissing = UserMessage{
		Message: "A required column is missing from the table",
		Action:  "Check that the table header matches the selected record type",
		Code:    "FLD001",
	}
	msgFieldType = UserMessage{
		Message: "A value does not match its column type",
		Action:  "Use plain decimal numbers in numeric columns",
		Code:    "FLD002",
	}
	msgUnknownShape = UserMessage{
		Message: "Unknown record type",
		Action:  "Choose one of the listed record types",
		Code:    "LKP001",
	}
	msgTableIndex = UserMessage{
		Message: "The file does not contain that table",
		Action:  "List the tables in the file and pick an existing index",
		Code:    "LKP002",
	}
	msgTooManyImports = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
	msgStoreDisabled = UserMessage{
		Message: "Importing is not available",
		Action:  "Configure DATABASE_URL to enable imports",
		Code:    "IMP002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP005",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "IMP003",
	}},
	{pattern: "connection reset", msg: UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "IMP003",
	}},
	{pattern: "file too large", msg: UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{pattern: "request body too large", msg: UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{pattern: "no file provided", msg: UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file",
		Code:    "FILE002",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrInvalidUTF8):
		return msgEncoding
	case errors.Is(err, csv.ErrQuote), errors.Is(err, csv.ErrBareQuote):
		return msgQuoting
	case errors.Is(err, ErrStream):
		return msgStreamRead
	case errors.Is(err, ErrFieldMissing):
		return msgFieldMissing
	case errors.Is(err, ErrFieldType):
		return msgFieldType
	case errors.Is(err, ErrUnknownShape):
		return msgUnknownShape
	case errors.Is(err, ErrTableIndex):
		return msgTableIndex
	case errors.Is(err, ErrTooManyImports):
		return msgTooManyImports
	case errors.Is(err, ErrStoreDisabled):
		return msgStoreDisabled
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// the generic ERR000 message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
