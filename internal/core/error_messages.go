// # Error Codes Reference
//
// User-facing messages for pipeline failures. Each message carries a code
// that can be quoted when reporting a problem.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Missing column: A column a stage needs is not in the table
//	         Patterns: "missing column"
//	SCH002 - Length mismatch: Columns have different numbers of rows
//	         Patterns: "length mismatch"
//	SCH003 - Duplicate column: Two columns share a name
//	         Patterns: "duplicate column"
//	SCH004 - Kind mismatch: A column is numeric where categorical is expected or vice versa
//	         Patterns: "kind mismatch"
//
// # Data Errors (DAT001-DAT099)
//
//	DAT001 - Empty column: A numeric column has no values to average
//	         Patterns: "no non-missing values"
//	DAT002 - Non-finite value: A derived value is infinite or NaN
//	         Patterns: "non-finite value"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Unknown source: No data source is registered under the key
//	         Patterns: "unknown source"
//	SRC002 - Invalid CSV: The uploaded file could not be parsed
//	         Patterns: "invalid csv"
//	SRC003 - File too large: The upload exceeds the size limit
//	         Patterns: "request body too large", "file too large"
//	SRC004 - Empty file: The upload has no header row
//	         Patterns: "empty file"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: All run slots are taken
//	         Patterns: "too many concurrent runs"
//	RUN002 - Cancelled: The request was cancelled
//	         Patterns: "context canceled"
//	RUN003 - Timeout: The run did not finish in time
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Typed errors (table.SchemaError, table.DataError, the package and tableio sentinels,
// http.MaxBytesError and context errors) are classified first. Patterns are
// the fallback for untyped errors: they are matched case-insensitively with
// strings.Contains and the first match wins.

package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/JonMunkholm/featureprep/internal/tableio"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: more specific patterns come first.
var errorPatterns = []errorPattern{
	// Schema
	{
		pattern: "missing column",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "Check that the input has every column the rules reference",
			Code:    "SCH001",
		},
	},
	{
		pattern: "length mismatch",
		msg: UserMessage{
			Message: "Columns have different numbers of rows",
			Action:  "Ensure every row has a value or an empty cell for each column",
			Code:    "SCH002",
		},
	},
	{
		pattern: "duplicate column",
		msg: UserMessage{
			Message: "Two columns share the same name",
			Action:  "Rename the duplicate header or derived column",
			Code:    "SCH003",
		},
	},
	{
		pattern: "kind mismatch",
		msg: UserMessage{
			Message: "A column has the wrong type for this operation",
			Action:  "Numeric rules need numeric columns and indicators need text columns",
			Code:    "SCH004",
		},
	},

	// Data
	{
		pattern: "no non-missing values",
		msg: UserMessage{
			Message: "A numeric column has no values to fill missing cells from",
			Action:  "Provide at least one value in every numeric column",
			Code:    "DAT001",
		},
	},
	{
		pattern: "non-finite value",
		msg: UserMessage{
			Message: "A derived value is infinite or not a number",
			Action:  "Check ratio denominators and the epsilon setting",
			Code:    "DAT002",
		},
	},

	// Source
	{
		pattern: "unknown source",
		msg: UserMessage{
			Message: "Unknown data source",
			Action:  "List available sources at /api/sources",
			Code:    "SRC001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "SRC002",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "SRC003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "SRC003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "SRC004",
		},
	},

	// Run
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy processing other runs",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Run timed out",
			Action:  "Try a smaller input or try again later",
			Code:    "RUN003",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
//	err := table.MissingColumn("A")
//	msg := MapError(err)
//	// msg.Code == "SCH001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTypedError(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// mapTypedError classifies err by type and sentinel, ignoring its text.
func mapTypedError(err error) (UserMessage, bool) {
	var schemaErr *table.SchemaError
	if errors.As(err, &schemaErr) {
		return messageForPattern(schemaErr.Reason)
	}
	var dataErr *table.DataError
	if errors.As(err, &dataErr) {
		return messageForPattern(dataErr.Reason)
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, ErrUnknownSource):
		return messageForPattern("unknown source")
	case errors.Is(err, ErrTooManyRuns):
		return messageForPattern("too many concurrent runs")
	case errors.Is(err, tableio.ErrEmptyFile):
		return messageForPattern("empty file")
	case errors.Is(err, tableio.ErrInvalidCSV):
		return messageForPattern("invalid csv")
	case errors.As(err, &maxBytesErr):
		return messageForPattern("request body too large")
	case errors.Is(err, context.Canceled):
		return messageForPattern("context canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return messageForPattern("context deadline exceeded")
	}
	return UserMessage{}, false
}

func messageForPattern(pattern string) (UserMessage, bool) {
	for _, ep := range errorPatterns {
		if ep.pattern == pattern {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
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

// IsUserFacing reports whether err maps to a specific user message rather
// than the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
