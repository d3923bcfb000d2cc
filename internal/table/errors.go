package table

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrSchema = errors.New("schema error")
	ErrData   = errors.New("data error")
)

// Reasons used in SchemaError. They are part of the error text and are
// matched by the user-facing error mapping, so keep them stable.
const (
	ReasonMissingColumn   = "missing column"
	ReasonLengthMismatch  = "length mismatch"
	ReasonDuplicateColumn = "duplicate column"
	ReasonKindMismatch    = "kind mismatch"
)

// Reasons used in DataError.
const (
	ReasonNoValues  = "no non-missing values"
	ReasonNonFinite = "non-finite value"
)

// SchemaError reports an absent column, a length mismatch, a duplicate
// column name or a column of the wrong kind.
type SchemaError struct {
	Column string
	Reason string
	Detail string // Optional extra context
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema error: %s %q", e.Reason, e.Column)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// DataError reports a column whose values cannot satisfy a stage, such as a
// numeric column with nothing to average.
type DataError struct {
	Column string
	Reason string
	Detail string
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("data error: %s in column %q", e.Reason, e.Column)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is ErrData.
func (e *DataError) Is(target error) bool {
	return target == ErrData
}

// MissingColumn returns a SchemaError for a column that is not in the table.
func MissingColumn(name string) *SchemaError {
	return &SchemaError{Column: name, Reason: ReasonMissingColumn}
}

// KindMismatch returns a SchemaError for a column that exists with the wrong kind.
func KindMismatch(name string, want, got Kind) *SchemaError {
	return &SchemaError{
		Column: name,
		Reason: ReasonKindMismatch,
		Detail: fmt.Sprintf("want %s, got %s", want, got),
	}
}
