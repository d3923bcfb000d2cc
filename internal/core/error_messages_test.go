package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/JonMunkholm/featureprep/internal/tableio"
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
			name:        "missing column",
			err:         fmt.Errorf("transform: %w", table.MissingColumn("A")),
			wantCode:    "SCH001",
			wantMessage: "A required column is missing",
		},
		{
			name:        "length mismatch",
			err:         &table.SchemaError{Column: "B", Reason: table.ReasonLengthMismatch},
			wantCode:    "SCH002",
			wantMessage: "Columns have different numbers of rows",
		},
		{
			name:        "duplicate column",
			err:         &table.SchemaError{Column: "A_squared", Reason: table.ReasonDuplicateColumn},
			wantCode:    "SCH003",
			wantMessage: "Two columns share the same name",
		},
		{
			name:        "kind mismatch",
			err:         table.KindMismatch("C", table.Numeric, table.Categorical),
			wantCode:    "SCH004",
			wantMessage: "A column has the wrong type for this operation",
		},
		{
			name:        "all missing numeric column",
			err:         fmt.Errorf("sanitize: %w", &table.DataError{Column: "A", Reason: table.ReasonNoValues}),
			wantCode:    "DAT001",
			wantMessage: "A numeric column has no values to fill missing cells from",
		},
		{
			name:        "non-finite ratio",
			err:         &table.DataError{Column: "AB_ratio", Reason: table.ReasonNonFinite},
			wantCode:    "DAT002",
			wantMessage: "A derived value is infinite or not a number",
		},
		{
			name:        "unknown source",
			err:         fmt.Errorf("%w %q", ErrUnknownSource, "nope"),
			wantCode:    "SRC001",
			wantMessage: "Unknown data source",
		},
		{
			name:        "too many runs",
			err:         ErrTooManyRuns,
			wantCode:    "RUN001",
			wantMessage: "System is busy processing other runs",
		},
		{
			name:        "cancelled",
			err:         fmt.Errorf("load: %w", context.Canceled),
			wantCode:    "RUN002",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("features: %w", context.DeadlineExceeded),
			wantCode:    "RUN003",
			wantMessage: "Run timed out",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "unknown source key that reads like a schema error",
			err:         fmt.Errorf("%w %q", ErrUnknownSource, "missing column"),
			wantCode:    "SRC001",
			wantMessage: "Unknown data source",
		},
		{
			name:        "schema error on a column named like another error",
			err:         fmt.Errorf("sanitize: %w", table.MissingColumn("too many concurrent runs")),
			wantCode:    "SCH001",
			wantMessage: "A required column is missing",
		},
		{
			name:        "data error reason wins over column name",
			err:         &table.DataError{Column: "invalid csv", Reason: table.ReasonNoValues},
			wantCode:    "DAT001",
			wantMessage: "A numeric column has no values to fill missing cells from",
		},
		{
			name:        "empty file sentinel",
			err:         fmt.Errorf("load: %w", tableio.ErrEmptyFile),
			wantCode:    "SRC004",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "invalid csv cell that reads like a schema error",
			err:         fmt.Errorf("load: %w", fmt.Errorf("%w: row 1 column %q: %q is not a number", tableio.ErrInvalidCSV, "A", "missing column")),
			wantCode:    "SRC002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "max bytes error",
			err:         fmt.Errorf("read upload: %w", &http.MaxBytesError{Limit: 10}),
			wantCode:    "SRC003",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CSV: bare quote"),
			wantCode:    "SRC002",
			wantMessage: "File is not a valid CSV",
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
	result := FormatUserError(ErrTooManyRuns)

	expected := "System is busy processing other runs (Code: RUN001). Please wait a moment and try again"
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
		{"nil error is not user facing", nil, false},
		{"schema error is user facing", table.MissingColumn("A"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := table.MissingColumn("C")
		userErr := NewUserError(techErr)

		if userErr.Error() != "A required column is missing" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, table.ErrSchema) {
			t.Error("Unwrap() should expose the schema error")
		}
	})
}
