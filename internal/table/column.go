package table

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Kind is the static type tag of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts "numeric" or "categorical" (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric":
		return Numeric, nil
	case "categorical":
		return Categorical, nil
	default:
		return 0, fmt.Errorf("unknown column kind %q", s)
	}
}

// Num returns a valid numeric cell.
func Num(v float64) pgtype.Float8 {
	return pgtype.Float8{Float64: v, Valid: true}
}

// Str returns a valid categorical cell.
func Str(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// NullFloat returns the missing marker for numeric columns.
func NullFloat() pgtype.Float8 {
	return pgtype.Float8{}
}

// NullText returns the missing marker for categorical columns.
func NullText() pgtype.Text {
	return pgtype.Text{}
}

// Column is a named, kind-tagged sequence of cells. Only the slice matching
// the column's kind is populated. Columns are read-only once built.
type Column struct {
	name  string
	kind  Kind
	nums  []pgtype.Float8
	texts []pgtype.Text
}

// NewNumeric creates a numeric column from a copy of cells.
func NewNumeric(name string, cells []pgtype.Float8) *Column {
	return &Column{name: name, kind: Numeric, nums: append([]pgtype.Float8(nil), cells...)}
}

// NewCategorical creates a categorical column from a copy of cells.
func NewCategorical(name string, cells []pgtype.Text) *Column {
	return &Column{name: name, kind: Categorical, texts: append([]pgtype.Text(nil), cells...)}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.texts)
}

// Float returns cell i of a numeric column. Categorical columns yield the
// missing marker.
func (c *Column) Float(i int) pgtype.Float8 {
	if c.kind != Numeric {
		return pgtype.Float8{}
	}
	return c.nums[i]
}

// Text returns cell i of a categorical column. Numeric columns yield the
// missing marker.
func (c *Column) Text(i int) pgtype.Text {
	if c.kind != Categorical {
		return pgtype.Text{}
	}
	return c.texts[i]
}

// Floats returns a copy of the numeric cells, or nil for categorical columns.
func (c *Column) Floats() []pgtype.Float8 {
	if c.kind != Numeric {
		return nil
	}
	return append([]pgtype.Float8(nil), c.nums...)
}

// Texts returns a copy of the categorical cells, or nil for numeric columns.
func (c *Column) Texts() []pgtype.Text {
	if c.kind != Categorical {
		return nil
	}
	return append([]pgtype.Text(nil), c.texts...)
}

// IsMissing reports whether cell i is the missing marker.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numeric {
		return !c.nums[i].Valid
	}
	return !c.texts[i].Valid
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Value returns cell i as float64, string or nil (missing).
func (c *Column) Value(i int) any {
	if c.kind == Numeric {
		if !c.nums[i].Valid {
			return nil
		}
		return c.nums[i].Float64
	}
	if !c.texts[i].Valid {
		return nil
	}
	return c.texts[i].String
}

// equal compares name, kind and every cell exactly.
func (c *Column) equal(o *Column) bool {
	if c.name != o.name || c.kind != o.kind || c.Len() != o.Len() {
		return false
	}
	if c.kind == Numeric {
		for i := range c.nums {
			if c.nums[i] != o.nums[i] {
				return false
			}
		}
		return true
	}
	for i := range c.texts {
		if c.texts[i] != o.texts[i] {
			return false
		}
	}
	return true
}
