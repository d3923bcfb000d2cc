package table

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Table is an immutable, ordered collection of equal-length columns.
type Table struct {
	rows    int
	columns []*Column
	index   map[string]int
}

// Rows returns the row count N.
func (t *Table) Rows() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns the columns in schema order. The slice is a copy; the
// columns themselves are shared and read-only.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// Names returns column names in schema order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Lookup returns the named column if it exists with the given kind.
// Returns a SchemaError otherwise.
func (t *Table) Lookup(name string, kind Kind) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, MissingColumn(name)
	}
	if c.kind != kind {
		return nil, KindMismatch(name, kind, c.kind)
	}
	return c, nil
}

// HasMissing reports whether any cell in the table is the missing marker.
func (t *Table) HasMissing() bool {
	for _, c := range t.columns {
		if c.MissingCount() > 0 {
			return true
		}
	}
	return false
}

// Extend returns a builder seeded with this table's columns. New columns
// can only be appended after them.
func (t *Table) Extend() *Builder {
	b := NewBuilder()
	for _, c := range t.columns {
		b.Add(c)
	}
	return b
}

// Equal reports whether both tables have the same schema and identical cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if !t.columns[i].equal(o.columns[i]) {
			return false
		}
	}
	return true
}

// Builder assembles a Table. The first error is sticky and returned by Build.
// Slices handed to AddNumeric and AddCategorical are owned by the builder and
// must not be modified by the caller afterwards.
type Builder struct {
	rows    int
	sized   bool
	columns []*Column
	index   map[string]int
	err     error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// AddNumeric appends a numeric column.
func (b *Builder) AddNumeric(name string, cells []pgtype.Float8) *Builder {
	return b.Add(&Column{name: name, kind: Numeric, nums: cells})
}

// AddCategorical appends a categorical column.
func (b *Builder) AddCategorical(name string, cells []pgtype.Text) *Builder {
	return b.Add(&Column{name: name, kind: Categorical, texts: cells})
}

// Add appends an existing column.
func (b *Builder) Add(c *Column) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.index[c.name]; exists {
		b.err = &SchemaError{Column: c.name, Reason: ReasonDuplicateColumn}
		return b
	}
	if !b.sized {
		b.rows = c.Len()
		b.sized = true
	} else if c.Len() != b.rows {
		b.err = &SchemaError{
			Column: c.name,
			Reason: ReasonLengthMismatch,
			Detail: lengthDetail(b.rows, c.Len()),
		}
		return b
	}
	b.index[c.name] = len(b.columns)
	b.columns = append(b.columns, c)
	return b
}

// Build validates the collected columns and returns the frozen table.
// The builder must not be used afterwards.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := &Table{
		rows:    b.rows,
		columns: b.columns,
		index:   b.index,
	}
	b.columns = nil
	b.index = nil
	return t, nil
}

func lengthDetail(want, got int) string {
	return fmt.Sprintf("want %d rows, got %d", want, got)
}
