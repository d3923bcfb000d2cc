package table

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewBuilder().
		AddNumeric("A", []pgtype.Float8{Num(1), NullFloat(), Num(3)}).
		AddCategorical("C", []pgtype.Text{Str("x"), Str("y"), NullText()}).
		Build()
	require.NoError(t, err)
	return tbl
}

func TestBuilder_Build(t *testing.T) {
	tbl := sample(t)

	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 2, tbl.Width())
	assert.Equal(t, []string{"A", "C"}, tbl.Names())
	assert.True(t, tbl.HasMissing())

	a, ok := tbl.Column("A")
	require.True(t, ok)
	assert.Equal(t, Numeric, a.Kind())
	assert.Equal(t, 1, a.MissingCount())
	assert.True(t, a.IsMissing(1))
	assert.Equal(t, 3.0, a.Float(2).Float64)
	assert.False(t, a.Text(0).Valid, "numeric column has no text cells")
}

func TestBuilder_LengthMismatch(t *testing.T) {
	_, err := NewBuilder().
		AddNumeric("A", []pgtype.Float8{Num(1), Num(2)}).
		AddNumeric("B", []pgtype.Float8{Num(1)}).
		Build()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "B", se.Column)
	assert.Equal(t, ReasonLengthMismatch, se.Reason)
}

func TestBuilder_DuplicateColumn(t *testing.T) {
	_, err := NewBuilder().
		AddNumeric("A", []pgtype.Float8{Num(1)}).
		AddCategorical("A", []pgtype.Text{Str("x")}).
		Build()

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ReasonDuplicateColumn, se.Reason)
}

func TestBuilder_Empty(t *testing.T) {
	tbl, err := NewBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, 0, tbl.Width())
}

func TestTable_Lookup(t *testing.T) {
	tbl := sample(t)

	_, err := tbl.Lookup("A", Numeric)
	assert.NoError(t, err)

	_, err = tbl.Lookup("Z", Numeric)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ReasonMissingColumn, se.Reason)

	_, err = tbl.Lookup("C", Numeric)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ReasonKindMismatch, se.Reason)
}

func TestTable_ExtendAppendsOnly(t *testing.T) {
	parent := sample(t)

	child, err := parent.Extend().
		AddNumeric("D", []pgtype.Float8{Num(0), Num(0), Num(0)}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C", "D"}, child.Names())
	assert.Equal(t, []string{"A", "C"}, parent.Names(), "parent must not change")

	pa, _ := parent.Column("A")
	ca, _ := child.Column("A")
	assert.Same(t, pa, ca, "untouched columns are shared")
}

func TestNewNumeric_Copies(t *testing.T) {
	cells := []pgtype.Float8{Num(1)}
	c := NewNumeric("A", cells)
	cells[0] = Num(99)

	assert.Equal(t, 1.0, c.Float(0).Float64)

	out := c.Floats()
	out[0] = Num(42)
	assert.Equal(t, 1.0, c.Float(0).Float64)
}

func TestTable_Equal(t *testing.T) {
	a := sample(t)
	b := sample(t)
	assert.True(t, a.Equal(b))

	c, err := NewBuilder().
		AddNumeric("A", []pgtype.Float8{Num(1), Num(2), Num(3)}).
		AddCategorical("C", []pgtype.Text{Str("x"), Str("y"), NullText()}).
		Build()
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"numeric", Numeric, false},
		{"Categorical", Categorical, false},
		{" NUMERIC ", Numeric, false},
		{"date", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestJSON_PreservesMissing(t *testing.T) {
	tbl := sample(t)

	data, err := tbl.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"rows": 3,
		"columns": [
			{"name": "A", "kind": "numeric", "values": [1, null, 3]},
			{"name": "C", "kind": "categorical", "values": ["x", "y", null]}
		]
	}`, string(data))

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.True(t, tbl.Equal(back))
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{
			name:   "ragged columns",
			input:  `{"rows":2,"columns":[{"name":"A","kind":"numeric","values":[1,2]},{"name":"B","kind":"numeric","values":[1]}]}`,
			reason: ReasonLengthMismatch,
		},
		{
			name:   "unknown kind",
			input:  `{"rows":1,"columns":[{"name":"A","kind":"date","values":["2024-01-01"]}]}`,
			reason: ReasonKindMismatch,
		},
		{
			name:   "row count disagrees",
			input:  `{"rows":5,"columns":[{"name":"A","kind":"numeric","values":[1]}]}`,
			reason: ReasonLengthMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.input))
			var se *SchemaError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.reason, se.Reason)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `schema error: missing column "B"`, MissingColumn("B").Error())

	de := &DataError{Column: "A", Reason: ReasonNoValues}
	assert.Equal(t, `data error: no non-missing values in column "A"`, de.Error())
	assert.True(t, errors.Is(de, ErrData))
	assert.False(t, errors.Is(de, ErrSchema))
}
