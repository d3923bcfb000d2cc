package core

import (
	"testing"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizer_Scenario(t *testing.T) {
	out, err := NewSanitizer(DefaultOptions()).Apply(scenario(t))
	require.NoError(t, err)

	a, aValid := floatsOf(t, out, "A")
	assert.Equal(t, []float64{1, 2, 3, 2.75, 5}, a)
	assert.Equal(t, []bool{true, true, true, true, true}, aValid)

	b, _ := floatsOf(t, out, "B")
	assert.Equal(t, []float64{10, 9, 8, 7, 6}, b)

	assert.Equal(t, []string{"x", "y", "missing", "y", "x"}, textsOf(t, out, "C"))
	assert.False(t, out.HasMissing())
	assert.Equal(t, []string{"A", "B", "C"}, out.Names(), "column order is preserved")
}

func TestSanitizer_DoesNotMutateInput(t *testing.T) {
	in := scenario(t)
	_, err := NewSanitizer(DefaultOptions()).Apply(in)
	require.NoError(t, err)

	_, valid := floatsOf(t, in, "A")
	assert.False(t, valid[3])
	assert.Equal(t, miss, textsOf(t, in, "C")[2])
}

func TestSanitizer_Idempotent(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *table.Table
	}{
		{"scenario", func(t *testing.T) *table.Table { return scenario(t) }},
		{"bounded column with negatives", func(t *testing.T) *table.Table {
			tbl, err := table.NewBuilder().
				AddNumeric("A", numCellsMissing([]float64{1, 0, 3}, 1)).
				AddNumeric("B", numCells(-3, 2, -0.5)).
				Build()
			require.NoError(t, err)
			return tbl
		}},
		{"all categorical", func(t *testing.T) *table.Table {
			tbl, err := table.NewBuilder().
				AddCategorical("C", textCells("x", miss, "y")).
				AddCategorical("D", textCells(miss, miss, miss)).
				Build()
			require.NoError(t, err)
			return tbl
		}},
		{"imputed negative mean", func(t *testing.T) *table.Table {
			tbl, err := table.NewBuilder().
				AddNumeric("B", numCellsMissing([]float64{-4, -2, 0, 1}, 2)).
				Build()
			require.NoError(t, err)
			return tbl
		}},
		{"near overflow values", func(t *testing.T) *table.Table {
			tbl, err := table.NewBuilder().
				AddNumeric("A", numCellsMissing([]float64{1e308, 1e308, 0}, 2)).
				Build()
			require.NoError(t, err)
			return tbl
		}},
		{"zero rows", func(t *testing.T) *table.Table {
			tbl, err := table.NewBuilder().
				AddNumeric("A", numCells()).
				AddCategorical("C", textCells()).
				Build()
			require.NoError(t, err)
			return tbl
		}},
		{"no columns", func(t *testing.T) *table.Table {
			tbl, err := table.NewBuilder().Build()
			require.NoError(t, err)
			return tbl
		}},
	}

	s := NewSanitizer(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once, err := s.Apply(tt.build(t))
			require.NoError(t, err)
			twice, err := s.Apply(once)
			require.NoError(t, err)

			assert.True(t, once.Equal(twice))
			assert.False(t, once.HasMissing())
			if b, ok := once.Column("B"); ok && b.Kind() == table.Numeric {
				for i := 0; i < b.Len(); i++ {
					assert.GreaterOrEqual(t, b.Float(i).Float64, 0.0)
				}
			}
		})
	}
}

func TestMeanOfValid(t *testing.T) {
	tests := []struct {
		name   string
		cells  []pgtype.Float8
		want   float64
		wantOK bool
	}{
		{"scenario column", numCellsMissing([]float64{1, 2, 3, 0, 5}, 3), 2.75, true},
		{"sum overflows", numCellsMissing([]float64{1e308, 1e308, 0}, 2), 1e308, true},
		{"negative sum overflows", numCells(-1e308, -1e308), -1e308, true},
		{"nothing valid", numCellsMissing([]float64{0, 0}, 0, 1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := meanOfValid(tt.cells)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizer_ClampsNegativeImputedMean(t *testing.T) {
	in, err := table.NewBuilder().
		AddNumeric("B", numCellsMissing([]float64{-4, -2, 0, 1}, 2)).
		Build()
	require.NoError(t, err)

	out, err := NewSanitizer(DefaultOptions()).Apply(in)
	require.NoError(t, err)

	b, _ := floatsOf(t, out, "B")
	assert.Equal(t, []float64{0, 0, 0, 1}, b)
}

func TestSanitizer_ClampsWithoutMissing(t *testing.T) {
	in, err := table.NewBuilder().AddNumeric("B", numCells(-1, 2)).Build()
	require.NoError(t, err)

	out, err := NewSanitizer(DefaultOptions()).Apply(in)
	require.NoError(t, err)

	b, _ := floatsOf(t, out, "B")
	assert.Equal(t, []float64{0, 2}, b)
}

func TestSanitizer_UnboundedNegativeKept(t *testing.T) {
	in, err := table.NewBuilder().
		AddNumeric("A", numCellsMissing([]float64{-4, -2, 0}, 2)).
		Build()
	require.NoError(t, err)

	out, err := NewSanitizer(DefaultOptions()).Apply(in)
	require.NoError(t, err)

	a, _ := floatsOf(t, out, "A")
	assert.Equal(t, []float64{-4, -2, -3}, a)
}

func TestSanitizer_AllMissingNumeric(t *testing.T) {
	in, err := table.NewBuilder().
		AddNumeric("A", numCellsMissing([]float64{0, 0}, 0, 1)).
		Build()
	require.NoError(t, err)

	_, err = NewSanitizer(DefaultOptions()).Apply(in)

	var de *table.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "A", de.Column)
	assert.Equal(t, table.ReasonNoValues, de.Reason)
	assert.ErrorIs(t, err, table.ErrData)
}

func TestSanitizer_AllMissingCategorical(t *testing.T) {
	in, err := table.NewBuilder().AddCategorical("C", textCells(miss, miss)).Build()
	require.NoError(t, err)

	out, err := NewSanitizer(DefaultOptions()).Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"missing", "missing"}, textsOf(t, out, "C"))
}

func TestSanitizer_EmptyTable(t *testing.T) {
	in, err := table.NewBuilder().
		AddNumeric("A", numCells()).
		AddCategorical("C", textCells()).
		Build()
	require.NoError(t, err)

	out, err := NewSanitizer(DefaultOptions()).Apply(in)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows())
}

func TestSanitizer_BoundedColumnAbsentOrCategorical(t *testing.T) {
	in, err := table.NewBuilder().
		AddNumeric("A", numCells(-1)).
		AddCategorical("B", textCells("-1")).
		Build()
	require.NoError(t, err)

	out, err := Sanitizer{BoundedColumns: []string{"B", "Z"}}.Apply(in)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestSanitizer_CustomMissingCategory(t *testing.T) {
	in, err := table.NewBuilder().AddCategorical("C", textCells("a", miss)).Build()
	require.NoError(t, err)

	out, err := Sanitizer{MissingCategory: "unknown"}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "unknown"}, textsOf(t, out, "C"))

	out, err = Sanitizer{}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "missing"}, textsOf(t, out, "C"))
}

func TestSanitizer_ReportsFirstFailingColumn(t *testing.T) {
	in, err := table.NewBuilder().
		AddNumeric("ok", numCells(1)).
		AddNumeric("first", numCellsMissing([]float64{0}, 0)).
		AddNumeric("second", numCellsMissing([]float64{0}, 0)).
		Build()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err = NewSanitizer(DefaultOptions()).Apply(in)
		var de *table.DataError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "first", de.Column)
	}
}
