package core

import (
	"context"
	"testing"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

// miss marks a missing categorical cell in textCells and textsOf.
const miss = "<missing>"

// numCells builds numeric cells.
func numCells(vals ...float64) []pgtype.Float8 {
	out := make([]pgtype.Float8, len(vals))
	for i, v := range vals {
		out[i] = table.Num(v)
	}
	return out
}

// numCellsMissing builds numeric cells, leaving the given indexes missing.
func numCellsMissing(vals []float64, missing ...int) []pgtype.Float8 {
	out := numCells(vals...)
	for _, i := range missing {
		out[i] = table.NullFloat()
	}
	return out
}

// textCells builds categorical cells; miss becomes a missing cell.
func textCells(vals ...string) []pgtype.Text {
	out := make([]pgtype.Text, len(vals))
	for i, v := range vals {
		if v == miss {
			out[i] = table.NullText()
			continue
		}
		out[i] = table.Str(v)
	}
	return out
}

// scenario is the five-row reference input.
func scenario(t testing.TB) *table.Table {
	t.Helper()
	tbl, err := table.NewBuilder().
		AddNumeric("A", numCellsMissing([]float64{1, 2, 3, 0, 5}, 3)).
		AddNumeric("B", numCellsMissing([]float64{10, 9, 0, 7, 6}, 2)).
		AddCategorical("C", textCells("x", "y", miss, "y", "x")).
		Build()
	require.NoError(t, err)
	return tbl
}

func staticSource(tbl *table.Table) DataSource {
	return SourceFunc(func(ctx context.Context) (*table.Table, error) {
		return tbl, nil
	})
}

// floatsOf returns the float values of a numeric column; missing cells
// are reported through the second result.
func floatsOf(t *testing.T, tbl *table.Table, name string) ([]float64, []bool) {
	t.Helper()
	c, err := tbl.Lookup(name, table.Numeric)
	require.NoError(t, err)

	vals := make([]float64, c.Len())
	valid := make([]bool, c.Len())
	for i := range vals {
		v := c.Float(i)
		vals[i], valid[i] = v.Float64, v.Valid
	}
	return vals, valid
}

func textsOf(t *testing.T, tbl *table.Table, name string) []string {
	t.Helper()
	c, err := tbl.Lookup(name, table.Categorical)
	require.NoError(t, err)

	out := make([]string, c.Len())
	for i := range out {
		v := c.Text(i)
		if !v.Valid {
			out[i] = miss
			continue
		}
		out[i] = v.String
	}
	return out
}
