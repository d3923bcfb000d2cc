package sources

import (
	"context"

	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

func init() {
	registerReference()
	registerBoundedNegative()
}

// Reference returns the five-row example table:
//
//	A = [1, 2, 3, _, 5]
//	B = [10, 9, _, 7, 6]
//	C = ["x", "y", _, "y", "x"]
func Reference() *table.Table {
	m := table.NullFloat()
	t, err := table.NewBuilder().
		AddNumeric("A", []pgtype.Float8{table.Num(1), table.Num(2), table.Num(3), m, table.Num(5)}).
		AddNumeric("B", []pgtype.Float8{table.Num(10), table.Num(9), m, table.Num(7), table.Num(6)}).
		AddCategorical("C", []pgtype.Text{table.Str("x"), table.Str("y"), table.NullText(), table.Str("y"), table.Str("x")}).
		Build()
	if err != nil {
		panic(err)
	}
	return t
}

// BoundedNegative returns a table whose B column has a negative mean, so
// the sanitizer clamps both observed and imputed values.
func BoundedNegative() *table.Table {
	t, err := table.NewBuilder().
		AddNumeric("A", []pgtype.Float8{table.Num(4), table.Num(1), table.Num(2), table.Num(3)}).
		AddNumeric("B", []pgtype.Float8{table.Num(-4), table.Num(-2), table.NullFloat(), table.Num(1)}).
		AddCategorical("C", []pgtype.Text{table.Str("x"), table.NullText(), table.Str("z"), table.Str("x")}).
		Build()
	if err != nil {
		panic(err)
	}
	return t
}

func staticSource(build func() *table.Table) func() core.DataSource {
	return func() core.DataSource {
		return core.SourceFunc(func(ctx context.Context) (*table.Table, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return build(), nil
		})
	}
}

func registerReference() {
	core.RegisterSource(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:         "reference",
			Group:       "builtin",
			Label:       "Reference",
			Description: "Five rows with one missing cell in each of A, B and C",
		},
		New: staticSource(Reference),
	})
}

func registerBoundedNegative() {
	core.RegisterSource(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:         "bounded_negative",
			Group:       "builtin",
			Label:       "Bounded negative",
			Description: "B has a negative mean, so imputed and observed values are clamped to zero",
		},
		New: staticSource(BoundedNegative),
	})
}
