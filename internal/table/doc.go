// Package table provides the columnar value type that flows through every
// pipeline stage.
//
// A [Table] is an ordered list of named, equal-length columns. Each [Column]
// carries a fixed [Kind] decided when it is constructed:
//
//   - Numeric columns hold pgtype.Float8 cells
//   - Categorical columns hold pgtype.Text cells
//
// A cell with Valid == false is the missing marker. Sources produce missing
// cells; the sanitizer removes them; later stages never create them unless
// their own input already carried one.
//
// # Construction
//
// Tables are assembled with a [Builder], which owns the column slices until
// [Builder.Build] validates and freezes them:
//
//	t, err := table.NewBuilder().
//	    AddNumeric("A", []pgtype.Float8{table.Num(1), table.NullFloat()}).
//	    AddCategorical("C", []pgtype.Text{table.Str("x"), table.NullText()}).
//	    Build()
//
// A built table is never mutated. [Table.Extend] starts a new builder seeded
// with the existing columns, so derived tables share untouched columns with
// their parent and can only grow by appending.
//
// # Errors
//
// Structural problems are reported as [*SchemaError] (matches [ErrSchema]) and
// value problems as [*DataError] (matches [ErrData]).
package table
