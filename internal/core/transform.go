package core

import (
	"fmt"
	"math"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

// Transformer appends elementwise numeric columns. It trusts that its input
// is already sanitized: a missing input cell yields a missing output cell.
type Transformer struct {
	Derivations []Derivation
}

// NewTransformer creates a Transformer from options.
func NewTransformer(opts Options) Transformer {
	return Transformer{Derivations: opts.Derivations}
}

// Name implements Stage.
func (t Transformer) Name() string { return "transform" }

// Apply implements Stage. Derived columns are appended in declaration order.
func (t Transformer) Apply(in *table.Table) (*table.Table, error) {
	derived := make([][]pgtype.Float8, len(t.Derivations))
	err := forEachColumn(len(t.Derivations), func(i int) error {
		d := t.Derivations[i]
		src, err := in.Lookup(d.Source, table.Numeric)
		if err != nil {
			return err
		}
		derived[i], err = mapFloats(src, d.Name, d.apply)
		return err
	})
	if err != nil {
		return nil, err
	}

	b := in.Extend()
	for i, d := range t.Derivations {
		b.AddNumeric(d.Name, derived[i])
	}
	return b.Build()
}

func (d Derivation) apply(v float64) float64 {
	switch d.Op {
	case OpSquare:
		return v * v
	case OpAdd:
		return v + d.Operand
	case OpLog1p:
		return math.Log1p(v)
	default:
		return math.NaN()
	}
}

// mapFloats applies fn to every valid cell of a numeric column. A result
// that is infinite or NaN is a DataError on the derived column name.
func mapFloats(c *table.Column, name string, fn func(float64) float64) ([]pgtype.Float8, error) {
	out := make([]pgtype.Float8, c.Len())
	for i := range out {
		v := c.Float(i)
		if !v.Valid {
			continue
		}
		r := fn(v.Float64)
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return nil, &table.DataError{
				Column: name,
				Reason: table.ReasonNonFinite,
				Detail: fmt.Sprintf("row %d: %s of %v", i, c.Name(), v.Float64),
			}
		}
		out[i] = table.Num(r)
	}
	return out, nil
}
