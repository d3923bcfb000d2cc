package core

import (
	"fmt"
	"math"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

// FeatureEngineer appends ratio features and binary indicators after the
// Transformer's columns. Ratios come first, then indicators.
type FeatureEngineer struct {
	Epsilon    float64
	Ratios     []Ratio
	Indicators []Indicator
}

// NewFeatureEngineer creates a FeatureEngineer from options.
func NewFeatureEngineer(opts Options) FeatureEngineer {
	return FeatureEngineer{
		Epsilon:    opts.Epsilon,
		Ratios:     opts.Ratios,
		Indicators: opts.Indicators,
	}
}

// Name implements Stage.
func (f FeatureEngineer) Name() string { return "features" }

// Apply implements Stage.
func (f FeatureEngineer) Apply(in *table.Table) (*table.Table, error) {
	n := len(f.Ratios) + len(f.Indicators)
	names := make([]string, n)
	derived := make([][]pgtype.Float8, n)

	err := forEachColumn(n, func(i int) error {
		var err error
		if i < len(f.Ratios) {
			r := f.Ratios[i]
			names[i] = r.Name
			derived[i], err = f.ratio(in, r)
		} else {
			ind := f.Indicators[i-len(f.Ratios)]
			names[i] = ind.Name
			derived[i], err = indicator(in, ind)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	b := in.Extend()
	for i := range derived {
		b.AddNumeric(names[i], derived[i])
	}
	return b.Build()
}

// ratio computes num[i] / (den[i] + epsilon). A missing operand yields a
// missing cell; a non-finite result is a DataError.
func (f FeatureEngineer) ratio(in *table.Table, r Ratio) ([]pgtype.Float8, error) {
	num, err := in.Lookup(r.Numerator, table.Numeric)
	if err != nil {
		return nil, err
	}
	den, err := in.Lookup(r.Denominator, table.Numeric)
	if err != nil {
		return nil, err
	}

	out := make([]pgtype.Float8, in.Rows())
	for i := range out {
		a, b := num.Float(i), den.Float(i)
		if !a.Valid || !b.Valid {
			continue
		}
		v := a.Float64 / (b.Float64 + f.Epsilon)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, &table.DataError{
				Column: r.Name,
				Reason: table.ReasonNonFinite,
				Detail: fmt.Sprintf("row %d: %v / (%v + %v)", i, a.Float64, b.Float64, f.Epsilon),
			}
		}
		out[i] = table.Num(v)
	}
	return out, nil
}

// indicatorFunc returns the mapping applied to every cell of an indicator's
// source column: 1 for an exact match, 0 for anything else including a
// missing cell.
func indicatorFunc(equals string) func(pgtype.Text) pgtype.Float8 {
	return func(v pgtype.Text) pgtype.Float8 {
		if v.Valid && v.String == equals {
			return table.Num(1)
		}
		return table.Num(0)
	}
}

func indicator(in *table.Table, ind Indicator) ([]pgtype.Float8, error) {
	src, err := in.Lookup(ind.Source, table.Categorical)
	if err != nil {
		return nil, err
	}
	fn := indicatorFunc(ind.Equals)
	out := make([]pgtype.Float8, src.Len())
	for i := range out {
		out[i] = fn(src.Text(i))
	}
	return out, nil
}
