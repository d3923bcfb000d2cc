package core

// sanitize.go removes missing markers and enforces non-negative bounded columns.
//
// Each column is handled independently:
//   - numeric: missing cells become the mean of the column's original valid cells
//   - categorical: missing cells become the missing category ("missing")
//
// Bounded columns are clamped at zero after imputation, so a negative imputed
// mean is clamped too. A column with nothing missing and nothing to clamp is
// passed through unchanged, which makes a second pass an exact no-op.

import (
	"log/slog"
	"math"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

// Sanitizer is the first transformation stage.
type Sanitizer struct {
	BoundedColumns  []string
	MissingCategory string
}

// NewSanitizer creates a Sanitizer from options.
func NewSanitizer(opts Options) Sanitizer {
	return Sanitizer{
		BoundedColumns:  opts.BoundedColumns,
		MissingCategory: opts.MissingCategory,
	}
}

// Name implements Stage.
func (s Sanitizer) Name() string { return "sanitize" }

// Apply implements Stage.
func (s Sanitizer) Apply(in *table.Table) (*table.Table, error) {
	bounded := make(map[string]bool, len(s.BoundedColumns))
	for _, name := range s.BoundedColumns {
		c, ok := in.Column(name)
		if !ok {
			slog.Debug("bounded column absent, clamp skipped", "column", name)
			continue
		}
		if c.Kind() != table.Numeric {
			slog.Debug("bounded column is not numeric, clamp skipped", "column", name, "kind", c.Kind().String())
			continue
		}
		bounded[name] = true
	}

	cols := in.Columns()
	out := make([]*table.Column, len(cols))
	err := forEachColumn(len(cols), func(i int) error {
		c, err := s.sanitizeColumn(cols[i], bounded[cols[i].Name()])
		if err != nil {
			return err
		}
		out[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	b := table.NewBuilder()
	for _, c := range out {
		b.Add(c)
	}
	return b.Build()
}

func (s Sanitizer) sanitizeColumn(c *table.Column, bounded bool) (*table.Column, error) {
	if c.Kind() == table.Categorical {
		return s.imputeCategorical(c), nil
	}

	missing := c.MissingCount()
	if missing == 0 && !bounded {
		return c, nil
	}

	cells := c.Floats()
	if missing > 0 {
		mean, ok := meanOfValid(cells)
		if !ok {
			return nil, &table.DataError{Column: c.Name(), Reason: table.ReasonNoValues}
		}
		for i := range cells {
			if !cells[i].Valid {
				cells[i] = table.Num(mean)
			}
		}
	}

	if bounded {
		clampNonNegative(cells)
	}
	return table.NewNumeric(c.Name(), cells), nil
}

func (s Sanitizer) imputeCategorical(c *table.Column) *table.Column {
	if c.MissingCount() == 0 {
		return c
	}
	fill := s.MissingCategory
	if fill == "" {
		fill = DefaultMissingCategory
	}
	cells := c.Texts()
	for i := range cells {
		if !cells[i].Valid {
			cells[i] = table.Str(fill)
		}
	}
	return table.NewCategorical(c.Name(), cells)
}

// meanOfValid returns the arithmetic mean of the valid cells.
// Returns false if there are none.
func meanOfValid(cells []pgtype.Float8) (float64, bool) {
	var sum float64
	n := 0
	for _, c := range cells {
		if c.Valid {
			sum += c.Float64
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	if !math.IsInf(sum, 0) {
		return sum / float64(n), true
	}

	// The plain sum overflowed; every term divided by n cannot.
	var mean float64
	for _, c := range cells {
		if c.Valid {
			mean += c.Float64 / float64(n)
		}
	}
	return mean, true
}

// clampNonNegative sets every valid cell below zero to exactly zero.
func clampNonNegative(cells []pgtype.Float8) {
	for i := range cells {
		if cells[i].Valid && cells[i].Float64 < 0 {
			cells[i] = table.Num(0)
		}
	}
}
