package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/config"
)

// DefaultEpsilon guards the ratio denominator so it is never exactly zero.
const DefaultEpsilon = 0.001

// DefaultMissingCategory replaces missing categorical cells.
const DefaultMissingCategory = "missing"

// Op is an elementwise operation applied by the Transformer.
type Op string

const (
	OpSquare Op = "square" // x*x
	OpAdd    Op = "add"    // x + Operand
	OpLog1p  Op = "log1p"  // log(1+x)
)

// Derivation describes one column appended by the Transformer.
type Derivation struct {
	Name    string  // Output column
	Source  string  // Numeric input column
	Op      Op      // Operation
	Operand float64 // Used by OpAdd
}

// Ratio describes Name[i] = Numerator[i] / (Denominator[i] + epsilon).
type Ratio struct {
	Name        string
	Numerator   string
	Denominator string
}

// Indicator describes Name[i] = 1 if Source[i] == Equals, else 0.
type Indicator struct {
	Name   string
	Source string
	Equals string
}

// Options configures the Sanitizer, Transformer and FeatureEngineer.
type Options struct {
	Epsilon         float64  // Ratio denominator guard, must be > 0
	BoundedColumns  []string // Numeric columns clamped at zero after imputation
	MissingCategory string   // Replacement for missing categorical cells

	Derivations []Derivation
	Ratios      []Ratio
	Indicators  []Indicator
}

// DefaultOptions returns the reference configuration: clamp B, derive
// A_squared and B_plus_one, then AB_ratio and is_x.
func DefaultOptions() Options {
	return Options{
		Epsilon:         DefaultEpsilon,
		BoundedColumns:  []string{"B"},
		MissingCategory: DefaultMissingCategory,
		Derivations: []Derivation{
			{Name: "A_squared", Source: "A", Op: OpSquare},
			{Name: "B_plus_one", Source: "B", Op: OpAdd, Operand: 1},
		},
		Ratios: []Ratio{
			{Name: "AB_ratio", Numerator: "A", Denominator: "B"},
		},
		Indicators: []Indicator{
			{Name: "is_x", Source: "C", Equals: "x"},
		},
	}
}

// Validate checks that the options can drive a pipeline.
// Returns an error describing all problems.
func (o Options) Validate() error {
	var errs []string

	if !(o.Epsilon > 0) || math.IsInf(o.Epsilon, 0) {
		errs = append(errs, fmt.Sprintf("epsilon (%v) must be a positive finite number", o.Epsilon))
	}
	for _, name := range o.BoundedColumns {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "bounded column name must not be empty")
		}
	}
	for i, d := range o.Derivations {
		if d.Name == "" || d.Source == "" {
			errs = append(errs, fmt.Sprintf("derivation %d: name and source are required", i))
		}
		switch d.Op {
		case OpSquare, OpAdd, OpLog1p:
		default:
			errs = append(errs, fmt.Sprintf("derivation %q: unknown op %q", d.Name, d.Op))
		}
	}
	for i, r := range o.Ratios {
		if r.Name == "" || r.Numerator == "" || r.Denominator == "" {
			errs = append(errs, fmt.Sprintf("ratio %d: name, numerator and denominator are required", i))
		}
	}
	for i, ind := range o.Indicators {
		if ind.Name == "" || ind.Source == "" {
			errs = append(errs, fmt.Sprintf("indicator %d: name and source are required", i))
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid pipeline options:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// OptionsFromConfig builds Options from the environment config, then applies
// any rules file on top. Rule lists replace the defaults when non-empty.
func OptionsFromConfig(cfg config.PipelineConfig, rules *config.Rules) Options {
	opts := DefaultOptions()
	opts.Epsilon = cfg.Epsilon
	if len(cfg.BoundedColumns) > 0 {
		opts.BoundedColumns = cfg.BoundedColumns
	}
	if cfg.MissingCategory != "" {
		opts.MissingCategory = cfg.MissingCategory
	}

	if rules == nil {
		return opts
	}

	if rules.Epsilon != nil {
		opts.Epsilon = *rules.Epsilon
	}
	if rules.BoundedColumns != nil {
		opts.BoundedColumns = rules.BoundedColumns
	}
	if rules.MissingCategory != "" {
		opts.MissingCategory = rules.MissingCategory
	}
	if len(rules.Derive) > 0 {
		opts.Derivations = make([]Derivation, len(rules.Derive))
		for i, d := range rules.Derive {
			opts.Derivations[i] = Derivation{Name: d.Name, Source: d.Source, Op: Op(strings.ToLower(d.Op)), Operand: d.Operand}
		}
	}
	if len(rules.Ratio) > 0 {
		opts.Ratios = make([]Ratio, len(rules.Ratio))
		for i, r := range rules.Ratio {
			opts.Ratios[i] = Ratio{Name: r.Name, Numerator: r.Numerator, Denominator: r.Denominator}
		}
	}
	if len(rules.Indicator) > 0 {
		opts.Indicators = make([]Indicator, len(rules.Indicator))
		for i, ind := range rules.Indicator {
			opts.Indicators[i] = Indicator{Name: ind.Name, Source: ind.Source, Equals: ind.Equals}
		}
	}
	return opts
}
