package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Rules overrides the stage configuration from a TOML file.
//
//	epsilon = 0.01
//	bounded_columns = ["B", "price"]
//	missing_category = "unknown"
//
//	[[derive]]
//	name = "A_squared"
//	source = "A"
//	op = "square"
//
//	[[ratio]]
//	name = "AB_ratio"
//	numerator = "A"
//	denominator = "B"
//
//	[[indicator]]
//	name = "is_x"
//	source = "C"
//	equals = "x"
//
//	[[column]]
//	name = "C"
//	kind = "categorical"
//
// Column entries fix the kind of CSV input columns instead of inferring it.
// A list that is present replaces the default list entirely.
type Rules struct {
	Epsilon         *float64 `toml:"epsilon"`
	BoundedColumns  []string `toml:"bounded_columns"`
	MissingCategory string   `toml:"missing_category"`

	Derive    []DeriveRule    `toml:"derive"`
	Ratio     []RatioRule     `toml:"ratio"`
	Indicator []IndicatorRule `toml:"indicator"`
	Column    []ColumnRule    `toml:"column"`
}

// DeriveRule is one Transformer column.
type DeriveRule struct {
	Name    string  `toml:"name"`
	Source  string  `toml:"source"`
	Op      string  `toml:"op"`
	Operand float64 `toml:"operand"`
}

// RatioRule is one FeatureEngineer ratio.
type RatioRule struct {
	Name        string `toml:"name"`
	Numerator   string `toml:"numerator"`
	Denominator string `toml:"denominator"`
}

// IndicatorRule is one FeatureEngineer indicator.
type IndicatorRule struct {
	Name   string `toml:"name"`
	Source string `toml:"source"`
	Equals string `toml:"equals"`
}

// ColumnRule declares the kind ("numeric" or "categorical") of an input column.
type ColumnRule struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
}

// LoadRules reads a rules file. An empty path returns nil rules.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	defer f.Close()

	r, err := DecodeRules(f)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

// DecodeRules reads rules from r. Unknown keys are an error.
func DecodeRules(r io.Reader) (*Rules, error) {
	var rules Rules
	md, err := toml.NewDecoder(r).Decode(&rules)
	if err != nil {
		return nil, err
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return &rules, nil
}

// checkUndecoded rejects keys that match no Rules field.
func checkUndecoded(md toml.MetaData) error {
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("unknown keys: %v", keys)
	}
	return nil
}
