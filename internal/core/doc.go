// Package core provides the feature preparation pipeline.
//
// This package holds all domain logic independent of any transport. It is
// used by the HTTP server, the CLI and tests without modification.
//
// # Architecture
//
// A run loads a raw table from a [DataSource] and passes it through three
// pure stages in a fixed order:
//
//	DataSource -> Sanitizer -> Transformer -> FeatureEngineer
//
//   - [Sanitizer]: fills missing numeric cells with the column mean and
//     missing categorical cells with "missing", then clamps bounded columns
//     at zero.
//   - [Transformer]: appends elementwise columns such as A_squared.
//   - [FeatureEngineer]: appends guarded ratios and 0/1 indicators.
//
// Every stage returns a new table and leaves its input untouched. The first
// error aborts the run; no partial table is returned.
//
// # Options
//
// Stage behavior is driven by [Options]. [DefaultOptions] reproduces the
// reference configuration; [OptionsFromConfig] applies environment settings
// and an optional TOML rules file on top.
//
// # Sources
//
// Sources are registered by key at init time using [RegisterSource]:
//
//	core.RegisterSource(core.SourceDefinition{
//	    Info: core.SourceInfo{Key: "reference", Group: "builtin", Label: "Reference"},
//	    New:  func() core.DataSource { return src },
//	})
//
// # Service
//
// [Service] wraps a run with a concurrency limit, a timeout, a run ID and an
// optional [ResultSink].
//
// # Error Handling
//
// Stage errors are table.SchemaError or table.DataError wrapped with the
// stage name. [MapError] maps them to user-facing messages with codes:
//
//   - SCH001-SCH004: schema errors (missing, mismatched, duplicate or mistyped columns)
//   - DAT001-DAT002: data errors (nothing to average, non-finite result)
//   - SRC001-SRC004: source errors (unknown source, bad or oversized CSV)
//   - RUN001-RUN003: run errors (busy, cancelled, timed out)
package core
