package core

// pipeline.go sequences a DataSource and the transformation stages.
//
// The flow is strictly linear:
//
//	DataSource -> Sanitizer -> Transformer -> FeatureEngineer
//
// Each stage receives the complete table produced by the previous one and
// returns a new table. The first error aborts the run and no table is
// returned.

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/featureprep/internal/logging"
	"github.com/JonMunkholm/featureprep/internal/table"
)

// DataSource produces the raw table for one pipeline run.
type DataSource interface {
	Load(ctx context.Context) (*table.Table, error)
}

// SourceFunc adapts a function to the DataSource interface.
type SourceFunc func(ctx context.Context) (*table.Table, error)

// Load implements DataSource.
func (f SourceFunc) Load(ctx context.Context) (*table.Table, error) {
	return f(ctx)
}

// Stage is one pure Table -> Table transformation step.
type Stage interface {
	Name() string
	Apply(in *table.Table) (*table.Table, error)
}

// Pipeline runs a source followed by its stages.
type Pipeline struct {
	Source DataSource
	Stages []Stage
}

// NewPipeline builds the standard four-stage pipeline for src.
func NewPipeline(src DataSource, opts Options) *Pipeline {
	return &Pipeline{
		Source: src,
		Stages: []Stage{
			NewSanitizer(opts),
			NewTransformer(opts),
			NewFeatureEngineer(opts),
		},
	}
}

// Run loads the source and applies every stage in order.
// Errors are wrapped with the failing step's name.
func (p *Pipeline) Run(ctx context.Context) (*table.Table, error) {
	logger := logging.FromContext(ctx)
	if runID := RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	if p.Source == nil {
		return nil, fmt.Errorf("load: no data source configured")
	}

	start := time.Now()
	t, err := p.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("load: data source returned no table")
	}
	logger.Debug("source loaded",
		"rows", t.Rows(),
		"columns", t.Width(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	for _, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		start := time.Now()
		next, err := stage.Apply(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
		t = next

		logger.Debug("stage complete",
			"stage", stage.Name(),
			"columns", t.Width(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return t, nil
}
