package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/featureprep/internal/config"
	"github.com/JonMunkholm/featureprep/internal/logging"
	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/google/uuid"
)

// ErrUnknownSource is returned by Run for a key with no registered source.
var ErrUnknownSource = errors.New("unknown source")

// DefaultRunTimeout bounds a run when the config does not set one.
const DefaultRunTimeout = 2 * time.Minute

// ResultSink receives the final table of every successful run.
type ResultSink interface {
	Write(ctx context.Context, runID string, t *table.Table) error
}

// RunResult is the outcome of one successful run.
type RunResult struct {
	RunID    string        `json:"run_id"`
	Source   string        `json:"source"`
	Rows     int           `json:"rows"`
	Columns  int           `json:"columns"`
	Duration time.Duration `json:"-"`
	Millis   int64         `json:"duration_ms"`
	Table    *table.Table  `json:"table"`
}

// Service runs pipelines for registered or ad-hoc sources.
// It is safe for concurrent use.
type Service struct {
	opts    Options
	limiter *RunLimiter
	timeout time.Duration
	sink    ResultSink
}

// NewService creates a Service. The options are validated once here so a
// misconfigured rules file fails at startup.
func NewService(cfg config.PipelineConfig, opts Options) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}

	return &Service{
		opts:    opts,
		limiter: NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		timeout: timeout,
	}, nil
}

// WithSink sets the destination for final tables and returns s.
func (s *Service) WithSink(sink ResultSink) *Service {
	s.sink = sink
	return s
}

// Options returns the options every run uses.
func (s *Service) Options() Options {
	return s.opts
}

// Limiter exposes the run limiter for status reporting and shutdown.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// ListSources returns information about all registered sources.
func (s *Service) ListSources() []SourceInfo {
	defs := AllSources()
	infos := make([]SourceInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Run executes the pipeline on the registered source key.
func (s *Service) Run(ctx context.Context, key string) (*RunResult, error) {
	def, ok := GetSource(key)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, key)
	}
	return s.RunSource(ctx, key, def.New())
}

// RunSource executes the pipeline on src. name identifies the source in
// logs and in the result.
func (s *Service) RunSource(ctx context.Context, name string, src DataSource) (*RunResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	runID := uuid.NewString()
	ctx = ContextWithRunID(ctx, runID)
	logger := logging.WithFields(ctx, "run_id", runID, "source", name)

	start := time.Now()
	logger.Info("run started")

	t, err := NewPipeline(src, s.opts).Run(ctx)
	if err != nil {
		logger.Warn("run failed", "error", err, "code", MapError(err).Code)
		return nil, err
	}

	if s.sink != nil {
		if err := s.sink.Write(ctx, runID, t); err != nil {
			logger.Error("export failed", "error", err)
			return nil, fmt.Errorf("export: %w", err)
		}
	}

	elapsed := time.Since(start)
	logger.Info("run complete",
		"rows", t.Rows(),
		"columns", t.Width(),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &RunResult{
		RunID:    runID,
		Source:   name,
		Rows:     t.Rows(),
		Columns:  t.Width(),
		Duration: elapsed,
		Millis:   elapsed.Milliseconds(),
		Table:    t,
	}, nil
}
