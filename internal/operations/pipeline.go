package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shiprisk/internal/config"
	"shiprisk/internal/errors"
	"shiprisk/internal/infrastructure"
	"shiprisk/internal/store"
	"shiprisk/pkg/contracts/domain"
)

// Pipeline wires the steps to configuration, storage and telemetry
type Pipeline struct {
	cfg     *config.Config
	store   store.Store
	metrics *infrastructure.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithMetrics records stage metrics on m
func WithMetrics(m *infrastructure.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer creates stage spans on t
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithLogger sets the pipeline logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline over cfg and st
func NewPipeline(cfg *config.Config, st store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		store:  st,
		tracer: otel.Tracer(infrastructure.TracerName),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = infrastructure.NewMetrics()
	}
	p.logger = infrastructure.WithComponent(p.logger, "pipeline")
	return p
}

// Metrics returns the collectors the pipeline records into
func (p *Pipeline) Metrics() *infrastructure.Metrics {
	return p.metrics
}

// Prepare ingests, cleans, engineers and splits the input and persists the
// dataset and partitions.
func (p *Pipeline) Prepare(ctx context.Context) (*RunState, error) {
	return p.execute(ctx, &prepareStep{NewBaseStage(StagePrepare, "Prepare dataset"), p})
}

// Fit encodes, normalises and fits the model on the persisted training rows.
func (p *Pipeline) Fit(ctx context.Context) (*RunState, error) {
	return p.execute(ctx, &fitStep{NewBaseStage(StageFit, "Fit model"), p})
}

// Evaluate scores the persisted model and writes the report.
func (p *Pipeline) Evaluate(ctx context.Context) (*domain.Report, error) {
	state, err := p.execute(ctx, &evaluateStep{NewBaseStage(StageEvaluate, "Evaluate model"), p})
	if err != nil {
		return nil, err
	}
	return state.Report, nil
}

// Run executes every step in one process.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	state, err := p.execute(ctx,
		&prepareStep{NewBaseStage(StagePrepare, "Prepare dataset"), p},
		&fitStep{NewBaseStage(StageFit, "Fit model"), p},
		&evaluateStep{NewBaseStage(StageEvaluate, "Evaluate model"), p},
	)
	if err != nil {
		return nil, err
	}
	return state.Report, nil
}

// LatestReport loads the last persisted report
func (p *Pipeline) LatestReport(ctx context.Context) (*domain.Report, error) {
	var r domain.Report
	if err := p.store.Load(ctx, store.KeyReport, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// execute runs steps in order on a fresh state, stopping at the first error
func (p *Pipeline) execute(ctx context.Context, steps ...Step) (*RunState, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	state := NewRunState(infrastructure.GetRunID(ctx))

	ctx, span := infrastructure.StartSpan(ctx, p.tracer, "pipeline.run",
		attribute.Int("pipeline.steps", len(steps)))

	var err error
	for _, step := range steps {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = p.runStep(ctx, step, state); err != nil {
			break
		}
	}
	state.finish(err)
	infrastructure.EndSpan(span, err)
	return state, err
}

func (p *Pipeline) runStep(ctx context.Context, step Step, state *RunState) error {
	ss := state.addStep(step.ID(), step.Name())
	ss.Start()
	p.logger.InfoContext(ctx, "Step started", slog.String("stage", step.ID()))

	stepCtx, span := infrastructure.StartSpan(ctx, p.tracer, "stage."+step.ID(),
		attribute.String("stage", step.ID()))
	err := step.Execute(stepCtx, state)
	infrastructure.EndSpan(span, err)

	if err != nil {
		ss.Fail(err)
		p.metrics.ObserveStage(step.ID(), string(StepStatusFailed), ss.Duration())
		infrastructure.WithError(p.logger, err).ErrorContext(ctx, "Step failed",
			slog.String("stage", step.ID()),
			slog.Duration("duration", ss.Duration()))
		return fmt.Errorf("%s: %w", step.ID(), err)
	}

	ss.Complete()
	p.metrics.ObserveStage(step.ID(), string(StepStatusCompleted), ss.Duration())
	p.logger.InfoContext(ctx, "Step completed",
		slog.String("stage", step.ID()),
		slog.Duration("duration", ss.Duration()))
	return nil
}

// recordWarnings logs and counts warnings, returning their report form
func (p *Pipeline) recordWarnings(ctx context.Context, stage string, ws []errors.Warning) []domain.WarningSummary {
	for _, w := range ws {
		p.logger.WarnContext(ctx, w.String(), slog.String("stage", stage), slog.Any("warning", w))
		p.metrics.Warnings.WithLabelValues(string(w.Kind)).Inc()
	}
	return summarizeWarnings(stage, ws)
}

// loadPrepared returns the dataset and partitions from the state or the store
func (p *Pipeline) loadPrepared(ctx context.Context, state *RunState) (*Dataset, *Partitions, error) {
	if state.Dataset == nil {
		var ds Dataset
		if err := p.store.Load(ctx, store.KeyCleanDataset, &ds); err != nil {
			return nil, nil, fmt.Errorf("load dataset (run prepare first): %w", err)
		}
		state.Dataset = &ds
	}
	if state.Partitions == nil {
		var parts Partitions
		if err := p.store.Load(ctx, store.KeyPartitions, &parts); err != nil {
			return nil, nil, fmt.Errorf("load partitions (run prepare first): %w", err)
		}
		state.Partitions = &parts
	}
	return state.Dataset, state.Partitions, nil
}

// loadFitted returns the fitted model from the state or the store
func (p *Pipeline) loadFitted(ctx context.Context, state *RunState) (*FittedModel, error) {
	if state.Fitted == nil {
		var fm FittedModel
		if err := p.store.Load(ctx, store.KeyModel, &fm); err != nil {
			return nil, fmt.Errorf("load model (run fit first): %w", err)
		}
		if fm.Model == nil || fm.Encoder == nil || fm.Normalizer == nil {
			return nil, errors.NewStorageError("stored model is incomplete", nil)
		}
		if err := fm.Model.Validate(); err != nil {
			return nil, fmt.Errorf("stored model: %w", err)
		}
		state.Fitted = &fm
	}
	return state.Fitted, nil
}
