package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"shiprisk/internal/config"
	"shiprisk/internal/exporter"
	"shiprisk/internal/infrastructure"
	"shiprisk/internal/operations"
	"shiprisk/internal/store"
	"shiprisk/pkg/contracts/domain"
)

// Report file names inside the reports directory
const (
	coefficientsFile = "coefficients.csv"
	workbookFile     = "report.xlsx"
)

// app holds the process-wide collaborators of one command
type app struct {
	cfg      *config.Config
	paths    *config.Paths
	logger   *slog.Logger
	tracing  *infrastructure.Tracing
	metrics  *infrastructure.Metrics
	store    store.Store
	pipeline *operations.Pipeline
}

// overrides are command-line values that win over file and environment
type overrides struct {
	configFile string
	input      string
	sheet      string
	artifacts  string
	reports    string
	storeKind  string
	labelRule  string
	fitScope   string
	seed       int64
	seedSet    bool
}

func (o overrides) apply(cfg *config.Config) {
	if o.input != "" {
		cfg.Paths.Input = o.input
	}
	if o.sheet != "" {
		cfg.Paths.Sheet = o.sheet
	}
	if o.artifacts != "" {
		cfg.Paths.ArtifactsDir = o.artifacts
		cfg.Store.BadgerPath = filepath.Join(o.artifacts, "badger")
	}
	if o.reports != "" {
		cfg.Paths.ReportsDir = o.reports
	}
	if o.storeKind != "" {
		cfg.Store.Backend = o.storeKind
	}
	if o.labelRule != "" {
		cfg.Evaluation.LabelRule = o.labelRule
	}
	if o.fitScope != "" {
		cfg.Pipeline.FitScope = o.fitScope
	}
	if o.seedSet {
		cfg.Pipeline.Seed = o.seed
	}
}

// newApp loads configuration and opens logging, tracing and the store
func newApp(o overrides, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	paths.LogPathResolution(logger)
	if name := infrastructure.LogFileName(); name != "" {
		logger.Debug("Logging to file", slog.String("path", name))
	}

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry, logger)
	if err != nil {
		infrastructure.CloseLogFile()
		return nil, err
	}

	st, err := store.Open(cfg.Store, paths.ArtifactsDir, logger)
	if err != nil {
		tracing.Shutdown(context.Background())
		infrastructure.CloseLogFile()
		return nil, err
	}

	metrics := infrastructure.NewMetrics()
	a := &app{
		cfg:     cfg,
		paths:   paths,
		logger:  logger,
		tracing: tracing,
		metrics: metrics,
		store:   st,
	}
	a.pipeline = operations.NewPipeline(cfg, st,
		operations.WithLogger(logger),
		operations.WithMetrics(metrics),
		operations.WithTracer(tracing.Tracer))
	return a, nil
}

// close flushes telemetry and releases the store
func (a *app) close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if path := a.cfg.Telemetry.MetricsTextfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			keep(fmt.Errorf("write metrics textfile: %w", err))
		} else {
			a.logger.Debug("Metrics written", slog.String("path", path))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	keep(a.tracing.Shutdown(ctx))
	keep(a.store.Close())
	keep(infrastructure.CloseLogFile())
	return firstErr
}

// publish writes the report files and, unless quiet, the console report
func (a *app) publish(r *domain.Report, stdout io.Writer, quiet bool) error {
	csvWriter := exporter.NewCSVWriter(a.paths)
	if err := csvWriter.WriteCoefficients(coefficientsFile, r.Model); err != nil {
		return fmt.Errorf("export coefficients: %w", err)
	}
	if err := exporter.WriteWorkbook(a.paths.ReportPath(workbookFile), r); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	a.logger.Info("Reports written",
		slog.String("coefficients", a.paths.ReportPath(coefficientsFile)),
		slog.String("workbook", a.paths.ReportPath(workbookFile)))

	if quiet {
		return nil
	}
	return exporter.WriteConsole(stdout, r)
}
