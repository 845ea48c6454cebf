package operations

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"shiprisk/internal/config"
	"shiprisk/internal/dataprocessing"
	"shiprisk/internal/errors"
	"shiprisk/internal/files"
	"shiprisk/internal/finance"
	"shiprisk/internal/modeling"
	"shiprisk/internal/store"
	"shiprisk/pkg/contracts/domain"
)

// Projection horizons
const (
	HorizonMonthly = "monthly"
	HorizonAnnual  = "annual"
)

// prepareStep ingests the input file and splits it
type prepareStep struct {
	BaseStage
	p *Pipeline
}

func (s *prepareStep) Execute(ctx context.Context, state *RunState) error {
	cfg := s.p.cfg
	logger := s.p.logger
	input, err := files.NewDiscovery("").ResolveInput(cfg.Paths.Input)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Reading shipments", slog.String("input", input))

	table, err := dataprocessing.ParseFile(input, cfg.Paths.Sheet)
	if err != nil {
		return err
	}
	s.p.metrics.Rows.WithLabelValues("ingested").Set(float64(table.NumRows()))

	logger.DebugContext(ctx, "Parsed input",
		slog.String("sheet", table.Sheet),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))
	if len(table.Overflow) > 0 {
		logger.DebugContext(ctx, "Cells beyond the header were dropped",
			slog.Any("lines", table.Overflow))
	}

	cleaned, report := dataprocessing.Clean(table)
	logger.InfoContext(ctx, "Cleaned table",
		slog.Int("rows_before", report.RowsBefore),
		slog.Int("rows_after", report.RowsAfter),
		slog.Int("columns", report.Columns),
		slog.Int("missing_cells_before", report.MissingCellsBefore),
		slog.Int("missing_cells_after", report.MissingCellsAfter))
	s.p.metrics.Rows.WithLabelValues("cleaned").Set(float64(cleaned.NumRows()))

	shipments, err := dataprocessing.ToShipments(cleaned)
	if err != nil {
		return err
	}
	rows, err := dataprocessing.Engineer(shipments, dataprocessing.FeatureOptions{
		GeopoliticalRiskThreshold: cfg.Pipeline.GeopoliticalRiskThreshold,
		WeatherSeverityThreshold:  cfg.Pipeline.WeatherSeverityThreshold,
	})
	if err != nil {
		return err
	}

	if summary, err := dataprocessing.DescribeTable(cleaned); err != nil {
		logger.WarnContext(ctx, "Column summary unavailable", slog.String("error", err.Error()))
	} else {
		logger.DebugContext(ctx, "Column summary", slog.String("table", summary))
	}

	ds := &Dataset{
		RunID:      state.ID,
		InputFile:  input,
		CreatedAt:  s.p.now().UTC(),
		Cleaning:   report.Summary(),
		Statistics: dataprocessing.Describe(rows),
		Rows:       rows,
	}

	labels := ds.Labels()
	split, err := dataprocessing.Split(labels, dataprocessing.SplitOptions{
		TrainFraction:          cfg.Pipeline.TrainFraction,
		ValFractionOfRemainder: cfg.Pipeline.ValFractionOfRemainder,
		Seed:                   cfg.Pipeline.Seed,
	})
	if err != nil {
		return err
	}
	parts := &Partitions{RunID: state.ID, Seed: cfg.Pipeline.Seed, Sets: *split}
	for _, set := range split.Sets() {
		b := dataprocessing.Balance(set.Name, dataprocessing.Select(labels, set.Indices))
		parts.Balance = append(parts.Balance, b)
		s.p.metrics.Rows.WithLabelValues(set.Name).Set(float64(b.Rows))
		logger.InfoContext(ctx, "Partition created",
			slog.String("partition", b.Name),
			slog.Int("rows", b.Rows),
			slog.Int("on_time", b.OnTime),
			slog.Int("late", b.Late))
	}

	state.Dataset, state.Partitions = ds, parts
	if err := s.p.store.Save(ctx, store.KeyCleanDataset, ds); err != nil {
		return err
	}
	return s.p.store.Save(ctx, store.KeyPartitions, parts)
}

// fitStep learns the encoder, normalizer and model
type fitStep struct {
	BaseStage
	p *Pipeline
}

func (s *fitStep) Execute(ctx context.Context, state *RunState) error {
	cfg := s.p.cfg
	ds, parts, err := s.p.loadPrepared(ctx, state)
	if err != nil {
		return err
	}

	trainRows := dataprocessing.Select(ds.Rows, parts.Sets.Train)
	if len(trainRows) == 0 {
		return errors.NewEmptyPartitionError("training partition is empty")
	}

	// The transforms learn from the training rows unless the legacy
	// whole-dataset scope is configured.
	fitRows := trainRows
	if cfg.Pipeline.FitScope == config.FitScopeAll {
		fitRows = ds.Rows
	}

	exclude := cfg.Pipeline.ExcludeFeatures
	enc := dataprocessing.FitEncoder(fitRows, dataprocessing.EncoderOptions{
		DropReference: cfg.Pipeline.DropReference,
	})
	fitFrame, err := dataprocessing.BuildFrame(fitRows, enc, exclude)
	if err != nil {
		return err
	}
	norm, err := dataprocessing.FitNormalizer(fitFrame, numericFeatures(exclude))
	if err != nil {
		return err
	}

	trainFrame := fitFrame
	if cfg.Pipeline.FitScope == config.FitScopeAll {
		if trainFrame, err = dataprocessing.BuildFrame(trainRows, enc, exclude); err != nil {
			return err
		}
	}
	scaled, scaleWarnings, err := norm.Transform(trainFrame)
	if err != nil {
		return err
	}

	model, err := modeling.Fit(ctx, scaled.Data, scaled.Labels, scaled.Columns, modeling.FitOptions{
		MaxIterations: cfg.Model.MaxIterations,
		Tolerance:     cfg.Model.Tolerance,
	})
	if err != nil {
		return err
	}
	s.p.metrics.SolverIterations.Set(float64(model.Iterations))
	s.p.metrics.LogLikelihood.Set(model.LogLikelihood)
	s.p.logger.InfoContext(ctx, "Model fitted",
		slog.String("fit_scope", cfg.Pipeline.FitScope),
		slog.Int("features", len(model.Features)),
		slog.Int("training_rows", model.TrainingRows),
		slog.Int("iterations", model.Iterations),
		slog.Bool("converged", model.Converged),
		slog.Float64("log_likelihood", model.LogLikelihood))

	warnings := append(scaleWarnings, model.Warnings...)
	fm := &FittedModel{
		RunID:      state.ID,
		FitScope:   cfg.Pipeline.FitScope,
		Exclude:    slices.Clone(exclude),
		Encoder:    enc,
		Normalizer: norm,
		Model:      model,
		Warnings:   s.p.recordWarnings(ctx, StageFit, warnings),
	}
	state.Fitted = fm
	return s.p.store.Save(ctx, store.KeyModel, fm)
}

// numericFeatures lists the numeric columns left after exclusions
func numericFeatures(exclude []string) []string {
	out := make([]string, 0, len(domain.NumericFeatureColumns))
	for _, c := range domain.NumericFeatureColumns {
		if !slices.Contains(exclude, c) {
			out = append(out, c)
		}
	}
	return out
}

// evaluateStep scores every partition and prices the held-out results
type evaluateStep struct {
	BaseStage
	p *Pipeline
}

func (s *evaluateStep) Execute(ctx context.Context, state *RunState) error {
	cfg := s.p.cfg
	ds, parts, err := s.p.loadPrepared(ctx, state)
	if err != nil {
		return err
	}
	fm, err := s.p.loadFitted(ctx, state)
	if err != nil {
		return err
	}

	full, err := dataprocessing.BuildFrame(ds.Rows, fm.Encoder, fm.Exclude)
	if err != nil {
		return err
	}
	// Zero-variance warnings were already raised when the model was fitted.
	scaled, _, err := fm.Normalizer.Transform(full)
	if err != nil {
		return err
	}

	var subsets []modeling.Subset
	for _, set := range parts.Sets.Sets() {
		sub := scaled.Subset(set.Indices)
		subsets = append(subsets, modeling.Subset{Name: set.Name, X: sub.Data, Y: sub.Labels})
	}

	opts := modeling.EvalOptions{
		Threshold: cfg.Evaluation.Threshold,
		Rule:      modeling.LabelRule(cfg.Evaluation.LabelRule),
	}
	evals, err := modeling.EvaluateAll(ctx, fm.Model, subsets, opts)
	if err != nil {
		return err
	}

	costs := finance.Costs{PreventionCost: cfg.Finance.PreventionCost, LateLoss: cfg.Finance.LateLoss}
	targets := []finance.Target{
		{Horizon: HorizonMonthly, Volume: cfg.Finance.MonthlyVolume},
		{Horizon: HorizonAnnual, Volume: cfg.Finance.AnnualVolume},
	}

	report := &domain.Report{
		RunID:       state.ID,
		InputFile:   ds.InputFile,
		GeneratedAt: s.p.now().UTC(),
		FitScope:    fm.FitScope,
		Cleaning:    ds.Cleaning,
		Statistics:  ds.Statistics,
		Partitions:  parts.Balance,
		Model:       fm.Model.Summary(),
		Warnings:    slices.Clone(fm.Warnings),
	}

	for _, e := range evals {
		report.Evaluations = append(report.Evaluations, e.Summary())
		report.Warnings = append(report.Warnings, s.p.recordWarnings(ctx, StageEvaluate, e.Warnings)...)
		s.p.metrics.Accuracy.WithLabelValues(e.Subset).Set(e.Accuracy)
		s.p.logger.InfoContext(ctx, "Subset evaluated",
			slog.String("subset", e.Subset),
			slog.Int("tn", e.Matrix.TN),
			slog.Int("fp", e.Matrix.FP),
			slog.Int("fn", e.Matrix.FN),
			slog.Int("tp", e.Matrix.TP),
			slog.Float64("accuracy", e.Accuracy))

		// Only held-out subsets are priced.
		if e.Subset == dataprocessing.PartitionTrain {
			continue
		}
		result := finance.Score(e.Subset, e.Matrix, costs)
		projections, warnings := finance.Project(result, targets)
		report.Warnings = append(report.Warnings, s.p.recordWarnings(ctx, StageEvaluate, warnings)...)
		report.Finance = append(report.Finance, finance.Summary(result, projections))
		s.p.metrics.NetBenefit.WithLabelValues(e.Subset).Set(float64(result.NetBenefit))
		s.p.logger.InfoContext(ctx, "Net benefit computed",
			slog.String("subset", e.Subset),
			slog.Int64("net_benefit", result.NetBenefit),
			slog.Int("observed_volume", result.ObservedVolume))
	}

	state.Report = report
	if err := s.p.store.Save(ctx, store.KeyReport, report); err != nil {
		return fmt.Errorf("persist report: %w", err)
	}
	return nil
}
