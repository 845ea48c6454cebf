package operations

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/internal/config"
	"shiprisk/internal/dataprocessing"
	"shiprisk/internal/errors"
	"shiprisk/internal/infrastructure"
	fixtures "shiprisk/internal/shared/testutil"
	"shiprisk/internal/store"
	"shiprisk/pkg/contracts/domain"
)

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t, writeShipments(t, 100))
	logger, logs := fixtures.NewTestLogger(nil)
	p, st := newTestPipeline(t, cfg, WithLogger(logger))

	ctx := infrastructure.WithRunID(context.Background(), "run-under-test")
	report, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-under-test", report.RunID)
	assert.Equal(t, config.FitScopeTrain, report.FitScope)
	assert.Equal(t, 101, report.Cleaning.RowsBefore)
	assert.Equal(t, 100, report.Cleaning.RowsAfter)
	assert.Equal(t, 1, report.Cleaning.RowsDropped)
	assert.NotEmpty(t, report.Statistics)

	require.Len(t, report.Partitions, 3)
	total := 0
	for _, b := range report.Partitions {
		total += b.Rows
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 40, report.Partitions[0].Rows)

	// Weather alone separates the classes, so training accuracy is perfect
	// and weather dominates the coefficient table.
	train, ok := report.Evaluation(dataprocessing.PartitionTrain)
	require.True(t, ok)
	assert.GreaterOrEqual(t, float64(train.Accuracy), 0.99)
	require.NotEmpty(t, report.Model.Coefficients)
	assert.Equal(t, domain.ColWeatherSeverity, report.Model.Coefficients[0].Feature)

	require.Len(t, report.Evaluations, 3)
	require.Len(t, report.Finance, 2)
	for _, f := range report.Finance {
		assert.NotEqual(t, dataprocessing.PartitionTrain, f.Subset)
		require.Len(t, f.Projections, 2)
		assert.Equal(t, HorizonMonthly, f.Projections[0].Horizon)
		assert.True(t, f.Projections[1].Approximation)
	}

	kinds := map[string]bool{}
	for _, w := range report.Warnings {
		kinds[w.Kind] = true
	}
	assert.True(t, kinds[string(errors.WarnZeroVariance)], "high-risk flag is constant")
	assert.True(t, kinds[string(errors.WarnSeparation)])
	fixtures.AssertLogContains(t, logs, slog.LevelWarn, "SeparationWarning")
	assert.True(t, logs.ContainsAttr("stage", StageFit))
	fixtures.AssertLogContains(t, logs, slog.LevelInfo, "Cleaned table")
	assert.True(t, logs.ContainsAttr("rows_after", int64(100)))
	fixtures.AssertNoErrors(t, logs)

	keys, err := st.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{store.KeyCleanDataset, store.KeyPartitions, store.KeyModel, store.KeyReport}, keys)

	latest, err := p.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, latest.RunID)

	m := p.Metrics()
	for _, stage := range []string{StagePrepare, StageFit, StageEvaluate} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues(stage, "completed")), stage)
	}
	assert.Equal(t, 100.0, testutil.ToFloat64(m.Rows.WithLabelValues("cleaned")))
}

func TestPipeline_PhasesMatchRun(t *testing.T) {
	input := writeShipments(t, 120)

	whole, _ := newTestPipeline(t, testConfig(t, input))
	want, err := whole.Run(context.Background())
	require.NoError(t, err)

	cfg := testConfig(t, input)
	phased, _ := newTestPipeline(t, cfg)
	state, err := phased.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, state.Status)
	require.Len(t, state.Steps(), 1)
	assert.Equal(t, StepStatusCompleted, state.Steps()[0].GetStatus())

	// A fresh pipeline only sees what the store holds.
	fitter, _ := newTestPipeline(t, cfg)
	_, err = fitter.Fit(context.Background())
	require.NoError(t, err)

	evaluator, _ := newTestPipeline(t, cfg)
	got, err := evaluator.Evaluate(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Model.Coefficients, len(want.Model.Coefficients))
	for i, c := range want.Model.Coefficients {
		assert.Equal(t, c.Feature, got.Model.Coefficients[i].Feature)
		assert.InDelta(t, float64(c.Estimate), float64(got.Model.Coefficients[i].Estimate), 1e-6)
	}
	for i, e := range want.Evaluations {
		assert.Equal(t, e.Subset, got.Evaluations[i].Subset)
		assert.Equal(t, [4]int{e.TN, e.FP, e.FN, e.TP},
			[4]int{got.Evaluations[i].TN, got.Evaluations[i].FP, got.Evaluations[i].FN, got.Evaluations[i].TP})
	}
	assert.Equal(t, want.Finance[0].NetBenefit, got.Finance[0].NetBenefit)
	assert.Equal(t, len(want.Warnings), len(got.Warnings))
}

func TestPipeline_FitScopeAll(t *testing.T) {
	cfg := testConfig(t, writeShipments(t, 80))
	cfg.Pipeline.FitScope = config.FitScopeAll
	cfg.Pipeline.DropReference = false
	cfg.Pipeline.ExcludeFeatures = []string{domain.ColLeadTimeBuffer, domain.ColHighRisk}
	p, _ := newTestPipeline(t, cfg)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.FitScopeAll, report.FitScope)
	for _, c := range report.Model.Coefficients {
		assert.NotEqual(t, domain.ColLeadTimeBuffer, c.Feature)
		assert.NotEqual(t, domain.ColHighRisk, c.Feature)
	}
	// Full one-hot keeps every level, so the reference level appears too.
	names := map[string]bool{}
	for _, c := range report.Model.Coefficients {
		names[c.Feature] = true
	}
	assert.True(t, names["Route_Type_Air"])
}

func TestPipeline_FitScope(t *testing.T) {
	input := writeShipments(t, 100)

	tests := []struct {
		scope     string
		reference func(ds *Dataset, sets dataprocessing.Partition) []domain.EngineeredShipment
		seesTest  bool
	}{
		{
			scope: config.FitScopeTrain,
			reference: func(ds *Dataset, sets dataprocessing.Partition) []domain.EngineeredShipment {
				return dataprocessing.Select(ds.Rows, sets.Train)
			},
		},
		{
			scope: config.FitScopeAll,
			reference: func(ds *Dataset, _ dataprocessing.Partition) []domain.EngineeredShipment {
				return ds.Rows
			},
			seesTest: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, input)
			cfg.Pipeline.FitScope = tt.scope
			p, st := newTestPipeline(t, cfg)

			prepared, err := p.Prepare(ctx)
			require.NoError(t, err)
			ds := prepared.Dataset
			sets := prepared.Partitions.Sets
			require.NotEmpty(t, sets.Test)

			// A transport mode seen only in one test row.
			ds.Rows[sets.Test[0]].TransportMode = "Drone"
			require.NoError(t, st.Save(ctx, store.KeyCleanDataset, ds))

			fitted, err := p.Fit(ctx)
			require.NoError(t, err)
			fm := fitted.Fitted

			modes := fm.Encoder.Vocabulary[domain.ColTransportMode]
			if tt.seesTest {
				assert.Contains(t, modes, "Drone")
			} else {
				assert.NotContains(t, modes, "Drone")
			}

			ref := tt.reference(ds, sets)
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, r := range ref {
				lo = math.Min(lo, r.ShippingCost)
				hi = math.Max(hi, r.ShippingCost)
			}
			var bounds *dataprocessing.Bounds
			for i := range fm.Normalizer.Bounds {
				if fm.Normalizer.Bounds[i].Column == domain.ColShippingCost {
					bounds = &fm.Normalizer.Bounds[i]
				}
			}
			require.NotNil(t, bounds)
			assert.Equal(t, lo, bounds.Min)
			assert.Equal(t, hi, bounds.Max)

			_, err = p.Evaluate(ctx)
			require.NoError(t, err)
		})
	}
}

func TestPipeline_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		run     func(p *Pipeline) error
		errType errors.ErrorType
	}{
		{
			name:    "no input configured",
			mutate:  func(cfg *config.Config) { cfg.Paths.Input = "" },
			run:     func(p *Pipeline) error { _, err := p.Prepare(context.Background()); return err },
			errType: errors.ErrTypeConfig,
		},
		{
			name:    "missing input file",
			mutate:  func(cfg *config.Config) { cfg.Paths.Input += ".missing" },
			run:     func(p *Pipeline) error { _, err := p.Prepare(context.Background()); return err },
			errType: errors.ErrTypeIO,
		},
		{
			name:    "fit before prepare",
			mutate:  func(cfg *config.Config) {},
			run:     func(p *Pipeline) error { _, err := p.Fit(context.Background()); return err },
			errType: errors.ErrTypeNotFound,
		},
		{
			name:    "evaluate before fit",
			mutate:  func(cfg *config.Config) {},
			run: func(p *Pipeline) error {
				if _, err := p.Prepare(context.Background()); err != nil {
					return err
				}
				_, err := p.Evaluate(context.Background())
				return err
			},
			errType: errors.ErrTypeNotFound,
		},
		{
			name:    "unknown excluded feature",
			mutate:  func(cfg *config.Config) { cfg.Pipeline.ExcludeFeatures = []string{"Nope"} },
			run:     func(p *Pipeline) error { _, err := p.Run(context.Background()); return err },
			errType: errors.ErrTypeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, writeShipments(t, 50))
			tt.mutate(cfg)
			p, _ := newTestPipeline(t, cfg)

			err := tt.run(p)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), err.Error())
		})
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	cfg := testConfig(t, writeShipments(t, 50))
	p, _ := newTestPipeline(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0.0, testutil.ToFloat64(p.Metrics().StageRuns.WithLabelValues(StagePrepare, "completed")))
}

func TestPipeline_Deterministic(t *testing.T) {
	input := writeShipments(t, 90)
	a, _ := newTestPipeline(t, testConfig(t, input))
	b, _ := newTestPipeline(t, testConfig(t, input))

	ra, err := a.Run(context.Background())
	require.NoError(t, err)
	rb, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ra.Partitions, rb.Partitions)
	for i := range ra.Model.Coefficients {
		ea, eb := float64(ra.Model.Coefficients[i].Estimate), float64(rb.Model.Coefficients[i].Estimate)
		assert.LessOrEqual(t, math.Abs(ea-eb), 1e-6)
	}
}
