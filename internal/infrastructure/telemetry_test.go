package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/internal/config"
)

func TestTracing_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr, err := NewTracing(&buf)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-7")
	_, span := StartSpan(ctx, tr.Tracer, "stage.fit")
	EndSpan(span, errors.New("singular"))

	require.NoError(t, tr.Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "stage.fit")
	assert.Contains(t, out, "run-7")
	assert.Contains(t, out, "singular")
}

func TestInitializeTracing(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	tr, err := InitializeTracing(config.TelemetryConfig{TraceExporter: "none"}, logger)
	require.NoError(t, err)
	assert.Nil(t, tr.Provider)
	assert.NotNil(t, tr.Tracer)
	assert.NoError(t, tr.Shutdown(context.Background()))

	path := filepath.Join(t.TempDir(), "traces.json")
	tr, err = InitializeTracing(config.TelemetryConfig{TraceExporter: "stdout", TraceFile: path}, logger)
	require.NoError(t, err)
	_, span := StartSpan(context.Background(), tr.Tracer, "stage.clean")
	EndSpan(span, nil)
	require.NoError(t, tr.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stage.clean")

	_, err = InitializeTracing(config.TelemetryConfig{TraceExporter: "otlp"}, logger)
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveStage("fit", "completed", 20*time.Millisecond)
	m.ObserveStage("fit", "completed", 30*time.Millisecond)
	m.Rows.WithLabelValues("cleaned").Set(1500)
	m.Warnings.WithLabelValues("convergence").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("fit", "completed")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.Rows.WithLabelValues("cleaned")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "shiprisk_stage_runs_total")

	path := filepath.Join(t.TempDir(), "shiprisk.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shiprisk_warnings_total")
}
