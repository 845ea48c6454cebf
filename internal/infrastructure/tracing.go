package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"shiprisk/internal/config"
)

// TracerName is the instrumentation scope for pipeline spans
const TracerName = "shiprisk/pipeline"

// Tracing holds the tracer provider for one process
type Tracing struct {
	Provider *sdktrace.TracerProvider
	Tracer   trace.Tracer
	file     *os.File
}

// InitializeTracing sets up the global tracer provider from configuration.
// With exporter "none" spans are created against the global no-op provider.
func InitializeTracing(cfg config.TelemetryConfig, logger *slog.Logger) (*Tracing, error) {
	switch cfg.TraceExporter {
	case "", "none":
		return &Tracing{Tracer: otel.Tracer(TracerName)}, nil
	case "stdout":
		var (
			w    io.Writer = os.Stderr
			file *os.File
		)
		if cfg.TraceFile != "" {
			f, err := openLogFile(cfg.TraceFile)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace file: %w", err)
			}
			file, w = f, f
		}
		t, err := NewTracing(w)
		if err != nil {
			if file != nil {
				file.Close()
			}
			return nil, err
		}
		t.file = file
		otel.SetTracerProvider(t.Provider)
		logger.Info("Tracing initialized",
			slog.String("exporter", cfg.TraceExporter),
			slog.String("file", cfg.TraceFile))
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
}

// NewTracing creates a tracer provider exporting spans as JSON to w
func NewTracing(w io.Writer) (*Tracing, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.AppName),
		attribute.String("service.version", config.AppVersion),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return &Tracing{
		Provider: tp,
		Tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(config.AppVersion)),
	}, nil
}

// Shutdown flushes pending spans and releases the trace file
func (t *Tracing) Shutdown(ctx context.Context) error {
	var err error
	if t.Provider != nil {
		err = t.Provider.Shutdown(ctx)
	}
	if t.file != nil {
		if cerr := t.file.Close(); err == nil {
			err = cerr
		}
		t.file = nil
	}
	return err
}

// StartSpan starts a span tagged with the run ID carried by ctx
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, attribute.String("run_id", runID))
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
