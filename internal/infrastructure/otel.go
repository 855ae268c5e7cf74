package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"laptopstats/internal/config"
)

const (
	ServiceName    = "laptop-price-analyzer"
	ServiceVersion = "1.0.0"
	MeterName      = "laptopstats"
)

// Telemetry holds the OpenTelemetry providers of one analysis run
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// Registry receives the otel metrics through the Prometheus exporter.
	Registry *prometheus.Registry
	Metrics  *PipelineMetrics
	Runtime  *RuntimeMetrics

	traceOut io.Closer
	logger   *slog.Logger
}

// InitializeTelemetry sets up tracing and metrics for a run. Relative trace
// files are resolved against outputDir.
func InitializeTelemetry(ctx context.Context, cfg config.TelemetryConfig, outputDir string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{logger: logger}

	if err := t.initializeTracing(cfg, outputDir, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := t.initializeMetrics(res); err != nil {
		t.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.DebugContext(ctx, "telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("environment", cfg.Environment))

	return t, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	hostname, _ := os.Hostname()
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", fmt.Sprintf("%s-%d", hostname, time.Now().Unix())),
	), nil
}

// initializeTracing sets up the tracer provider. With the "none" exporter
// spans are still created so trace IDs reach the logs, but nothing is exported.
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, outputDir string, res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "file":
		path := cfg.TraceFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(outputDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.traceOut = f
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none", "":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	t.TracerProvider = sdktrace.NewTracerProvider(opts...)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	otel.SetTracerProvider(t.TracerProvider)
	return nil
}

// initializeMetrics wires an otel meter provider to a private Prometheus
// registry so a one-shot run can dump its metrics to a textfile at exit.
func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	t.Registry = prometheus.NewRegistry()

	// resource attributes stay on the spans; as target_info labels their
	// dotted keys would be written as quoted names
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(t.Registry),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))

	t.Metrics, err = CreatePipelineMetrics(t.Meter)
	if err != nil {
		return err
	}
	t.Runtime, err = NewRuntimeMetrics(t.Meter)
	return err
}

// WriteMetricsFile writes the current metrics to path in the Prometheus
// text exposition format (node_exporter textfile collector layout).
func (t *Telemetry) WriteMetricsFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, t.Registry)
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		t.traceOut = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// PipelineMetrics holds the metrics recorded by the analysis pipeline
type PipelineMetrics struct {
	RowsLoaded     metric.Int64Counter
	RowsCleaned    metric.Int64Counter
	StepDuration   metric.Float64Histogram
	StepErrors     metric.Int64Counter
	ChartsRendered metric.Int64Counter
	FilesExported  metric.Int64Counter
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"dataset_rows_loaded",
		metric.WithDescription("Number of rows read from the input dataset"),
	)
	if err != nil {
		return nil, err
	}

	rowsCleaned, err := meter.Int64Counter(
		"dataset_rows_cleaned",
		metric.WithDescription("Number of rows that passed cleaning"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"pipeline_step_errors",
		metric.WithDescription("Number of failed pipeline steps"),
	)
	if err != nil {
		return nil, err
	}

	chartsRendered, err := meter.Int64Counter(
		"charts_rendered",
		metric.WithDescription("Number of chart files written"),
	)
	if err != nil {
		return nil, err
	}

	filesExported, err := meter.Int64Counter(
		"files_exported",
		metric.WithDescription("Number of export files written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:     rowsLoaded,
		RowsCleaned:    rowsCleaned,
		StepDuration:   stepDuration,
		StepErrors:     stepErrors,
		ChartsRendered: chartsRendered,
		FilesExported:  filesExported,
	}, nil
}

// Metric label keys. They are plain Prometheus label names so the textfile
// needs no quoted UTF-8 names.
const (
	LabelStepID    = "step_id"
	LabelErrorType = "error_type"
)

// RecordStepMetrics records the duration and outcome of one pipeline step
func RecordStepMetrics(ctx context.Context, metrics *PipelineMetrics, stepID string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(LabelStepID, stepID),
		attribute.String("status", status),
	))

	if err != nil {
		metrics.StepErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelStepID, stepID),
			attribute.String(LabelErrorType, fmt.Sprintf("%T", err)),
		))
	}
}

// AddRowsLoaded counts rows read from the input; a nil receiver is a no-op
func (m *PipelineMetrics) AddRowsLoaded(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(n))
}

// AddRowsCleaned counts rows that passed cleaning
func (m *PipelineMetrics) AddRowsCleaned(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.RowsCleaned.Add(ctx, int64(n))
}

// AddChartsRendered counts chart files written in format
func (m *PipelineMetrics) AddChartsRendered(ctx context.Context, n int, format string) {
	if m == nil {
		return
	}
	m.ChartsRendered.Add(ctx, int64(n), metric.WithAttributes(attribute.String("format", format)))
}

// AddFileExported counts one export file of the given kind (csv, xlsx, sqlite)
func (m *PipelineMetrics) AddFileExported(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.FilesExported.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
