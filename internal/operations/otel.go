package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"laptopstats/internal/infrastructure"
)

const (
	TracerName = "laptopstats.operation"
)

// OperationTracer wraps each run and each Step in a span and records the
// Step metrics
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer from the run's telemetry. A nil
// telemetry falls back to the global (no-op unless configured) provider.
func NewOperationTracer(telemetry *infrastructure.Telemetry) *OperationTracer {
	if telemetry == nil || telemetry.Tracer == nil {
		return &OperationTracer{tracer: otel.Tracer(TracerName)}
	}
	return &OperationTracer{
		tracer:  telemetry.Tracer,
		metrics: telemetry.Metrics,
	}
}

// Metrics returns the pipeline instruments, nil when telemetry is off
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire operation execution
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, state *OperationState) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("input.path", state.Config.Input.Path),
			attribute.String("output.dir", state.Config.Output.Dir),
		),
	)
}

// TraceStageExecution creates a span for individual Step execution
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStageCompletion ends a Step span and records its metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	defer span.End()

	infrastructure.RecordStepMetrics(ctx, pt.metrics, stepID, duration, err)
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))

	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(
			attribute.String("step.id", stepID),
		))
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordStageSkipped notes a skipped Step on the run span
func (pt *OperationTracer) RecordStageSkipped(ctx context.Context, stepID, reason string) {
	infrastructure.AddSpanEvent(ctx, "step.skipped",
		attribute.String("step.id", stepID),
		attribute.String("reason", reason),
	)
}

// RecordOperationCompletion ends the run span
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, state *OperationState, err error) {
	defer span.End()

	span.SetAttributes(
		attribute.String("operation.status", string(state.GetStatus())),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return
	}
	span.SetStatus(codes.Ok, "operation completed successfully")
}
