package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// JobMeta contains metadata about a conversion job for telemetry purposes.
type JobMeta struct {
	Source     string // Input path or URL (required)
	SourceKind string // "file" or "url" (optional)
	Format     string // Output image format (optional)
	DPI        int    // Target resolution (optional)
}

// SpanName returns the deterministic span name for this job.
func (m JobMeta) SpanName() string {
	return "convert.job"
}

// Tracer wraps OpenTelemetry tracing with job-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a conversion job.
	StartSpan(ctx context.Context, meta JobMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with job metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta JobMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("job.source", meta.Source),
		attribute.Bool("job.error", false), // Will be updated in EndSpan if error
	}

	if meta.SourceKind != "" {
		attrs = append(attrs, attribute.String("job.source_kind", meta.SourceKind))
	}
	if meta.Format != "" {
		attrs = append(attrs, attribute.String("job.format", meta.Format))
	}
	if meta.DPI > 0 {
		attrs = append(attrs, attribute.Int("job.dpi", meta.DPI))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("job.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta JobMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
