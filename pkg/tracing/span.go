package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span with the given name and options.
// It automatically links the span to its parent span from the context.
// The returned context contains the new span and should be passed to downstream operations.
//
// Example:
//
//	ctx, span := tracing.StartSpan(ctx, "operation-name",
//	    trace.WithAttributes(attribute.String("user.id", "123")))
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tracer := otel.Tracer("resilience")
	return tracer.Start(ctx, name, opts...)
}

// StartSpanWithTracer creates a new span using a specific tracer.
// This is useful when you want to use a tracer with a specific name or version.
func StartSpanWithTracer(ctx context.Context, tracerName, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName, opts...)
}

// SpanFromContext retrieves the current span from the context.
// Returns a no-op span if no span is present in the context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// ContextWithSpan returns a new context with the given span.
func ContextWithSpan(ctx context.Context, span trace.Span) context.Context {
	return trace.ContextWithSpan(ctx, span)
}

// SetSpanAttributes adds attributes to the span in the context.
// This is a convenience function that extracts the span and sets attributes.
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}

// SetSpanError marks the span as errored and records the error message.
// The span status is set to Error and the error is recorded as an event.
func SetSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanStatus sets the status code and description of the span.
func SetSpanStatus(ctx context.Context, code codes.Code, description string) {
	span := trace.SpanFromContext(ctx)
	span.SetStatus(code, description)
}

// AddSpanEvent adds an event to the span with the given name and attributes.
// Events are timestamped occurrences that happened during the span's lifetime.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Common attribute helpers for convenience

// HTTPAttributes returns common HTTP attributes for a span.
func HTTPAttributes(method, path, host string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.String("http.host", host),
		attribute.Int("http.status_code", statusCode),
	}
}

// RetryAttributes returns common attributes for a retried operation span.
// Category is the classified failure category of the attempt that triggered
// the retry.
func RetryAttributes(attempt, maxRetries int, category string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("retry.attempt", attempt),
		attribute.Int("retry.max_retries", maxRetries),
		attribute.String("retry.category", category),
	}
}

// BackoffAttributes returns attributes describing an awaited backoff delay.
func BackoffAttributes(delayMillis int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("retry.backoff_delay_ms", delayMillis),
	}
}

// RequestAttributes returns common attributes for a managed request span.
func RequestAttributes(operation string, generation uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("request.operation", operation),
		attribute.Int64("request.generation", int64(generation)),
	}
}

// PollAttributes returns common attributes for a poll run span.
func PollAttributes(intervalMillis int64, run uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("poll.interval_ms", intervalMillis),
		attribute.Int64("poll.run", int64(run)),
	}
}
