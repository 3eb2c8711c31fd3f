// Package logging provides structured logging with zerolog for the resilience layer.
// It supports configurable log levels, output formats (JSON/console), and automatic
// extraction of trace/span IDs from context for distributed tracing correlation.
//
// Example usage:
//
//	cfg := config.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//	logger := logging.New(cfg)
//	logger.Info().Str("operation", "employees.list").Msg("request started")
package logging

// Standard field names for structured logging.
// These constants ensure consistent field naming across all consumers of the layer.
const (
	// TraceID is the field name for distributed trace ID (W3C trace context).
	TraceID = "trace_id"

	// SpanID is the field name for current span ID within a trace.
	SpanID = "span_id"

	// ServiceName is the field name for the service generating the log.
	ServiceName = "service_name"

	// Timestamp is the field name for when the log was created.
	Timestamp = "timestamp"

	// Level is the field name for log level (debug, info, warn, error).
	Level = "level"

	// Message is the field name for the log message.
	Message = "message"

	// Error is the field name for error information.
	Error = "error"

	// RequestID is the field name for HTTP request ID.
	RequestID = "request_id"

	// Method is the field name for HTTP method.
	Method = "method"

	// URL is the field name for the request URL.
	URL = "url"

	// StatusCode is the field name for HTTP status code.
	StatusCode = "status_code"

	// Duration is the field name for operation duration.
	Duration = "duration_ms"

	// Component is the field name for the component/package generating the log.
	Component = "component"

	// Operation is the field name for the logical operation being executed.
	Operation = "operation"

	// Attempt is the field name for the current retry attempt number.
	Attempt = "attempt"

	// MaxRetries is the field name for the configured retry budget.
	MaxRetries = "max_retries"

	// Delay is the field name for the backoff delay before the next attempt.
	Delay = "delay_ms"

	// Category is the field name for the classified error category.
	Category = "category"

	// Generation is the field name for the request generation token.
	Generation = "generation"

	// Interval is the field name for the polling interval.
	Interval = "interval_ms"
)

// Context keys for storing values in context.Context.
const (
	// loggerKey is the context key for storing logger instances.
	loggerKey = "resilience.logger"

	// traceIDKey is the context key for storing trace IDs.
	traceIDKey = "resilience.trace_id"

	// spanIDKey is the context key for storing span IDs.
	spanIDKey = "resilience.span_id"

	// requestIDKey is the context key for storing request IDs.
	requestIDKey = "resilience.request_id"
)
