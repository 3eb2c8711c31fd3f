package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"

	"github.com/talentwave/resilience/pkg/logging"
	"github.com/talentwave/resilience/pkg/metrics"
	"github.com/talentwave/resilience/pkg/tracing"
)

type contextKey string

const (
	logStartTimeKey     contextKey = "log_start_time"
	metricsStartTimeKey contextKey = "metrics_start_time"
	spanKey             contextKey = "http_span"
)

// WithLogging adds logging middleware to the HTTP client.
// It logs request start, response, duration, and status codes.
func (c *Client) WithLogging(logger *logging.Logger) *Client {
	log := logger.WithComponent("transport")

	c.resty.AddRequestMiddleware(func(client *resty.Client, req *resty.Request) error {
		ctx := req.Context()

		log.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("HTTP request starting")

		// Store start time in context for response logging
		req.SetContext(context.WithValue(ctx, logStartTimeKey, time.Now()))

		return nil
	})

	c.resty.AddResponseMiddleware(func(client *resty.Client, resp *resty.Response) error {
		// Get start time from context
		startVal := resp.Request.Context().Value(logStartTimeKey)
		start, ok := startVal.(time.Time)
		if !ok {
			start = time.Now() // Fallback if not found
		}

		duration := time.Since(start)
		statusCode := resp.StatusCode()

		// Determine log level based on status code
		logEvent := log.Info()
		if statusCode >= 500 {
			logEvent = log.Error()
		} else if statusCode >= 400 {
			logEvent = log.Warn()
		}

		logEvent.
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status_code", statusCode).
			Dur("duration_ms", duration).
			Msg("HTTP request completed")

		return nil
	})

	return c
}

// WithMetrics adds metrics middleware to the HTTP client.
// It records request count and duration for all HTTP requests.
func (c *Client) WithMetrics(namespace string) *Client {
	// Create metrics collectors
	requestDuration, err := metrics.NewHistogram(metrics.HistogramOpts{
		Namespace: namespace,
		Subsystem: "transport",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP client requests in seconds",
		Labels:    []string{"method", "status_code"},
	})
	if err != nil {
		// If metrics fail to initialize, we'll skip metrics collection
		// This allows the client to work even if metrics aren't set up
		return c
	}

	requestCount, err := metrics.NewCounter(metrics.CounterOpts{
		Namespace: namespace,
		Subsystem: "transport",
		Name:      "request_count_total",
		Help:      "Total count of HTTP client requests",
		Labels:    []string{"method", "status_code"},
	})
	if err != nil {
		return c
	}

	c.resty.AddRequestMiddleware(func(client *resty.Client, req *resty.Request) error {
		// Store start time
		ctx := req.Context()
		req.SetContext(context.WithValue(ctx, metricsStartTimeKey, time.Now()))
		return nil
	})

	c.resty.AddResponseMiddleware(func(client *resty.Client, resp *resty.Response) error {
		// Get start time
		startVal := resp.Request.Context().Value(metricsStartTimeKey)
		start, ok := startVal.(time.Time)
		if !ok {
			start = time.Now()
		}

		duration := time.Since(start).Seconds()
		method := resp.Request.Method
		statusCode := fmt.Sprintf("%d", resp.StatusCode())

		// Record metrics
		requestDuration.Observe(duration, method, statusCode)
		requestCount.Inc(method, statusCode)

		return nil
	})

	return c
}

// WithTracing adds distributed tracing middleware to the HTTP client.
// It creates spans for each request with appropriate attributes and
// injects W3C trace context into outgoing headers.
func (c *Client) WithTracing(serviceName string) *Client {
	c.resty.AddRequestMiddleware(func(client *resty.Client, req *resty.Request) error {
		ctx := req.Context()

		// Start a span
		spanCtx, span := tracing.StartSpanWithTracer(ctx, serviceName, fmt.Sprintf("HTTP %s", req.Method))

		// Add attributes
		span.SetAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL),
		)

		// Propagate trace context to the server
		tracing.InjectHTTP(spanCtx, req.Header)

		// Store span in context
		req.SetContext(context.WithValue(spanCtx, spanKey, span))

		return nil
	})

	c.resty.AddResponseMiddleware(func(client *resty.Client, resp *resty.Response) error {
		// Get span from context
		spanVal := resp.Request.Context().Value(spanKey)
		if spanVal == nil {
			return nil
		}

		span, ok := spanVal.(trace.Span)
		if !ok {
			return nil
		}
		defer span.End()

		// Add response attributes
		statusCode := resp.StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
		)

		// Set span status based on HTTP status code
		if statusCode >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return nil
	})

	return c
}

// WithRequestID adds a unique X-Request-ID header to every request, so a
// retried operation's attempts can be correlated server-side.
func (c *Client) WithRequestID() *Client {
	c.resty.AddRequestMiddleware(func(client *resty.Client, req *resty.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.SetHeader("X-Request-ID", uuid.NewString())
		}
		return nil
	})
	return c
}

// WithAuthToken adds Bearer token authentication to all requests.
func (c *Client) WithAuthToken(token string) *Client {
	c.resty.SetAuthToken(token)
	return c
}

// WithBasicAuth adds basic authentication to all requests.
func (c *Client) WithBasicAuth(username, password string) *Client {
	c.resty.SetBasicAuth(username, password)
	return c
}

// WithDefaultHeader adds a default header to all requests.
func (c *Client) WithDefaultHeader(key, value string) *Client {
	c.resty.SetHeader(key, value)
	return c
}

// WithDefaultHeaders adds multiple default headers to all requests.
func (c *Client) WithDefaultHeaders(headers map[string]string) *Client {
	c.resty.SetHeaders(headers)
	return c
}
