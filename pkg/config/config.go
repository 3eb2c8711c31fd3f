// Package config provides configuration management for the resilience library.
// It supports loading configuration from YAML files, JSON files, and environment variables
// with automatic validation and default value application.
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml", "PAYROLL")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Or panic on error:
//	cfg := config.MustLoad("config.yaml", "PAYROLL")
package config

import (
	"time"
)

// Config represents the complete configuration for a service using the resilience layer.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Transport TransportConfig `mapstructure:"transport"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Polling   PollingConfig   `mapstructure:"polling"`
}

// ServiceConfig contains general service information.
type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

// LogConfig contains structured logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Port      int    `mapstructure:"port"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"` // Metric prefix
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`      // OTLP endpoint (e.g., "localhost:4317")
	SampleRate   float64       `mapstructure:"sample_rate"`   // 0.0 to 1.0
	ServiceName  string        `mapstructure:"service_name"`  // Override service name for traces
	Environment  string        `mapstructure:"environment"`   // Environment tag
	ExportMode   string        `mapstructure:"export_mode"`   // "grpc" or "http"
	Insecure     bool          `mapstructure:"insecure"`      // Use insecure connection
	BatchTimeout time.Duration `mapstructure:"batch_timeout"` // Batch export timeout
}

// RetryConfig contains retry executor configuration.
type RetryConfig struct {
	// MaxRetries is the number of re-invocations after the first attempt.
	// 0 means the operation runs exactly once.
	// Default: 3.
	MaxRetries int `mapstructure:"max_retries"`

	// BaseDelay is the delay before the first retry; subsequent delays
	// grow exponentially from it.
	// Default: 1 second.
	BaseDelay time.Duration `mapstructure:"base_delay"`

	// MaxDelay caps the delay between retries, jitter included.
	// Default: 30 seconds.
	MaxDelay time.Duration `mapstructure:"max_delay"`

	// MaxElapsedTime bounds the total time spent retrying (0 = unbounded).
	// Default: 0.
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`
}

// PollingConfig contains polling controller configuration.
type PollingConfig struct {
	// Interval is the period between task runs.
	// Default: 30 seconds.
	Interval time.Duration `mapstructure:"interval"`
}

// TransportConfig contains HTTP transport configuration.
//
// The transport deliberately has no retry settings: retrying is owned by the
// retry executor so failures are retried in exactly one place.
type TransportConfig struct {
	// BaseURL is the base URL for all requests (e.g., "https://api.example.com").
	// Individual requests can override this with absolute URLs.
	BaseURL string `mapstructure:"base_url"`

	// Timeout is the maximum duration for a single request. Exceeding it
	// surfaces as a timeout failure to the classifier.
	// Default: 30 seconds.
	Timeout time.Duration `mapstructure:"timeout"`

	// RateLimitPerSecond is the maximum requests per second (0 = unlimited).
	// Default: 0 (disabled).
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`

	// RateLimitBurst is the maximum burst size for rate limiting.
	// Default: 1.
	RateLimitBurst int `mapstructure:"rate_limit_burst"`

	// MaxIdleConns is the maximum number of idle connections across all hosts.
	// Default: 100.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 10.
	MaxIdleConnsPerHost int `mapstructure:"max_idle_conns_per_host"`

	// MaxConnsPerHost is the maximum total connections per host (0 = unlimited).
	// Default: 0.
	MaxConnsPerHost int `mapstructure:"max_conns_per_host"`

	// IdleConnTimeout is the maximum time an idle connection stays open.
	// Default: 90 seconds.
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout"`

	// TLSHandshakeTimeout is the maximum time for TLS handshake.
	// Default: 10 seconds.
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`

	// ExpectContinueTimeout is the time to wait for a 100-continue response.
	// Default: 1 second.
	ExpectContinueTimeout time.Duration `mapstructure:"expect_continue_timeout"`
}
