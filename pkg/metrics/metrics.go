// Package metrics provides Prometheus metrics collection with standardized
// naming conventions for the resilience layer. It supports counters, gauges,
// and histograms with label validation and duplicate prevention, plus a
// standard set of resilience metrics (retry attempts, exhaustions, backoff
// delays, supersessions, poll runs) recorded by the request manager and the
// polling controller.
//
// Example usage:
//
//	// Initialize metrics with configuration
//	if err := metrics.Init(cfg.Metrics); err != nil {
//	    log.Fatal(err)
//	}
//	defer metrics.Shutdown(context.Background())
//
//	// Create a custom counter
//	counter, err := metrics.NewCounter(metrics.CounterOpts{
//	    Namespace: "payroll",
//	    Subsystem: "imports",
//	    Name:      "total",
//	    Help:      "Total number of payroll imports processed",
//	    Labels:    []string{"status"},
//	})
//	counter.Inc("completed")
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talentwave/resilience/pkg/config"
)

var (
	// registry is the global Prometheus registry for all metrics
	registry *prometheus.Registry

	// registryMu protects concurrent access to registry initialization
	registryMu sync.RWMutex

	// initialized tracks whether Init() has been called
	initialized bool

	// server is the HTTP server for the metrics endpoint
	server *http.Server

	// serverMu protects concurrent access to server
	serverMu sync.Mutex
)

// Init initializes the metrics system with the provided configuration.
// It creates a new Prometheus registry, starts an HTTP server on the
// configured port and path to expose metrics, and registers the standard
// resilience metric set.
//
// This function is safe to call multiple times - subsequent calls are no-ops.
// Returns an error if the metrics system cannot be initialized.
func Init(cfg config.MetricsConfig) error {
	registryMu.Lock()

	if initialized {
		registryMu.Unlock()
		return nil // Already initialized
	}

	if !cfg.Enabled {
		// Metrics disabled: keep a private registry so collector creation
		// still works, but expose nothing.
		registry = prometheus.NewRegistry()
		initialized = true
		registryMu.Unlock()
		return initResilienceMetrics(cfg.Namespace)
	}

	// Create new registry
	registry = prometheus.NewRegistry()

	// Add Go runtime metrics (goroutines, memory, GC, etc.)
	registry.MustRegister(prometheus.NewGoCollector())

	// Add process metrics (CPU, memory, file descriptors, etc.)
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	// Start HTTP server for metrics endpoint
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	serverMu.Lock()
	server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	srv := server // Capture for goroutine
	serverMu.Unlock()

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't crash - metrics are non-critical
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	initialized = true
	registryMu.Unlock()
	return initResilienceMetrics(cfg.Namespace)
}

// Shutdown gracefully shuts down the metrics HTTP server.
// It waits for up to the context deadline for in-flight requests to complete.
func Shutdown(ctx context.Context) error {
	serverMu.Lock()
	defer serverMu.Unlock()

	if server == nil {
		return nil
	}

	return server.Shutdown(ctx)
}

// Registry returns the global Prometheus registry.
// This is useful for custom metric registration or testing.
// Returns nil if Init() has not been called.
func Registry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}

// IsInitialized returns true if Init() has been called successfully.
func IsInitialized() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return initialized
}
