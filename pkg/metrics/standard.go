package metrics

import (
	"sync"
)

var (
	// Standard resilience metrics
	retryAttempts        *Counter
	retryExhaustions     *Counter
	backoffDelay         *Histogram
	requestSupersessions *Counter
	pollRuns             *Counter
	pollFailures         *Counter

	// Ensure the resilience metrics are initialized only once
	resilienceMetricsOnce sync.Once
)

// initResilienceMetrics registers the standard resilience metric set.
// It is called by Init; subsequent calls are no-ops.
func initResilienceMetrics(namespace string) error {
	var initErr error

	resilienceMetricsOnce.Do(func() {
		retryAttempts, initErr = NewCounter(CounterOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "attempts_total",
			Help:      "Total number of retry attempts, by failure category",
			Labels:    []string{"category"},
		})
		if initErr != nil {
			return
		}

		retryExhaustions, initErr = NewCounter(CounterOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "exhaustions_total",
			Help:      "Total number of operations that failed after spending their retry budget",
			Labels:    []string{"category"},
		})
		if initErr != nil {
			return
		}

		backoffDelay, initErr = NewHistogram(HistogramOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "backoff_delay_seconds",
			Help:      "Backoff delays awaited between retry attempts in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
		})
		if initErr != nil {
			return
		}

		requestSupersessions, initErr = NewCounter(CounterOpts{
			Namespace: namespace,
			Subsystem: "request",
			Name:      "supersessions_total",
			Help:      "Total number of in-flight operations displaced by a newer call",
		})
		if initErr != nil {
			return
		}

		pollRuns, initErr = NewCounter(CounterOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "runs_total",
			Help:      "Total number of poll task invocations",
		})
		if initErr != nil {
			return
		}

		pollFailures, initErr = NewCounter(CounterOpts{
			Namespace: namespace,
			Subsystem: "polling",
			Name:      "failures_total",
			Help:      "Total number of poll task invocations that failed",
		})
	})

	return initErr
}

// RecordRetryAttempt counts one retry attempt for the given failure
// category. It is a no-op before Init.
func RecordRetryAttempt(category string) {
	if retryAttempts != nil {
		retryAttempts.Inc(category)
	}
}

// RecordRetryExhaustion counts one operation that gave up after its retry
// budget. It is a no-op before Init.
func RecordRetryExhaustion(category string) {
	if retryExhaustions != nil {
		retryExhaustions.Inc(category)
	}
}

// ObserveBackoffDelay records one awaited backoff delay in seconds.
// It is a no-op before Init.
func ObserveBackoffDelay(seconds float64) {
	if backoffDelay != nil {
		backoffDelay.Observe(seconds)
	}
}

// RecordSupersession counts one in-flight operation displaced by a newer
// call. It is a no-op before Init.
func RecordSupersession() {
	if requestSupersessions != nil {
		requestSupersessions.Inc()
	}
}

// RecordPollRun counts one poll task invocation. It is a no-op before Init.
func RecordPollRun() {
	if pollRuns != nil {
		pollRuns.Inc()
	}
}

// RecordPollFailure counts one failed poll task invocation. It is a no-op
// before Init.
func RecordPollFailure() {
	if pollFailures != nil {
		pollFailures.Inc()
	}
}

// GetRetryAttempts returns the standard retry attempt counter.
// Returns nil if the resilience metrics have not been initialized.
func GetRetryAttempts() *Counter {
	return retryAttempts
}

// GetRetryExhaustions returns the standard retry exhaustion counter.
// Returns nil if the resilience metrics have not been initialized.
func GetRetryExhaustions() *Counter {
	return retryExhaustions
}

// GetBackoffDelay returns the standard backoff delay histogram.
// Returns nil if the resilience metrics have not been initialized.
func GetBackoffDelay() *Histogram {
	return backoffDelay
}

// GetPollRuns returns the standard poll run counter.
// Returns nil if the resilience metrics have not been initialized.
func GetPollRuns() *Counter {
	return pollRuns
}
