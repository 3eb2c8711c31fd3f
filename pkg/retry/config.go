package retry

import (
	"time"

	"github.com/talentwave/resilience/pkg/errors"
)

// ShouldRetryFunc decides whether a failed attempt is worth repeating.
// It takes priority over the default classification-based retryability,
// allowing callers to force a stop or force a retry.
type ShouldRetryFunc func(error) bool

// NotifyFunc is invoked once per retry, before the backoff wait, with the
// 1-based attempt number that just failed, the configured retry budget, the
// delay about to be awaited, and the error that triggered the retry.
type NotifyFunc func(attempt, maxRetries int, delay time.Duration, err error)

// Config holds the retry executor configuration.
type Config struct {
	// MaxRetries is the number of re-invocations after the first attempt.
	// 0 means the operation runs exactly once. It is deliberately not
	// defaulted here; operator-facing defaults live in pkg/config.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Default is 1 second.
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries, jitter included.
	// Default is 30 seconds.
	MaxDelay time.Duration

	// MaxElapsedTime bounds the total time spent retrying.
	// 0 means no time limit. Default is 0.
	MaxElapsedTime time.Duration

	// ShouldRetry overrides the default retryability decision
	// (errors.IsRetryable of the classified category).
	ShouldRetry ShouldRetryFunc

	// OnRetry is the single notification hook fired per retry. The executor
	// has no other side effects.
	OnRetry NotifyFunc
}

// withDefaults returns a config with default delay values applied.
func (c Config) withDefaults() Config {
	if c.BaseDelay == 0 {
		c.BaseDelay = 1 * time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 30 * time.Second
	}
	return c
}

// shouldRetry reports whether the given failure is worth repeating.
func (c Config) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if c.ShouldRetry != nil {
		return c.ShouldRetry(err)
	}
	return errors.IsRetryable(errors.Classify(err))
}
