// Package retry executes operations repeatedly until they succeed, a
// non-retryable failure occurs, or the retry budget is exhausted.
//
// This package wraps github.com/cenkalti/backoff/v5 and integrates it with
// the error classifier: by default only transient categories (NETWORK,
// TIMEOUT, SERVER, RATE_LIMIT) are retried. Delays between attempts come
// from the backoff policy, exponential with jitter, so simultaneous clients
// do not retry in lockstep.
//
// Example usage:
//
//	cfg := retry.Config{
//		MaxRetries: 3,
//		BaseDelay:  1 * time.Second,
//		MaxDelay:   30 * time.Second,
//		OnRetry: func(attempt, max int, delay time.Duration, err error) {
//			logger.Warn().Int("attempt", attempt).Msg("retrying")
//		},
//	}
//
//	employees, err := retry.DoWithData(ctx, cfg, func() ([]Employee, error) {
//		return fetchEmployees(ctx)
//	})
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	bpolicy "github.com/talentwave/resilience/pkg/backoff"
	"github.com/talentwave/resilience/pkg/errors"
)

// Do executes fn with retry logic based on the configuration.
// It respects context cancellation and applies exponential backoff with
// jitter between attempts.
//
// A failure stops the loop when the configured ShouldRetry (default:
// classification-based retryability) rejects it or the retry budget is
// spent; the final error is returned to the caller unchanged, never
// wrapped, so it can be re-classified or displayed as-is.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithData(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithData executes fn with retry logic and returns its value.
// It works the same as Do but supports operations that produce data.
//
// Example:
//
//	payslip, err := retry.DoWithData(ctx, cfg, func() (*Payslip, error) {
//		return fetchPayslip(ctx, id)
//	})
func DoWithData[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	policy := &policyBackOff{
		policy: bpolicy.Policy{
			Base: cfg.BaseDelay,
			Max:  cfg.MaxDelay,
		},
	}

	// Track the 1-based attempt number across notify calls so the hook can
	// report progress against the budget.
	attempt := 0
	notify := func(err error, delay time.Duration) {
		attempt++
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, cfg.MaxRetries, delay, err)
		}
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(cfg.MaxRetries + 1)),
		backoff.WithNotify(notify),
	}
	if cfg.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(cfg.MaxElapsedTime))
	}

	operation := func() (T, error) {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !cfg.shouldRetry(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	result, err := backoff.Retry(ctx, operation, opts...)
	return result, unwrapPermanent(err)
}

// unwrapPermanent strips the engine's permanent-error marker so callers
// always see the operation's own error.
func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}

// policyBackOff adapts the pure backoff policy to the engine's BackOff
// interface, counting attempts so each wait uses the right exponent.
type policyBackOff struct {
	policy  bpolicy.Policy
	attempt int
}

func (b *policyBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.policy.Delay(b.attempt)
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
}
