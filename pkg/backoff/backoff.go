// Package backoff computes bounded, jittered delays between retry attempts.
//
// The policy is pure: the same inputs always stay within the same bounds, no
// state is kept between calls, and nothing is ever logged or raised. The
// retry executor adapts it to its engine; the retry state machine receives
// the resulting delay values rather than recomputing them.
//
// Example usage:
//
//	policy := backoff.Policy{
//		Base: 1 * time.Second,
//		Max:  30 * time.Second,
//	}
//
//	delay := policy.Delay(attempt)
//	time.Sleep(delay)
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// DefaultJitter is the jitter factor applied when Policy.Jitter is unset:
// up to 30% of the exponential delay is added to spread out retry storms.
const DefaultJitter = 0.3

// Policy computes the delay before a given retry attempt.
// The zero value is usable and applies the defaults (1s base, 30s cap).
type Policy struct {
	// Base is the delay before the first retry. Default is 1 second.
	Base time.Duration

	// Max caps the computed delay, jitter included. Default is 30 seconds.
	Max time.Duration

	// Jitter is the maximum fraction of the exponential delay added as
	// random jitter. 0 means DefaultJitter; negative disables jitter.
	Jitter float64

	// rnd overrides the random source for deterministic tests.
	// It must return a value in [0, 1).
	rnd func() float64
}

// Delay returns the delay before the given 1-based attempt. Values below 1
// are treated as 1. The result is non-negative, finite, never exceeds the
// cap, and for attempt 1 is never below the base delay.
func (p Policy) Delay(attempt int) time.Duration {
	base := p.Base
	if base <= 0 {
		base = 1 * time.Second
	}
	max := p.Max
	if max <= 0 {
		max = 30 * time.Second
	}
	if base > max {
		base = max
	}
	if attempt < 1 {
		attempt = 1
	}

	// exponential = base * 2^(attempt-1), saturating at the cap so large
	// attempt numbers cannot overflow.
	exponential := float64(base) * math.Pow(2, float64(attempt-1))
	if math.IsInf(exponential, 0) || exponential >= float64(max) {
		return max
	}

	jitter := p.jitterFactor() * exponential * p.random()
	delay := time.Duration(exponential + jitter)
	if delay > max || delay < 0 {
		return max
	}
	return delay
}

// jitterFactor returns the effective jitter fraction.
func (p Policy) jitterFactor() float64 {
	if p.Jitter < 0 {
		return 0
	}
	if p.Jitter == 0 {
		return DefaultJitter
	}
	return p.Jitter
}

// random returns a value in [0, 1) from the injected source, or the shared
// math/rand source when none is set.
func (p Policy) random() float64 {
	if p.rnd != nil {
		return p.rnd()
	}
	return rand.Float64()
}
