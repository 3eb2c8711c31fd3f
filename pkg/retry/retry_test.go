package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	reserrors "github.com/talentwave/resilience/pkg/errors"
)

// TestDoSuccess verifies that Do executes exactly once when no error occurs.
func TestDoSuccess(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Millisecond,
	}

	invocations := 0
	err := Do(ctx, cfg, func() error {
		invocations++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if invocations != 1 {
		t.Errorf("expected 1 invocation, got %d", invocations)
	}
}

// TestDoZeroRetriesRunsOnce verifies that MaxRetries 0 invokes the operation
// exactly once regardless of outcome.
func TestDoZeroRetriesRunsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		MaxRetries: 0,
		BaseDelay:  1 * time.Millisecond,
	}

	serverErr := reserrors.NewHTTP(500, "boom")
	invocations := 0
	err := Do(ctx, cfg, func() error {
		invocations++
		return serverErr
	})

	if invocations != 1 {
		t.Errorf("expected 1 invocation, got %d", invocations)
	}
	if !errors.Is(err, serverErr) {
		t.Errorf("expected the operation error, got %v", err)
	}
}

// TestDoExhaustsBudget verifies that an always-failing retryable operation
// runs MaxRetries+1 times and fires the retry hook with attempt numbers in
// order.
func TestDoExhaustsBudget(t *testing.T) {
	ctx := context.Background()

	var attempts []int
	var delays []time.Duration
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		OnRetry: func(attempt, maxRetries int, delay time.Duration, err error) {
			attempts = append(attempts, attempt)
			delays = append(delays, delay)
			if maxRetries != 3 {
				t.Errorf("expected maxRetries 3 in hook, got %d", maxRetries)
			}
			if err == nil {
				t.Error("expected non-nil error in hook")
			}
		},
	}

	serverErr := reserrors.NewHTTP(503, "unavailable")
	invocations := 0
	err := Do(ctx, cfg, func() error {
		invocations++
		return serverErr
	})

	if invocations != 4 {
		t.Errorf("expected 4 invocations, got %d", invocations)
	}
	if !errors.Is(err, serverErr) {
		t.Errorf("expected the final operation error, got %v", err)
	}
	if len(attempts) != 3 || attempts[0] != 1 || attempts[1] != 2 || attempts[2] != 3 {
		t.Errorf("expected hook attempts [1 2 3], got %v", attempts)
	}
	for i, delay := range delays {
		if delay < cfg.BaseDelay || delay > cfg.MaxDelay {
			t.Errorf("hook delay %d = %v outside [%v, %v]", i, delay, cfg.BaseDelay, cfg.MaxDelay)
		}
	}
}

// TestDoStopsOnNonRetryable verifies that a validation failure runs once and
// propagates unchanged.
func TestDoStopsOnNonRetryable(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		MaxRetries: 5,
		BaseDelay:  1 * time.Millisecond,
	}

	validationErr := reserrors.NewHTTP(422, "email is invalid")
	invocations := 0
	err := Do(ctx, cfg, func() error {
		invocations++
		return validationErr
	})

	if invocations != 1 {
		t.Errorf("expected 1 invocation, got %d", invocations)
	}
	if !errors.Is(err, validationErr) {
		t.Errorf("expected the validation error unchanged, got %v", err)
	}
	httpErr, ok := reserrors.AsHTTP(err)
	if !ok || httpErr.StatusCode != 422 {
		t.Errorf("expected HTTPError 422 to survive, got %v", err)
	}
}

// TestDoRecoversWithinBudget verifies that a transient failure resolved
// before exhaustion returns success.
func TestDoRecoversWithinBudget(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Millisecond,
	}

	invocations := 0
	err := Do(ctx, cfg, func() error {
		invocations++
		if invocations < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success after recovery, got %v", err)
	}
	if invocations != 3 {
		t.Errorf("expected 3 invocations, got %d", invocations)
	}
}

// TestDoShouldRetryOverride verifies that a caller-supplied ShouldRetry takes
// priority over classification in both directions.
func TestDoShouldRetryOverride(t *testing.T) {
	ctx := context.Background()

	// Forced stop: a retryable server failure is not retried.
	invocations := 0
	cfg := Config{
		MaxRetries:  5,
		BaseDelay:   1 * time.Millisecond,
		ShouldRetry: func(error) bool { return false },
	}
	_ = Do(ctx, cfg, func() error {
		invocations++
		return reserrors.NewHTTP(500, "boom")
	})
	if invocations != 1 {
		t.Errorf("forced stop: expected 1 invocation, got %d", invocations)
	}

	// Forced retry: a non-retryable validation failure is retried anyway.
	invocations = 0
	cfg = Config{
		MaxRetries:  2,
		BaseDelay:   1 * time.Millisecond,
		ShouldRetry: func(error) bool { return true },
	}
	_ = Do(ctx, cfg, func() error {
		invocations++
		return reserrors.NewHTTP(400, "bad request")
	})
	if invocations != 3 {
		t.Errorf("forced retry: expected 3 invocations, got %d", invocations)
	}
}

// TestDoWithDataReturnsValue verifies that DoWithData returns the operation's
// value on success.
func TestDoWithDataReturnsValue(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Millisecond,
	}

	invocations := 0
	result, err := DoWithData(ctx, cfg, func() (string, error) {
		invocations++
		if invocations < 2 {
			return "", reserrors.NewHTTP(500, "boom")
		}
		return "payroll-2026-08", nil
	})

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if result != "payroll-2026-08" {
		t.Errorf("expected result %q, got %q", "payroll-2026-08", result)
	}
}

// TestDoContextCancellation verifies that cancelling the context during the
// backoff wait stops retrying and returns the cancellation cause.
func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		MaxRetries: 10,
		BaseDelay:  1 * time.Hour, // long wait so cancellation interrupts it
	}

	invocations := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, cfg, func() error {
			invocations++
			return reserrors.NewHTTP(500, "boom")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}

	if invocations != 1 {
		t.Errorf("expected 1 invocation before cancellation, got %d", invocations)
	}
}
