package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	reserrors "github.com/talentwave/resilience/pkg/errors"
	"github.com/talentwave/resilience/pkg/retry"
)

// quickRetry is a retry config with delays short enough for tests.
func quickRetry(maxRetries int) retry.Config {
	return retry.Config{
		MaxRetries: maxRetries,
		BaseDelay:  1 * time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

// TestExecuteSuccess verifies that a successful operation populates data and
// clears error state.
func TestExecuteSuccess(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(3)})

	result, err := mgr.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return "employees", nil
	})

	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result != "employees" {
		t.Errorf("result = %q, want %q", result, "employees")
	}

	state := mgr.State()
	if state.Loading {
		t.Error("Loading still true after completion")
	}
	if !state.HasData || state.Data != "employees" {
		t.Errorf("state data = %q (HasData %v), want %q", state.Data, state.HasData, "employees")
	}
	if state.Err != nil || state.CanRetry {
		t.Errorf("error fields not cleared: %+v", state)
	}
}

// TestExecuteFailure verifies the state surface after a terminal failure,
// including retention of previously loaded data.
func TestExecuteFailure(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(0)})
	ctx := context.Background()

	if _, err := mgr.Execute(ctx, func(ctx context.Context) (string, error) {
		return "payroll", nil
	}); err != nil {
		t.Fatalf("seed Execute failed: %v", err)
	}

	serverErr := reserrors.NewHTTP(500, "boom")
	_, err := mgr.Execute(ctx, func(ctx context.Context) (string, error) {
		return "", serverErr
	})
	if !errors.Is(err, serverErr) {
		t.Fatalf("Execute error = %v, want the operation error", err)
	}

	state := mgr.State()
	if state.Err == nil || state.Category != reserrors.CategoryServer {
		t.Errorf("state error = %v (%v), want SERVER failure", state.Err, state.Category)
	}
	if !state.CanRetry {
		t.Error("CanRetry false for a retryable failure")
	}
	if !state.HasData || state.Data != "payroll" {
		t.Errorf("previous data not retained: %+v", state)
	}
}

// TestExecuteNonRetryableFailure verifies that a validation failure offers no
// retry affordance.
func TestExecuteNonRetryableFailure(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(3)})

	invocations := 0
	_, err := mgr.Execute(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		return "", reserrors.NewHTTP(422, "email is invalid")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if invocations != 1 {
		t.Errorf("validation failure invoked %d times, want 1", invocations)
	}

	state := mgr.State()
	if state.Category != reserrors.CategoryValidation {
		t.Errorf("Category = %v, want VALIDATION", state.Category)
	}
	if state.CanRetry {
		t.Error("CanRetry true for a non-retryable failure")
	}
}

// TestExecuteSupersession verifies that when the first of two rapid calls
// completes last, the final state reflects only the second call.
func TestExecuteSupersession(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(0)})
	ctx := context.Background()

	firstBlocked := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		_, err := mgr.Execute(ctx, func(ctx context.Context) (string, error) {
			close(firstBlocked)
			<-release
			return "first", nil
		})
		firstDone <- err
	}()

	<-firstBlocked
	result, err := mgr.Execute(ctx, func(ctx context.Context) (string, error) {
		return "second", nil
	})
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if result != "second" {
		t.Errorf("second result = %q", result)
	}

	// Let the first call finish after the second already won.
	close(release)
	select {
	case err := <-firstDone:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("first Execute error = %v, want ErrSuperseded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Execute did not return")
	}

	state := mgr.State()
	if state.Data != "second" {
		t.Errorf("final data = %q, want %q", state.Data, "second")
	}
	if state.Err != nil {
		t.Errorf("final error = %v, want nil", state.Err)
	}
}

// TestCancelIgnoresLateCompletion verifies that a cancelled operation's late
// failure produces zero state change.
func TestCancelIgnoresLateCompletion(t *testing.T) {
	var mu sync.Mutex
	var observed []State[string]
	mgr := New(Config[string]{
		Retry: quickRetry(0),
		OnChange: func(s State[string]) {
			mu.Lock()
			observed = append(observed, s)
			mu.Unlock()
		},
	})
	ctx := context.Background()

	blocked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := mgr.Execute(ctx, func(ctx context.Context) (string, error) {
			close(blocked)
			<-release
			return "", reserrors.NewHTTP(500, "late failure")
		})
		done <- err
	}()

	<-blocked
	mgr.Cancel()
	after := mgr.State()

	close(release)
	select {
	case err := <-done:
		if !errors.Is(err, ErrCanceled) {
			t.Errorf("Execute error = %v, want ErrCanceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not return after cancel")
	}

	state := mgr.State()
	if state != after {
		t.Errorf("state changed after late completion: %+v -> %+v", after, state)
	}
	if state.Err != nil {
		t.Errorf("cancelled operation set error: %v", state.Err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, s := range observed {
		if s.Err != nil {
			t.Errorf("observer saw an error from a cancelled operation: %v", s.Err)
		}
	}
}

// TestCancelAbortsOperationContext verifies that cancellation signals the
// in-flight operation's context, not just discards its result.
func TestCancelAbortsOperationContext(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(0)})

	blocked := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := mgr.Execute(context.Background(), func(ctx context.Context) (string, error) {
			close(blocked)
			<-ctx.Done()
			return "", context.Cause(ctx)
		})
		done <- err
	}()

	<-blocked
	mgr.Cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation context was not cancelled")
	}
}

// TestRetryForcesBudgetOn verifies that Retry re-runs the last operation with
// the configured retry budget even when the original call disabled retries.
func TestRetryForcesBudgetOn(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(2)})
	ctx := context.Background()

	invocations := 0
	op := func(ctx context.Context) (string, error) {
		invocations++
		if invocations < 3 {
			return "", reserrors.NewHTTP(500, "boom")
		}
		return "recovered", nil
	}

	if _, err := mgr.Execute(ctx, op, WithRetryDisabled()); err == nil {
		t.Fatal("expected the single-attempt call to fail")
	}
	if invocations != 1 {
		t.Fatalf("WithRetryDisabled ran %d times, want 1", invocations)
	}

	result, err := mgr.Retry(ctx)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if result != "recovered" {
		t.Errorf("Retry result = %q, want %q", result, "recovered")
	}
	if invocations != 3 {
		t.Errorf("total invocations = %d, want 3", invocations)
	}
}

// TestRetryWithoutOperation verifies the error when nothing has run yet.
func TestRetryWithoutOperation(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(1)})
	if _, err := mgr.Retry(context.Background()); !errors.Is(err, ErrNoOperation) {
		t.Errorf("Retry error = %v, want ErrNoOperation", err)
	}
}

// TestRetryProgressSurfaced verifies that retry progress reaches the state
// surface and the observer while the executor waits.
func TestRetryProgressSurfaced(t *testing.T) {
	var mu sync.Mutex
	sawRetrying := false
	mgr := New(Config[string]{
		Retry: quickRetry(2),
		OnChange: func(s State[string]) {
			mu.Lock()
			if s.IsRetrying && s.RetryCount >= 1 && s.RetryMessage != "" {
				sawRetrying = true
			}
			mu.Unlock()
		},
	})

	invocations := 0
	result, err := mgr.Execute(context.Background(), func(ctx context.Context) (string, error) {
		invocations++
		if invocations == 1 {
			return "", reserrors.NewHTTP(500, "boom")
		}
		return "ok", nil
	})
	if err != nil || result != "ok" {
		t.Fatalf("Execute = %q, %v", result, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !sawRetrying {
		t.Error("observer never saw a retrying snapshot")
	}
}

// TestReset verifies that Reset clears the whole state surface and the
// remembered operation.
func TestReset(t *testing.T) {
	mgr := New(Config[string]{Retry: quickRetry(0)})
	ctx := context.Background()

	_, _ = mgr.Execute(ctx, func(ctx context.Context) (string, error) {
		return "", reserrors.NewHTTP(500, "boom")
	})

	mgr.Reset()
	state := mgr.State()
	if state.HasData || state.Err != nil || state.Loading || state.CanRetry || state.RetryCount != 0 {
		t.Errorf("state not cleared by Reset: %+v", state)
	}
	if _, err := mgr.Retry(ctx); !errors.Is(err, ErrNoOperation) {
		t.Errorf("Retry after Reset = %v, want ErrNoOperation", err)
	}
}
