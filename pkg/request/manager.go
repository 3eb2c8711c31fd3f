// Package request owns the lifecycle of a logical in-flight operation:
// single-flight execution, cancellation, retry-of-last-request, and a
// state surface the presentation layer can observe.
//
// Each Manager holds at most one active operation. Calling Execute again
// supersedes the previous operation: its generation token is invalidated,
// its context is cancelled so the transport aborts the in-flight I/O, and
// whatever it eventually resolves to is discarded entirely. This makes the
// "last call wins" race explicit instead of relying on resolution order.
//
// Example usage:
//
//	mgr := request.New(request.Config[[]Employee]{
//		Retry: retry.Config{MaxRetries: 3, BaseDelay: time.Second},
//		OnChange: func(s request.State[[]Employee]) {
//			render(s)
//		},
//	})
//
//	employees, err := mgr.Execute(ctx, func(ctx context.Context) ([]Employee, error) {
//		return api.ListEmployees(ctx)
//	})
package request

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/talentwave/resilience/pkg/errors"
	"github.com/talentwave/resilience/pkg/logging"
	"github.com/talentwave/resilience/pkg/metrics"
	"github.com/talentwave/resilience/pkg/retry"
)

var (
	// ErrSuperseded is the cancellation cause and return value of an
	// operation displaced by a newer Execute call.
	ErrSuperseded = errors.New("request superseded by a newer call")

	// ErrCanceled is the cancellation cause of an operation stopped by
	// Cancel or Reset.
	ErrCanceled = errors.New("request canceled")

	// ErrNoOperation is returned by Retry when nothing has been executed
	// yet.
	ErrNoOperation = errors.New("no operation to retry")
)

// Operation is a deferred unit of work producing either a value or a
// failure. The context it receives is cancelled when the operation is
// superseded or cancelled, and must be passed down to the transport.
type Operation[T any] func(ctx context.Context) (T, error)

// State is the observable surface of a manager, updated on every change
// and pushed to the OnChange observer.
type State[T any] struct {
	// Loading is true while an operation is in flight.
	Loading bool

	// Data is the most recent successful result. It is retained while a
	// newer operation is loading and when one fails, so stale content can
	// stay visible under an error banner.
	Data T

	// HasData reports whether Data has ever been populated.
	HasData bool

	// Err is the terminal failure of the most recent operation, nil after
	// success. Cancelled and superseded operations never set it.
	Err error

	// Category is the classified category of Err, empty when Err is nil.
	Category errors.Category

	// RetryCount is the number of retries the current or most recent
	// operation has used.
	RetryCount int

	// IsRetrying is true while the executor is waiting out a backoff delay.
	IsRetrying bool

	// RetryMessage is a human-readable description of the pending retry,
	// empty outside retries.
	RetryMessage string

	// CanRetry reports whether Err is retryable, driving the retry
	// affordance.
	CanRetry bool
}

// Config configures a Manager.
type Config[T any] struct {
	// Retry is the executor configuration applied to every Execute call
	// (unless disabled per call) and to Retry.
	Retry retry.Config

	// OnChange is notified with a snapshot after every state change.
	OnChange func(State[T])

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger
}

// Manager runs at most one logical operation at a time.
type Manager[T any] struct {
	cfg    Config[T]
	logger *logging.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelCauseFunc
	lastOp     Operation[T]
	state      State[T]
}

// New creates a Manager with the provided configuration.
func New[T any](cfg Config[T]) *Manager[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager[T]{
		cfg:    cfg,
		logger: logger.WithComponent("request"),
	}
}

// Execute runs op as the manager's current operation, superseding any prior
// one. It returns op's value, its terminal error, or ErrSuperseded when a
// newer Execute displaced it before completion.
func (m *Manager[T]) Execute(ctx context.Context, op Operation[T], opts ...Option) (T, error) {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}
	return m.run(ctx, op, call)
}

// Retry re-invokes the most recently attempted operation with retrying
// forced on: the configured retry budget applies even if the original call
// disabled retries.
func (m *Manager[T]) Retry(ctx context.Context) (T, error) {
	m.mu.Lock()
	op := m.lastOp
	m.mu.Unlock()

	if op == nil {
		var zero T
		return zero, ErrNoOperation
	}
	return m.run(ctx, op, callOptions{})
}

// Cancel invalidates the current operation: its token is superseded and its
// context cancelled so the transport aborts the I/O. Only the loading and
// retrying flags are cleared; data and error are left untouched, and a late
// completion of the cancelled operation changes nothing.
func (m *Manager[T]) Cancel() {
	m.mu.Lock()
	m.generation++
	if m.cancel != nil {
		m.cancel(ErrCanceled)
		m.cancel = nil
	}
	m.state.Loading = false
	m.state.IsRetrying = false
	m.state.RetryMessage = ""
	m.notifyLocked()
}

// Reset cancels any in-flight operation and clears the whole state surface,
// including the remembered operation.
func (m *Manager[T]) Reset() {
	m.mu.Lock()
	m.generation++
	if m.cancel != nil {
		m.cancel(ErrCanceled)
		m.cancel = nil
	}
	m.lastOp = nil
	m.state = State[T]{}
	m.notifyLocked()
}

// State returns a snapshot of the observable surface.
func (m *Manager[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// run executes op under a fresh generation token.
func (m *Manager[T]) run(ctx context.Context, op Operation[T], call callOptions) (T, error) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	if m.cancel != nil {
		m.cancel(ErrSuperseded)
		metrics.RecordSupersession()
		m.logger.Debug().Uint64(logging.Generation, gen).Msg("superseding in-flight operation")
	}
	opCtx, cancel := context.WithCancelCause(ctx)
	m.cancel = cancel
	m.lastOp = op

	m.state.Loading = true
	m.state.Err = nil
	m.state.Category = ""
	m.state.RetryCount = 0
	m.state.IsRetrying = false
	m.state.RetryMessage = ""
	m.state.CanRetry = false
	m.notifyLocked()

	defer cancel(nil)

	rcfg := m.retryConfig(gen, call)
	result, err := retry.DoWithData(opCtx, rcfg, func() (T, error) {
		return op(opCtx)
	})

	m.mu.Lock()
	if gen != m.generation {
		// Another call owns the state now; discard this outcome entirely.
		m.mu.Unlock()
		var zero T
		if cause := context.Cause(opCtx); errors.Is(cause, ErrCanceled) {
			return zero, ErrCanceled
		}
		return zero, ErrSuperseded
	}
	m.cancel = nil

	if err != nil {
		category := errors.Classify(err)
		m.state.Loading = false
		m.state.IsRetrying = false
		m.state.RetryMessage = ""
		m.state.Err = err
		m.state.Category = category
		m.state.CanRetry = errors.IsRetryable(category)
		m.notifyLocked()

		if errors.IsRetryable(category) && rcfg.MaxRetries > 0 {
			metrics.RecordRetryExhaustion(string(category))
		}
		m.logger.Warn().
			Uint64(logging.Generation, gen).
			Str(logging.Category, string(category)).
			Err(err).
			Msg("operation failed")

		var zero T
		return zero, err
	}

	m.state.Loading = false
	m.state.IsRetrying = false
	m.state.RetryMessage = ""
	m.state.Data = result
	m.state.HasData = true
	m.notifyLocked()
	return result, nil
}

// retryConfig builds the per-call executor configuration, chaining the
// manager's state bookkeeping in front of any configured OnRetry hook.
func (m *Manager[T]) retryConfig(gen uint64, call callOptions) retry.Config {
	rcfg := m.cfg.Retry
	if call.retryDisabled {
		rcfg.MaxRetries = 0
	}
	if call.shouldRetry != nil {
		rcfg.ShouldRetry = call.shouldRetry
	}

	userOnRetry := rcfg.OnRetry
	rcfg.OnRetry = func(attempt, maxRetries int, delay time.Duration, err error) {
		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			return
		}
		m.state.IsRetrying = true
		m.state.RetryCount = attempt
		m.state.RetryMessage = retryMessage(attempt, maxRetries, delay)
		m.notifyLocked()

		metrics.RecordRetryAttempt(string(errors.Classify(err)))
		metrics.ObserveBackoffDelay(delay.Seconds())
		m.logger.Debug().
			Uint64(logging.Generation, gen).
			Int(logging.Attempt, attempt).
			Int(logging.MaxRetries, maxRetries).
			Dur(logging.Delay, delay).
			Msg("retrying operation")

		if userOnRetry != nil {
			userOnRetry(attempt, maxRetries, delay, err)
		}
	}
	return rcfg
}

// retryMessage builds the human-readable retry text. It never includes raw
// status codes or transport error codes.
func retryMessage(attempt, maxRetries int, delay time.Duration) string {
	return fmt.Sprintf("Retrying in %s (attempt %d of %d)...", delay.Round(time.Second), attempt, maxRetries)
}

// notifyLocked releases the lock and delivers a snapshot to the observer,
// so a callback reading the manager cannot deadlock.
func (m *Manager[T]) notifyLocked() {
	snapshot := m.state
	m.mu.Unlock()
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(snapshot)
	}
}
