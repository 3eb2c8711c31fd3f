package retry

import (
	"sync"
	"time"

	"github.com/talentwave/resilience/pkg/errors"
)

// Status is the presentation-facing phase of the retry cycle.
type Status string

const (
	// StatusIdle means no retryable failure is pending.
	StatusIdle Status = "idle"

	// StatusReady means a retryable failure occurred and a retry can be
	// invoked.
	StatusReady Status = "ready"

	// StatusRetrying means a retry has been invoked and its backoff delay
	// is counting down.
	StatusRetrying Status = "retrying"

	// StatusExhausted means the retry budget is spent; only Reset leaves
	// this state.
	StatusExhausted Status = "exhausted"
)

// Attempt is one entry in the append-only retry history, kept for
// observability only.
type Attempt struct {
	// Number is the 1-based retry number.
	Number int

	// Delay is the backoff delay awaited before this retry.
	Delay time.Duration

	// Timestamp is when the retry was invoked.
	Timestamp time.Time

	// Err is the failure that triggered the retry.
	Err error
}

// State is a snapshot of the machine, safe to hand to presentation code.
type State struct {
	Status      Status
	RetryCount  int
	MaxRetries  int
	NextRetryAt time.Time
}

// MachineConfig configures a retry state machine.
type MachineConfig struct {
	// MaxRetries is the retry budget mirrored by the machine. It should
	// match the executor's budget so exhaustion lines up.
	MaxRetries int

	// Auto advances ready to retrying without user action, still bounded
	// by MaxRetries.
	Auto bool

	// OnChange is notified with a snapshot after every transition.
	OnChange func(State)

	// Now overrides the time source for deterministic tests.
	Now func() time.Time
}

// Machine mirrors retry progress for presentation: it drives the
// retry/countdown affordance while the executor owns the actual waiting.
// Callers feed it the executor's delay values so the countdown shown is
// derived from the delay actually awaited, never recomputed.
type Machine struct {
	cfg MachineConfig

	mu           sync.Mutex
	status       Status
	retryCount   int
	pendingDelay time.Duration
	nextRetryAt  time.Time
	lastErr      error
	history      []Attempt
}

// NewMachine creates a retry state machine in the idle state.
func NewMachine(cfg MachineConfig) *Machine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Machine{
		cfg:    cfg,
		status: StatusIdle,
	}
}

// Fail records a failed attempt together with the backoff delay the executor
// computed for it. A retryable failure moves the machine to ready (or
// straight to retrying in auto mode) while budget remains, and to exhausted
// exactly when the failure arrives with RetryCount == MaxRetries. A
// non-retryable failure returns the machine to idle: no retry affordance is
// offered for failures the caller must fix first.
func (m *Machine) Fail(err error, delay time.Duration) {
	m.mu.Lock()

	if !errors.IsRetryable(errors.Classify(err)) {
		m.status = StatusIdle
		m.pendingDelay = 0
		m.nextRetryAt = time.Time{}
		m.lastErr = err
		m.notifyLocked()
		return
	}

	m.lastErr = err
	if m.retryCount >= m.cfg.MaxRetries {
		m.status = StatusExhausted
		m.pendingDelay = 0
		m.nextRetryAt = time.Time{}
		m.notifyLocked()
		return
	}

	m.status = StatusReady
	m.pendingDelay = delay
	m.nextRetryAt = time.Time{}

	if m.cfg.Auto {
		m.retryLocked()
	}
	m.notifyLocked()
}

// Retry moves the machine from ready to retrying, consuming one unit of the
// retry budget and starting the countdown. It reports whether the
// transition happened; in any other state, exhausted included, it does
// nothing and returns false.
func (m *Machine) Retry() bool {
	m.mu.Lock()
	if m.status != StatusReady {
		m.mu.Unlock()
		return false
	}
	m.retryLocked()
	m.notifyLocked()
	return true
}

// retryLocked performs the ready -> retrying transition. Callers hold mu.
func (m *Machine) retryLocked() {
	now := m.cfg.Now()
	m.retryCount++
	m.status = StatusRetrying
	m.nextRetryAt = now.Add(m.pendingDelay)
	m.history = append(m.history, Attempt{
		Number:    m.retryCount,
		Delay:     m.pendingDelay,
		Timestamp: now,
		Err:       m.lastErr,
	})
}

// Succeed moves the machine from retrying back to idle. The retry count is
// preserved until Reset so the presentation can report how many retries the
// success took.
func (m *Machine) Succeed() {
	m.mu.Lock()
	if m.status != StatusRetrying {
		m.mu.Unlock()
		return
	}
	m.status = StatusIdle
	m.pendingDelay = 0
	m.nextRetryAt = time.Time{}
	m.notifyLocked()
}

// Reset returns the machine to idle from any state, clearing the retry
// count, the countdown, and the history. It is the only way out of
// exhausted.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.status = StatusIdle
	m.retryCount = 0
	m.pendingDelay = 0
	m.nextRetryAt = time.Time{}
	m.lastErr = nil
	m.history = nil
	m.notifyLocked()
}

// State returns a snapshot of the machine.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Remaining returns the time left on the countdown while retrying, and 0 in
// every other state. It is informational only; the executor owns the actual
// wait.
func (m *Machine) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusRetrying {
		return 0
	}
	remaining := m.nextRetryAt.Sub(m.cfg.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// History returns a copy of the append-only attempt log.
func (m *Machine) History() []Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]Attempt, len(m.history))
	copy(history, m.history)
	return history
}

func (m *Machine) stateLocked() State {
	return State{
		Status:      m.status,
		RetryCount:  m.retryCount,
		MaxRetries:  m.cfg.MaxRetries,
		NextRetryAt: m.nextRetryAt,
	}
}

// notifyLocked releases mu and delivers the snapshot to the observer, so a
// callback re-entering the machine cannot deadlock.
func (m *Machine) notifyLocked() {
	snapshot := m.stateLocked()
	m.mu.Unlock()
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(snapshot)
	}
}
