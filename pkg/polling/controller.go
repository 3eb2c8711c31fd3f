// Package polling runs a task on a fixed interval, gated by host
// visibility: scheduling pauses while the host is backgrounded and the
// controller catches up with one immediate run when the host becomes
// visible again.
//
// Task failures are non-fatal to the schedule. Each outcome is delivered to
// the OnResult side-channel and counted in Status; the next run happens
// regardless, so a dashboard degrades to stale data instead of going dark.
//
// Example usage:
//
//	ctrl, err := polling.New(polling.Config{
//		Interval: 30 * time.Second,
//		Task: func(ctx context.Context) error {
//			return refreshDashboard(ctx)
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctrl.Start()
//	defer ctrl.Stop()
package polling

import (
	"context"
	"sync"
	"time"

	"github.com/talentwave/resilience/pkg/errors"
	"github.com/talentwave/resilience/pkg/logging"
	"github.com/talentwave/resilience/pkg/metrics"
)

// Task is the unit of work invoked on every poll. The context is cancelled
// when the controller stops.
type Task func(ctx context.Context) error

// Config configures a Controller.
type Config struct {
	// Interval is the period between runs. Default: 30 seconds.
	Interval time.Duration

	// Task is the work to run. Required.
	Task Task

	// Clock abstracts timers for deterministic tests.
	// Default: the real clock.
	Clock Clock

	// Visibility gates scheduling. Default: always visible.
	Visibility VisibilitySource

	// OnResult receives the outcome of every run, nil on success. Optional.
	OnResult func(error)

	// Logger is optional; a no-op logger is used when nil.
	Logger *logging.Logger
}

// Status is the controller's observable side-channel.
type Status struct {
	// Running reports whether the schedule is active.
	Running bool

	// LastRun is when the task last started, zero before the first run.
	LastRun time.Time

	// LastErr is the outcome of the most recent run, nil on success.
	LastErr error

	// Runs counts task invocations since the controller was created.
	Runs uint64

	// Failures counts runs that returned an error or panicked.
	Failures uint64
}

// Controller owns one polling schedule. At most one loop goroutine and one
// timer are alive per instance; Start while running is a no-op and Stop is
// idempotent.
type Controller struct {
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	lastRun  time.Time
	lastErr  error
	runs     uint64
	failures uint64
}

// New creates a Controller with the provided configuration.
func New(cfg Config) (*Controller, error) {
	if cfg.Task == nil {
		return nil, errors.New("polling: task is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock()
	}
	if cfg.Visibility == nil {
		cfg.Visibility = AlwaysVisible()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{
		cfg:    cfg,
		logger: logger.WithComponent("polling"),
	}, nil
}

// Start begins the schedule. The first run happens one interval after Start;
// calling Start while already running is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true

	// Arm the timer and register the visibility watch before the loop
	// goroutine exists, so a Start that returns means the schedule is live.
	timer := c.cfg.Clock.NewTimer(c.cfg.Interval)
	changes := c.cfg.Visibility.Watch(ctx)
	visible := c.cfg.Visibility.Visible()

	c.wg.Add(1)
	go c.loop(ctx, timer, changes, visible)

	c.logger.Info().Dur(logging.Interval, c.cfg.Interval).Msg("polling started")
}

// Stop cancels the schedule and waits for the loop to exit. No task
// invocation occurs after Stop returns. It is safe to call repeatedly, and
// the controller may be started again afterwards.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info().Msg("polling stopped")
}

// Status returns a snapshot of the side-channel.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:  c.running,
		LastRun:  c.lastRun,
		LastErr:  c.lastErr,
		Runs:     c.runs,
		Failures: c.failures,
	}
}

// loop is the single schedule goroutine: one timer slot, re-armed after
// every fire, with runs skipped while the host is hidden.
func (c *Controller) loop(ctx context.Context, timer Timer, changes <-chan bool, visible bool) {
	defer c.wg.Done()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case v, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if v && !visible {
				// Hidden-to-visible edge: catch up immediately and measure
				// the next interval from this run.
				visible = true
				timer.Reset(c.cfg.Interval)
				c.runTask(ctx)
			} else if !v {
				visible = false
			}

		case <-timer.C():
			timer.Reset(c.cfg.Interval)
			if visible {
				c.runTask(ctx)
			}
		}
	}
}

// runTask invokes the task once, containing panics and recording the
// outcome. A failure never stops the schedule.
func (c *Controller) runTask(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := c.cfg.Clock.Now()
	err := c.invoke(ctx)

	c.mu.Lock()
	c.lastRun = started
	c.lastErr = err
	c.runs++
	if err != nil {
		c.failures++
	}
	c.mu.Unlock()

	metrics.RecordPollRun()
	if err != nil {
		metrics.RecordPollFailure()
		c.logger.Warn().Err(err).Msg("poll failed")
	}

	if c.cfg.OnResult != nil {
		c.cfg.OnResult(err)
	}
}

// invoke runs the task with panic containment.
func (c *Controller) invoke(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Recovered(p)
		}
	}()
	return c.cfg.Task(ctx)
}
