package polling

import (
	"context"
	"sync"
)

// VisibilitySource reports whether the host is in the foreground. The
// controller pauses scheduling while the host is hidden and runs an
// immediate catch-up poll on the hidden-to-visible edge.
type VisibilitySource interface {
	// Visible returns the current visibility.
	Visible() bool

	// Watch returns a channel delivering visibility changes until ctx is
	// done. A nil channel means the source never changes.
	Watch(ctx context.Context) <-chan bool
}

// AlwaysVisible returns a VisibilitySource for hosts with no background
// state, such as servers and CLIs.
func AlwaysVisible() VisibilitySource {
	return staticVisibility{}
}

type staticVisibility struct{}

func (staticVisibility) Visible() bool { return true }

func (staticVisibility) Watch(ctx context.Context) <-chan bool { return nil }

// ManualVisibility is a VisibilitySource driven by Set calls, for embedding
// hosts that receive foreground/background signals and for deterministic
// tests.
type ManualVisibility struct {
	mu       sync.Mutex
	visible  bool
	watchers []chan bool
}

// NewManualVisibility creates a ManualVisibility with the given initial
// state.
func NewManualVisibility(visible bool) *ManualVisibility {
	return &ManualVisibility{visible: visible}
}

// Visible returns the current visibility.
func (v *ManualVisibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Set updates the visibility and notifies all watchers. Setting the current
// value again is a no-op.
func (v *ManualVisibility) Set(visible bool) {
	v.mu.Lock()
	if v.visible == visible {
		v.mu.Unlock()
		return
	}
	v.visible = visible
	watchers := make([]chan bool, len(v.watchers))
	copy(watchers, v.watchers)
	v.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- visible:
		default:
			// A watcher that is not draining loses intermediate edges; the
			// latest state remains available via Visible.
		}
	}
}

// Watch returns a channel delivering visibility changes until ctx is done.
func (v *ManualVisibility) Watch(ctx context.Context) <-chan bool {
	ch := make(chan bool, 16)
	v.mu.Lock()
	v.watchers = append(v.watchers, ch)
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		for i, w := range v.watchers {
			if w == ch {
				v.watchers = append(v.watchers[:i], v.watchers[i+1:]...)
				break
			}
		}
		v.mu.Unlock()
	}()

	return ch
}
