package errors

import (
	"fmt"
	"runtime/debug"
)

// RecoveryFunc is a function that converts a recovered panic value into an error.
type RecoveryFunc func(interface{}) error

// Recovered converts a recovered panic value into an error carrying the stack
// trace. The result classifies as UNKNOWN, so a panicking task is reported
// like any other non-retryable failure instead of tearing its host down.
func Recovered(p interface{}) error {
	return fmt.Errorf("panic recovered: %v\nstack trace:\n%s", p, debug.Stack())
}

// DefaultRecoveryFunc is the RecoveryFunc used when none is injected.
func DefaultRecoveryFunc(p interface{}) error {
	return Recovered(p)
}
