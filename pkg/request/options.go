package request

// callOptions holds per-call overrides for a single Execute invocation.
type callOptions struct {
	retryDisabled bool
	shouldRetry   func(error) bool
}

// Option customizes a single Execute call.
type Option func(*callOptions)

// WithRetryDisabled makes the call run its operation exactly once. A later
// Retry still applies the manager's configured budget.
func WithRetryDisabled() Option {
	return func(o *callOptions) {
		o.retryDisabled = true
	}
}

// WithShouldRetry overrides the retryability decision for this call only.
func WithShouldRetry(fn func(error) bool) Option {
	return func(o *callOptions) {
		o.shouldRetry = fn
	}
}
