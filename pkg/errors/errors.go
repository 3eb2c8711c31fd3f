// Package errors provides failure classification for the resilience layer.
// It maps transport failures (connection errors, timeouts, structured HTTP
// responses, gRPC status errors) onto a fixed set of categories that drive
// retry decisions and user-facing messaging across all components.
//
// Example usage:
//
//	if err := client.Get(ctx, "/api/employees").Do(); err != nil {
//	    if errors.IsRetryable(errors.Classify(err)) {
//	        return retryLater(err)
//	    }
//	    banner.Show(errors.Message(err))
//	}
package errors

import (
	"fmt"
	"time"
)

// Category identifies the kind of failure a transport error represents.
type Category string

const (
	// CategoryNetwork is a connectivity failure: the server was never reached.
	CategoryNetwork Category = "NETWORK"

	// CategoryTimeout is an aborted or deadline-exceeded request.
	CategoryTimeout Category = "TIMEOUT"

	// CategoryAuth is an authentication or authorization rejection (401, 403).
	CategoryAuth Category = "AUTH"

	// CategoryValidation is a rejected payload (400, 422).
	CategoryValidation Category = "VALIDATION"

	// CategoryConflict is a concurrent-modification rejection (409).
	CategoryConflict Category = "CONFLICT"

	// CategoryNotFound is a missing resource (404).
	CategoryNotFound Category = "NOT_FOUND"

	// CategoryRateLimit is a throttled request (429).
	CategoryRateLimit Category = "RATE_LIMIT"

	// CategoryServer is a server-side failure (5xx).
	CategoryServer Category = "SERVER"

	// CategoryUnknown is any failure the classifier cannot place.
	CategoryUnknown Category = "UNKNOWN"
)

// Severity is the presentation weight of a failure category.
type Severity string

const (
	// SeverityNetwork renders as a connectivity banner rather than an error.
	SeverityNetwork Severity = "network"

	// SeverityWarning renders as a correctable warning (validation failures).
	SeverityWarning Severity = "warning"

	// SeverityError renders as a hard error.
	SeverityError Severity = "error"
)

// HTTPError is a structured transport failure: the server was reached and
// answered with a non-success status. The transport adapter builds one from
// the response status and the parsed error body; the classifier and the
// message/field derivations read from it.
type HTTPError struct {
	// StatusCode is the HTTP response status.
	StatusCode int

	// Status is the response status line text (e.g. "422 Unprocessable Entity").
	Status string

	// Message is the server-supplied error message, when the body carried one.
	Message string

	// Messages holds list-shaped error bodies ({"messages": [...]}).
	Messages []string

	// Fields holds field-keyed validation errors ({"errors": {"email": "..."}}).
	Fields map[string]string

	// RetryAfter is the parsed Retry-After header, zero when absent.
	// It is informational only; backoff delays are never derived from it.
	RetryAfter time.Duration
}

// NewHTTP creates a structured transport failure for the given status code.
func NewHTTP(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	if e.Status != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// ClassifiedError is the fully derived view of a failure: category, user
// message, severity, retryability, and field errors, computed once by
// NewClassified and never mutated afterwards.
type ClassifiedError struct {
	Category    Category
	Message     string
	Severity    Severity
	Retryable   bool
	StatusCode  int
	FieldErrors map[string]string

	cause error
}

// NewClassified derives a ClassifiedError from any transport failure.
// Returns nil for a nil error.
func NewClassified(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	category := Classify(err)
	statusCode, _ := HTTPStatus(err)
	return &ClassifiedError{
		Category:    category,
		Message:     Message(err),
		Severity:    SeverityOf(category),
		Retryable:   IsRetryable(category),
		StatusCode:  statusCode,
		FieldErrors: FieldErrors(err),
		cause:       err,
	}
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Category, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.cause
}
