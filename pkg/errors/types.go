package errors

import (
	"errors"
)

// As is a re-export of errors.As for convenient access in error handling code.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a re-export of errors.Is for convenient access in error handling code.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// New is a re-export of errors.New.
func New(text string) error {
	return errors.New(text)
}

// IsHTTP checks if an error is or wraps a structured HTTP failure.
func IsHTTP(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTP extracts the structured HTTP failure from an error chain.
func AsHTTP(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsRetryableError reports whether err classifies into a retryable category.
func IsRetryableError(err error) bool {
	return IsRetryable(Classify(err))
}

// IsNetwork checks if an error classifies as a connectivity failure.
func IsNetwork(err error) bool {
	return Classify(err) == CategoryNetwork
}

// IsTimeout checks if an error classifies as an abort or deadline failure.
func IsTimeout(err error) bool {
	return Classify(err) == CategoryTimeout
}

// IsAuth checks if an error classifies as an authentication failure.
func IsAuth(err error) bool {
	return Classify(err) == CategoryAuth
}

// IsValidation checks if an error classifies as a validation failure.
func IsValidation(err error) bool {
	return Classify(err) == CategoryValidation
}

// IsConflict checks if an error classifies as a conflict.
func IsConflict(err error) bool {
	return Classify(err) == CategoryConflict
}

// IsNotFound checks if an error classifies as a missing resource.
func IsNotFound(err error) bool {
	return Classify(err) == CategoryNotFound
}

// IsRateLimit checks if an error classifies as a throttled request.
func IsRateLimit(err error) bool {
	return Classify(err) == CategoryRateLimit
}

// IsServer checks if an error classifies as a server-side failure.
func IsServer(err error) bool {
	return Classify(err) == CategoryServer
}
