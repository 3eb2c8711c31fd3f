package errors

import (
	"errors"
)

// categoryForStatus maps an HTTP response status to a failure category.
func categoryForStatus(status int) Category {
	switch {
	case status == 401 || status == 403:
		return CategoryAuth
	case status == 400 || status == 422:
		return CategoryValidation
	case status == 409:
		return CategoryConflict
	case status == 404:
		return CategoryNotFound
	case status == 429:
		return CategoryRateLimit
	case status >= 500:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// HTTPStatus returns the HTTP status code carried anywhere in err's chain.
// The second return value reports whether a structured response was present.
func HTTPStatus(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
