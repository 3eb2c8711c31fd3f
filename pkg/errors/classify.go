package errors

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
)

// Classify maps a transport failure to its Category. It is deterministic and
// side-effect-free: the same error always classifies the same way, nothing is
// logged, and nothing is ever raised.
//
// Structured responses (HTTPError, gRPC status) are classified by their
// status; failures without a structured response split into TIMEOUT for
// aborts and deadlines and NETWORK for unreachability. Wrapped chains are
// inspected with errors.Is/errors.As. A nil error classifies as UNKNOWN.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	// The server answered: classify by status.
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return categoryForStatus(httpErr.StatusCode)
	}
	if category, ok := grpcCategory(err); ok {
		return category
	}

	// No structured response. Aborts and deadlines before net.Error: a
	// *url.Error wrapping context.Canceled reports Timeout() == false and
	// would otherwise land in NETWORK.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}
	// A connection dropped mid-response surfaces as a bare EOF.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return CategoryNetwork
	}

	return CategoryUnknown
}

// IsRetryable reports whether failures of the given category are worth
// retrying. Transient categories (NETWORK, TIMEOUT, SERVER, RATE_LIMIT)
// are; everything the caller must fix first is not.
func IsRetryable(category Category) bool {
	switch category {
	case CategoryNetwork, CategoryTimeout, CategoryServer, CategoryRateLimit:
		return true
	default:
		return false
	}
}

// SeverityOf returns the presentation weight for a category.
func SeverityOf(category Category) Severity {
	switch category {
	case CategoryNetwork, CategoryTimeout:
		return SeverityNetwork
	case CategoryValidation:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Message derives the user-facing text for a failure. For AUTH, VALIDATION,
// CONFLICT, and NOT_FOUND a server-supplied message wins when the response
// carried one; every other category uses its template. The produced text
// never contains raw status codes or transport error codes.
func Message(err error) string {
	category := Classify(err)
	switch category {
	case CategoryAuth, CategoryValidation, CategoryConflict, CategoryNotFound:
		if msg := serverMessage(err); msg != "" {
			return msg
		}
	}
	return fallbackMessage(category)
}

// FieldErrors extracts per-field validation messages from a failure.
// A field-keyed body is passed through unchanged; a list-shaped body is
// joined into a single "general" entry. Returns nil when the failure
// carries neither.
func FieldErrors(err error) map[string]string {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return nil
	}
	if len(httpErr.Fields) > 0 {
		return httpErr.Fields
	}
	if len(httpErr.Messages) > 0 {
		return map[string]string{"general": strings.Join(httpErr.Messages, "; ")}
	}
	return nil
}

// serverMessage returns the message the server attached to a structured
// failure, or "" when there is none.
func serverMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	if msg, ok := grpcMessage(err); ok {
		return msg
	}
	return ""
}

func fallbackMessage(category Category) string {
	switch category {
	case CategoryNetwork:
		return "Unable to reach the server. Check your connection and try again."
	case CategoryTimeout:
		return "The request took too long to complete. Please try again."
	case CategoryAuth:
		return "Your session has expired. Please sign in again."
	case CategoryValidation:
		return "Some fields need attention before this can be saved."
	case CategoryConflict:
		return "This record was changed by someone else. Reload and try again."
	case CategoryNotFound:
		return "The requested record could not be found."
	case CategoryRateLimit:
		return "Too many requests right now. Please wait a moment and try again."
	case CategoryServer:
		return "Something went wrong on our end. Please try again shortly."
	default:
		return "Something unexpected went wrong. Please try again."
	}
}
