package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/talentwave/resilience/pkg/errors"
)

// Response wraps the resty response with structured error mapping.
type Response struct {
	resty      *resty.Response
	statusCode int
	headers    http.Header
	body       []byte
	err        error
}

// errorBody is the wire shape of server error responses. Servers send one of
// three forms: a single message, a list of messages, or field-keyed
// validation errors.
type errorBody struct {
	Message  string            `json:"message"`
	Messages []string          `json:"messages"`
	Errors   map[string]string `json:"errors"`
}

// newResponse creates a new Response from a resty response and error.
// Request-level errors (connection refused, DNS failure, context deadline)
// pass through unchanged so the classifier sees the original error. Non-2xx
// responses become a structured *errors.HTTPError.
func newResponse(resp *resty.Response, err error) (*Response, error) {
	if err != nil {
		return nil, err
	}

	// Read body if not already read
	var body []byte
	if resp.Body != nil {
		var readErr error
		body, readErr = io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, errors.Wrap(readErr, "failed to read response body")
		}
	}

	// Create response wrapper
	response := &Response{
		resty:      resp,
		statusCode: resp.StatusCode(),
		headers:    resp.Header(),
		body:       body,
	}

	if httpErr := buildHTTPError(resp, body); httpErr != nil {
		response.err = httpErr
		return response, httpErr
	}

	return response, nil
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Status returns the HTTP status string (e.g., "200 OK").
func (r *Response) Status() string {
	if r.resty != nil {
		return r.resty.Status()
	}
	return http.StatusText(r.statusCode)
}

// Headers returns all response headers.
func (r *Response) Headers() http.Header {
	return r.headers
}

// Header returns the value of a single header.
func (r *Response) Header(key string) string {
	return r.headers.Get(key)
}

// Body returns the raw response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// BodyAsString returns the response body as a string.
func (r *Response) BodyAsString() string {
	return string(r.body)
}

// BodyAsJSON unmarshals the response body into the provided struct.
func (r *Response) BodyAsJSON(dest interface{}) error {
	if r.err != nil {
		return r.err
	}

	if len(r.body) == 0 {
		return errors.New("empty response body")
	}

	if err := json.Unmarshal(r.body, dest); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON response")
	}

	return nil
}

// Error returns the error associated with this response, if any.
func (r *Response) Error() error {
	return r.err
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.statusCode >= 400
}

// buildHTTPError maps a non-success response to a structured transport
// failure. Returns nil for 2xx and 3xx statuses.
func buildHTTPError(resp *resty.Response, body []byte) *errors.HTTPError {
	statusCode := resp.StatusCode()
	if statusCode < 400 {
		return nil
	}

	httpErr := &errors.HTTPError{
		StatusCode: statusCode,
		Status:     resp.Status(),
	}

	// Parse the error body; a non-JSON body is fine, the status alone
	// still classifies.
	if len(body) > 0 {
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err == nil {
			httpErr.Message = parsed.Message
			httpErr.Messages = parsed.Messages
			httpErr.Fields = parsed.Errors
		}
	}

	// Retry-After is surfaced for display only, never for scheduling.
	if statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable {
		httpErr.RetryAfter = parseRetryAfter(resp.Header().Get("Retry-After"))
	}

	return httpErr
}

// parseRetryAfter parses a Retry-After header value, either delta-seconds
// or an HTTP-date. Returns zero when absent or malformed.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}

	return 0
}
