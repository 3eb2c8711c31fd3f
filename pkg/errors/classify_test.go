package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// timeoutError is a transport failure that reports itself as a timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// TestClassify verifies the classification priority order across transport
// failures, structured HTTP responses, and gRPC status errors.
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{
			name: "nil error",
			err:  nil,
			want: CategoryUnknown,
		},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			want: CategoryNetwork,
		},
		{
			name: "dns failure",
			err:  &net.DNSError{Err: "no such host", Name: "api.internal"},
			want: CategoryNetwork,
		},
		{
			name: "url error wrapping connection failure",
			err:  &url.Error{Op: "Get", URL: "http://api/employees", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
			want: CategoryNetwork,
		},
		{
			name: "transport timeout",
			err:  timeoutError{},
			want: CategoryTimeout,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: CategoryTimeout,
		},
		{
			name: "aborted request",
			err:  context.Canceled,
			want: CategoryTimeout,
		},
		{
			name: "url error wrapping abort",
			err:  &url.Error{Op: "Get", URL: "http://api/employees", Err: context.Canceled},
			want: CategoryTimeout,
		},
		{
			name: "connection dropped mid response",
			err:  io.ErrUnexpectedEOF,
			want: CategoryNetwork,
		},
		{
			name: "status 401",
			err:  NewHTTP(401, ""),
			want: CategoryAuth,
		},
		{
			name: "status 403",
			err:  NewHTTP(403, ""),
			want: CategoryAuth,
		},
		{
			name: "status 400",
			err:  NewHTTP(400, ""),
			want: CategoryValidation,
		},
		{
			name: "status 422",
			err:  NewHTTP(422, ""),
			want: CategoryValidation,
		},
		{
			name: "status 409",
			err:  NewHTTP(409, ""),
			want: CategoryConflict,
		},
		{
			name: "status 404",
			err:  NewHTTP(404, ""),
			want: CategoryNotFound,
		},
		{
			name: "status 429",
			err:  NewHTTP(429, ""),
			want: CategoryRateLimit,
		},
		{
			name: "status 500",
			err:  NewHTTP(500, ""),
			want: CategoryServer,
		},
		{
			name: "status 503",
			err:  NewHTTP(503, ""),
			want: CategoryServer,
		},
		{
			name: "status 599",
			err:  NewHTTP(599, ""),
			want: CategoryServer,
		},
		{
			name: "unmapped status",
			err:  NewHTTP(418, ""),
			want: CategoryUnknown,
		},
		{
			name: "wrapped structured response",
			err:  fmt.Errorf("saving employee: %w", NewHTTP(409, "stale record")),
			want: CategoryConflict,
		},
		{
			name: "grpc unavailable",
			err:  status.Error(codes.Unavailable, "connection reset"),
			want: CategoryNetwork,
		},
		{
			name: "grpc deadline exceeded",
			err:  status.Error(codes.DeadlineExceeded, "deadline exceeded"),
			want: CategoryTimeout,
		},
		{
			name: "wrapped grpc not found",
			err:  fmt.Errorf("lookup: %w", status.Error(codes.NotFound, "employee not found")),
			want: CategoryNotFound,
		},
		{
			name: "plain error",
			err:  errors.New("something odd"),
			want: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClassifyIsDeterministic verifies repeated classification of the same
// error always yields the same category.
func TestClassifyIsDeterministic(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "http://api", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}
	first := Classify(err)
	for i := 0; i < 10; i++ {
		if got := Classify(err); got != first {
			t.Fatalf("classification changed between calls: %v then %v", first, got)
		}
	}
}

// TestIsRetryable verifies exactly the transient categories are retryable.
func TestIsRetryable(t *testing.T) {
	retryable := []Category{CategoryNetwork, CategoryTimeout, CategoryServer, CategoryRateLimit}
	for _, category := range retryable {
		if !IsRetryable(category) {
			t.Errorf("IsRetryable(%v) = false, want true", category)
		}
	}

	terminal := []Category{CategoryAuth, CategoryValidation, CategoryConflict, CategoryNotFound, CategoryUnknown}
	for _, category := range terminal {
		if IsRetryable(category) {
			t.Errorf("IsRetryable(%v) = true, want false", category)
		}
	}
}

// TestSeverityOf verifies the presentation weight per category.
func TestSeverityOf(t *testing.T) {
	tests := []struct {
		category Category
		want     Severity
	}{
		{CategoryNetwork, SeverityNetwork},
		{CategoryTimeout, SeverityNetwork},
		{CategoryValidation, SeverityWarning},
		{CategoryAuth, SeverityError},
		{CategoryConflict, SeverityError},
		{CategoryNotFound, SeverityError},
		{CategoryRateLimit, SeverityError},
		{CategoryServer, SeverityError},
		{CategoryUnknown, SeverityError},
	}

	for _, tt := range tests {
		if got := SeverityOf(tt.category); got != tt.want {
			t.Errorf("SeverityOf(%v) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

// TestMessageAuthScenario verifies the 401 scenario end to end: AUTH
// category, session-flavored message, not retryable, severity error.
func TestMessageAuthScenario(t *testing.T) {
	err := NewHTTP(401, "")

	if got := Classify(err); got != CategoryAuth {
		t.Fatalf("Classify = %v, want %v", got, CategoryAuth)
	}
	msg := Message(err)
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "session") && !strings.Contains(lower, "sign in") && !strings.Contains(lower, "log in") {
		t.Errorf("AUTH message should reference the session or signing in, got %q", msg)
	}
	if IsRetryable(CategoryAuth) {
		t.Error("AUTH must not be retryable")
	}
	if got := SeverityOf(CategoryAuth); got != SeverityError {
		t.Errorf("SeverityOf(AUTH) = %v, want %v", got, SeverityError)
	}
}

// TestMessageNetworkScenario verifies the connectivity scenario end to end:
// NETWORK category, connection-flavored message, retryable, severity network.
func TestMessageNetworkScenario(t *testing.T) {
	err := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	if got := Classify(err); got != CategoryNetwork {
		t.Fatalf("Classify = %v, want %v", got, CategoryNetwork)
	}
	msg := Message(err)
	if !strings.Contains(strings.ToLower(msg), "connection") {
		t.Errorf("NETWORK message should reference the connection, got %q", msg)
	}
	if !IsRetryable(CategoryNetwork) {
		t.Error("NETWORK must be retryable")
	}
	if got := SeverityOf(CategoryNetwork); got != SeverityNetwork {
		t.Errorf("SeverityOf(NETWORK) = %v, want %v", got, SeverityNetwork)
	}
}

// TestMessageNeverContainsRawCodes verifies no template leaks status codes
// or transport error codes into user-facing text.
func TestMessageNeverContainsRawCodes(t *testing.T) {
	errs := []error{
		NewHTTP(401, ""),
		NewHTTP(400, ""),
		NewHTTP(409, ""),
		NewHTTP(404, ""),
		NewHTTP(429, ""),
		NewHTTP(500, ""),
		NewHTTP(418, ""),
		context.DeadlineExceeded,
		&net.OpError{Op: "dial", Err: errors.New("connection refused")},
		errors.New("ECONNREFUSED"),
	}

	for _, err := range errs {
		msg := Message(err)
		for _, raw := range []string{"401", "400", "409", "404", "429", "500", "418", "ECONNREFUSED", "http"} {
			if strings.Contains(msg, raw) {
				t.Errorf("message %q leaks raw code %q", msg, raw)
			}
		}
	}
}

// TestMessagePrefersServerText verifies server-supplied messages win for the
// caller-fixable categories and are ignored for transient ones.
func TestMessagePrefersServerText(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       string
		wantServer bool
	}{
		{
			name:       "validation uses server message",
			err:        NewHTTP(422, "salary must be positive"),
			want:       "salary must be positive",
			wantServer: true,
		},
		{
			name:       "conflict uses server message",
			err:        NewHTTP(409, "payroll run already approved"),
			want:       "payroll run already approved",
			wantServer: true,
		},
		{
			name:       "not found uses server message",
			err:        NewHTTP(404, "employee 42 does not exist"),
			want:       "employee 42 does not exist",
			wantServer: true,
		},
		{
			name:       "auth uses grpc message",
			err:        status.Error(codes.Unauthenticated, "token expired, sign in again"),
			want:       "token expired, sign in again",
			wantServer: true,
		},
		{
			name:       "server failure ignores body message",
			err:        NewHTTP(500, "stack trace: nil pointer at payroll.go:42"),
			wantServer: false,
		},
		{
			name:       "rate limit ignores body message",
			err:        NewHTTP(429, "quota exceeded for key abc123"),
			wantServer: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Message(tt.err)
			if tt.wantServer {
				if got != tt.want {
					t.Errorf("Message() = %q, want server-supplied %q", got, tt.want)
				}
				return
			}
			httpErr, _ := AsHTTP(tt.err)
			if httpErr != nil && got == httpErr.Message {
				t.Errorf("Message() = %q leaked the server body for a transient category", got)
			}
		})
	}
}

// TestFieldErrors verifies field-keyed bodies pass through and list-shaped
// bodies collapse into a general entry.
func TestFieldErrors(t *testing.T) {
	t.Run("field map passes through", func(t *testing.T) {
		err := &HTTPError{
			StatusCode: 422,
			Fields:     map[string]string{"email": "invalid", "base_salary": "must be positive"},
		}
		got := FieldErrors(err)
		if len(got) != 2 || got["email"] != "invalid" || got["base_salary"] != "must be positive" {
			t.Errorf("FieldErrors = %v, want the field map unchanged", got)
		}
	})

	t.Run("message list joins into general", func(t *testing.T) {
		err := &HTTPError{
			StatusCode: 400,
			Messages:   []string{"name is required", "salary is required"},
		}
		got := FieldErrors(err)
		if got["general"] != "name is required; salary is required" {
			t.Errorf("FieldErrors = %v, want joined general entry", got)
		}
	})

	t.Run("no structured body", func(t *testing.T) {
		if got := FieldErrors(errors.New("plain")); got != nil {
			t.Errorf("FieldErrors = %v, want nil", got)
		}
	})
}

// TestFromGRPCCode verifies the code-to-category table.
func TestFromGRPCCode(t *testing.T) {
	tests := []struct {
		code codes.Code
		want Category
	}{
		{codes.Unavailable, CategoryNetwork},
		{codes.DeadlineExceeded, CategoryTimeout},
		{codes.Canceled, CategoryTimeout},
		{codes.Unauthenticated, CategoryAuth},
		{codes.PermissionDenied, CategoryAuth},
		{codes.InvalidArgument, CategoryValidation},
		{codes.FailedPrecondition, CategoryValidation},
		{codes.OutOfRange, CategoryValidation},
		{codes.AlreadyExists, CategoryConflict},
		{codes.Aborted, CategoryConflict},
		{codes.NotFound, CategoryNotFound},
		{codes.ResourceExhausted, CategoryRateLimit},
		{codes.Internal, CategoryServer},
		{codes.DataLoss, CategoryServer},
		{codes.Unimplemented, CategoryServer},
		{codes.Unknown, CategoryUnknown},
	}

	for _, tt := range tests {
		if got := FromGRPCCode(tt.code); got != tt.want {
			t.Errorf("FromGRPCCode(%v) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

// TestCategoryHelpers verifies the per-category convenience checks.
func TestCategoryHelpers(t *testing.T) {
	if !IsNetwork(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Error("IsNetwork should match connectivity failures")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("IsTimeout should match deadline failures")
	}
	if !IsAuth(NewHTTP(403, "")) {
		t.Error("IsAuth should match 403 responses")
	}
	if !IsValidation(NewHTTP(400, "")) {
		t.Error("IsValidation should match 400 responses")
	}
	if !IsConflict(NewHTTP(409, "")) {
		t.Error("IsConflict should match 409 responses")
	}
	if !IsNotFound(NewHTTP(404, "")) {
		t.Error("IsNotFound should match 404 responses")
	}
	if !IsRateLimit(NewHTTP(429, "")) {
		t.Error("IsRateLimit should match 429 responses")
	}
	if !IsServer(NewHTTP(502, "")) {
		t.Error("IsServer should match 5xx responses")
	}
	if !IsRetryableError(NewHTTP(503, "")) {
		t.Error("IsRetryableError should match retryable failures")
	}
	if IsRetryableError(NewHTTP(401, "")) {
		t.Error("IsRetryableError must reject AUTH failures")
	}
}
