package errors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// grpcStatusProvider matches errors produced by google.golang.org/grpc/status,
// including wrapped ones.
type grpcStatusProvider interface {
	GRPCStatus() *status.Status
}

// FromGRPCCode maps a gRPC status code to a failure category.
// It mirrors the HTTP mapping: transport-level codes split into
// NETWORK/TIMEOUT, application codes land in their HTTP equivalents.
func FromGRPCCode(code codes.Code) Category {
	switch code {
	case codes.Unavailable:
		return CategoryNetwork
	case codes.DeadlineExceeded, codes.Canceled:
		return CategoryTimeout
	case codes.Unauthenticated, codes.PermissionDenied:
		return CategoryAuth
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return CategoryValidation
	case codes.AlreadyExists, codes.Aborted:
		return CategoryConflict
	case codes.NotFound:
		return CategoryNotFound
	case codes.ResourceExhausted:
		return CategoryRateLimit
	case codes.Internal, codes.DataLoss, codes.Unimplemented:
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// grpcCategory classifies a gRPC status error found anywhere in err's chain.
func grpcCategory(err error) (Category, bool) {
	var provider grpcStatusProvider
	if errors.As(err, &provider) {
		return FromGRPCCode(provider.GRPCStatus().Code()), true
	}
	return CategoryUnknown, false
}

// grpcMessage returns the message attached to a gRPC status error, if any.
func grpcMessage(err error) (string, bool) {
	var provider grpcStatusProvider
	if errors.As(err, &provider) {
		if msg := provider.GRPCStatus().Message(); msg != "" {
			return msg, true
		}
	}
	return "", false
}
