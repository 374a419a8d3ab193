package rpc

import (
	"errors"
	"fmt"
)

// Category classifies node RPC failures.
type Category string

const (
	// CategoryTransport means the node could not be reached or the connection broke.
	CategoryTransport Category = "transport"

	// CategoryTimeout means the call's context deadline passed.
	CategoryTimeout Category = "timeout"

	// CategoryAuth means the node rejected the RPC credentials or session.
	CategoryAuth Category = "auth"

	// CategoryRejected means the node refused the request (4xx).
	CategoryRejected Category = "rejected"

	// CategoryNode means the node failed while serving the request (5xx).
	CategoryNode Category = "node_error"

	// CategoryBadData means the node answered with a body that could not be decoded.
	CategoryBadData Category = "bad_data"

	// CategoryFlowFailed means a started flow finished with an error.
	CategoryFlowFailed Category = "flow_failed"

	// CategoryInternal means the request could not be built locally.
	CategoryInternal Category = "internal"
)

// RPCError is the error returned by every Client operation.
//
// Message carries the node's own description of the failure verbatim (or the
// transport error text when the node was never reached); callers that surface
// backend messages to their clients should use it rather than Error().
type RPCError struct {
	Category   Category
	Op         string
	Message    string
	Underlying error
}

func (e *RPCError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("node rpc %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("node rpc %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *RPCError) Unwrap() error {
	return e.Underlying
}

func newError(category Category, op, message string, underlying error) *RPCError {
	return &RPCError{Category: category, Op: op, Message: message, Underlying: underlying}
}

// CategoryOf extracts the failure category, CategoryInternal for foreign errors.
func CategoryOf(err error) Category {
	var re *RPCError
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryInternal
}

// IsRPCError reports whether err came from the node RPC layer.
func IsRPCError(err error) bool {
	var re *RPCError
	return errors.As(err, &re)
}

// Message returns the backend-provided message of err, or err.Error() when
// err did not come from the node.
func Message(err error) string {
	var re *RPCError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}

func nodeUnwell(err error) bool {
	switch CategoryOf(err) {
	case CategoryTransport, CategoryTimeout, CategoryNode:
		return true
	default:
		return false
	}
}
