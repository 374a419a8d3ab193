// Package requestcontext carries request-scoped values (request id, client address)
// through context.Context without leaking HTTP types into services.
package requestcontext

import "context"

type requestIDKey struct{}
type clientAddrKey struct{}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id stored in ctx, or "" if none.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithClientAddr stores the remote address of the caller.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrKey{}, addr)
}

// ClientAddr returns the caller address stored in ctx, or "" if none.
func ClientAddr(ctx context.Context) string {
	if addr, ok := ctx.Value(clientAddrKey{}).(string); ok {
		return addr
	}
	return ""
}
