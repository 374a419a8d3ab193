// Package tracer is the tracing abstraction used around node RPC calls.
//
// Callers depend on the Tracer and Span interfaces only; OTelTracer adapts
// OpenTelemetry and NoopTracer is used in tests and when tracing is off.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span; a non-nil err marks it failed. Call exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans. It is the OpenTelemetry
// type so spans carry attributes without conversion.
type Attribute = attribute.KeyValue

func String(key, value string) Attribute {
	return attribute.String(key, value)
}

func Bool(key string, value bool) Attribute {
	return attribute.Bool(key, value)
}

func Int(key string, value int) Attribute {
	return attribute.Int64(key, int64(value))
}

func Int64(key string, value int64) Attribute {
	return attribute.Int64(key, value)
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return attribute.Int64(key, value.Milliseconds())
}

// Span names, one per node RPC operation.
const (
	SpanSession    = "node.rpc.session"
	SpanNodeInfo   = "node.rpc.node_info"
	SpanNetworkMap = "node.rpc.network_map"
	SpanVaultQuery = "node.rpc.vault_query"
	SpanStartFlow  = "node.rpc.start_flow"
	SpanFlowResult = "node.rpc.flow_result"
)

// Attribute keys.
const (
	AttrPageNumber    = "vault.page_number"
	AttrPageSize      = "vault.page_size"
	AttrStateStatus   = "vault.status"
	AttrStatesCount   = "vault.states_returned"
	AttrFlowName      = "flow.name"
	AttrFlowID        = "flow.id"
	AttrHTTPStatus    = "http.status_code"
	AttrErrorCategory = "rpc.error_category"
)

// Event names.
const (
	EventSessionRenewed = "session.renewed"
)
