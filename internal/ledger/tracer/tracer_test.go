package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer(t *testing.T) (*OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOTel(WithTracerProvider(tp)), recorder
}

func TestOTelTracer_RecordsSuccessfulSpan(t *testing.T) {
	tr, recorder := newRecordingTracer(t)

	_, span := tr.Start(context.Background(), SpanVaultQuery,
		Int(AttrPageNumber, 3),
		String(AttrStateStatus, "ALL"),
	)
	span.SetAttributes(Int(AttrStatesCount, 2), Duration("elapsed", 1500*time.Millisecond))
	span.End(nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, SpanVaultQuery, s.Name())
	assert.Equal(t, InstrumentationName, s.InstrumentationScope().Name)
	assert.Equal(t, codes.Unset, s.Status().Code)
	assert.Contains(t, s.Attributes(), attribute.Int64(AttrPageNumber, 3))
	assert.Contains(t, s.Attributes(), attribute.String(AttrStateStatus, "ALL"))
	assert.Contains(t, s.Attributes(), attribute.Int64(AttrStatesCount, 2))
	assert.Contains(t, s.Attributes(), attribute.Int64("elapsed", 1500))
}

func TestOTelTracer_RecordsFailure(t *testing.T) {
	tr, recorder := newRecordingTracer(t)

	_, span := tr.Start(context.Background(), SpanStartFlow, String(AttrFlowName, "SayHelloFlow"))
	span.AddEvent(EventSessionRenewed)
	span.End(errors.New("connection refused"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "connection refused", s.Status().Description)

	var names []string
	for _, ev := range s.Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, EventSessionRenewed)
	assert.Contains(t, names, "exception")
}

func TestOTelTracer_PropagatesParent(t *testing.T) {
	tr, recorder := newRecordingTracer(t)

	ctx, parent := tr.Start(context.Background(), SpanStartFlow)
	_, child := tr.Start(ctx, SpanFlowResult)
	child.End(nil)
	parent.End(nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestOTelTracer_FollowsGlobalProvider(t *testing.T) {
	tr := NewOTel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	_, span := tr.Start(context.Background(), SpanNodeInfo)
	span.AddEvent(EventSessionRenewed, String("reason", "expired"))
	span.End(nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, SpanNodeInfo, ended[0].Name())
	require.Len(t, ended[0].Events(), 1)
	assert.Contains(t, ended[0].Events()[0].Attributes, attribute.String("reason", "expired"))
}

func TestNoopTracer(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "v")
	got, span := NewNoop().Start(ctx, SpanNodeInfo, Bool("cached", true))

	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() {
		span.SetAttributes(String("k", "v"))
		span.AddEvent("e")
		span.End(errors.New("ignored"))
	})
}
