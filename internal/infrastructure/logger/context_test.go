package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextValues(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, l := WithRequestID(context.Background(), base, "req-1")
	ctx, l = WithTenant(ctx, l, "tenant1")
	ctx, _ = WithUsername(ctx, l, "alice")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "tenant1", GetTenant(ctx))
	assert.Equal(t, "alice", GetUsername(ctx))
	assert.Equal(t, "alice:tenant1", Scope(ctx))

	L(ctx).Info("hello")
	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "tenant1", fields["tenant"])
	assert.Equal(t, "alice", fields["username"])
}

func TestScope_Anonymous(t *testing.T) {
	assert.Equal(t, "-:-", Scope(context.Background()))

	ctx := context.WithValue(context.Background(), TenantKey, "club_a")
	assert.Equal(t, "-:club_a", Scope(ctx))
}

func TestFromContext_Nop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	L(context.Background()).Info("dropped")
}

func TestWithLogger_AddsContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := context.WithValue(context.Background(), UsernameKey, "bob")
	ctx = context.WithValue(ctx, TenantKey, "t2")

	WithLogger(ctx, zap.New(core)).With(zap.String("k", "v")).Warn("warned")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "bob", fields["username"])
	assert.Equal(t, "t2", fields["tenant"])
	assert.Equal(t, "v", fields["k"])
}

func TestTraceFields(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, traceID.String(), GetTraceID(ctx))
	assert.Empty(t, GetTraceID(context.Background()))

	core, recorded := observer.New(zapcore.InfoLevel)
	WithLogger(ctx, zap.New(core)).Info("traced")
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}
