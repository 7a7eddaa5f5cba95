//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpanNames(t *testing.T) {
	assert.Equal(t, "execute_tool count_cases", NewExecuteToolSpanName("count_cases"))
	assert.Equal(t, "agent create_run", NewAgentCallSpanName("create_run"))
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := make(map[attribute.Key]string)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestTraceToolCall(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")

	_, span := tracer.Start(context.Background(), "ok")
	TraceToolCall(span, "vector_search_cases", "call_1", []byte(`{"vector_search_query":"leak"}`), nil, false)
	span.End()

	_, span = tracer.Start(context.Background(), "failed")
	TraceToolCall(span, "count_cases", "call_2", []byte(`{}`), errors.New("db down"), true)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)

	ok := attrs(ended[0])
	assert.Equal(t, "vector_search_cases", ok["gen_ai.tool.name"])
	assert.Equal(t, "call_1", ok[KeyToolCallID])
	assert.Equal(t, "ok", ok[KeyToolOutcome])
	assert.NotContains(t, ok, attribute.Key(KeyToolCallArgs))

	failed := attrs(ended[1])
	assert.Equal(t, "error", failed[KeyToolOutcome])
	assert.Equal(t, "{}", failed[KeyToolCallArgs])
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}

func TestNewGRPCConn(t *testing.T) {
	conn, err := NewGRPCConn("localhost:4317")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}
