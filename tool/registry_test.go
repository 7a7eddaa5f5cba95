//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	itelemetry "trpc.group/trpc-go/trpc-legal-agent-go/internal/telemetry"
	itrace "trpc.group/trpc-go/trpc-legal-agent-go/telemetry/trace"
)

type fakeTool struct {
	name   string
	result any
	err    error
	panics bool
	calls  [][]byte
}

func (f *fakeTool) Declaration() *Declaration {
	return &Declaration{Name: f.name, Description: f.name + " tool", InputSchema: &Schema{Type: "object"}}
}

func (f *fakeTool) Call(_ context.Context, args []byte) (any, error) {
	f.calls = append(f.calls, args)
	if f.panics {
		panic("nil map write")
	}
	return f.result, f.err
}

type fakeToolSet struct {
	tools []CallableTool
}

func (s *fakeToolSet) Tools(context.Context) []CallableTool { return s.tools }
func (s *fakeToolSet) Close() error                         { return nil }
func (s *fakeToolSet) Name() string                         { return "fake" }

func TestNewRegistry(t *testing.T) {
	a := &fakeTool{name: "a"}
	b := &fakeTool{name: "b"}

	r, err := NewRegistry([]CallableTool{b, a})
	require.NoError(t, err)
	decls := r.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "b", decls[0].Name)
	assert.Equal(t, "a", decls[1].Name)

	_, err = NewRegistry([]CallableTool{a, &fakeTool{name: "a"}})
	require.ErrorIs(t, err, ErrDuplicateTool)
	_, err = NewRegistry([]CallableTool{&fakeTool{}})
	require.ErrorIs(t, err, ErrInvalidTool)
	_, err = NewRegistry([]CallableTool{nil})
	require.ErrorIs(t, err, ErrInvalidTool)
}

func TestNewRegistryFromToolSets(t *testing.T) {
	r, err := NewRegistryFromToolSets(context.Background(), []ToolSet{
		&fakeToolSet{tools: []CallableTool{&fakeTool{name: "x"}}},
		&fakeToolSet{tools: []CallableTool{&fakeTool{name: "y"}}},
	})
	require.NoError(t, err)
	assert.Len(t, r.Declarations(), 2)
}

func TestDispatch(t *testing.T) {
	text := &fakeTool{name: "text", result: `[{"id":1}]`}
	structured := &fakeTool{name: "structured", result: []map[string]int{{"count": 3}}}
	empty := &fakeTool{name: "empty", result: ""}
	failing := &fakeTool{name: "failing", err: errors.New("connection refused")}
	panicking := &fakeTool{name: "panicking", panics: true}
	unencodable := &fakeTool{name: "unencodable", result: make(chan int)}

	r, err := NewRegistry([]CallableTool{text, structured, empty, failing, panicking, unencodable})
	require.NoError(t, err)
	ctx := context.Background()

	out := r.Dispatch(ctx, Call{ID: "call_1", Type: CallTypeFunction, Name: "text", Arguments: []byte(`{"q":"x"}`)})
	require.True(t, out.OK())
	assert.Equal(t, "call_1", out.CallID)
	assert.Equal(t, `[{"id":1}]`, out.Output)
	assert.Equal(t, []byte(`{"q":"x"}`), text.calls[0])

	out = r.Dispatch(ctx, Call{ID: "call_2", Type: CallTypeFunction, Name: "structured"})
	require.True(t, out.OK())
	assert.Equal(t, `[{"count":3}]`, out.Output)
	assert.Equal(t, []byte("{}"), structured.calls[0])

	out = r.Dispatch(ctx, Call{ID: "call_3", Type: CallTypeFunction, Name: "empty"})
	assert.True(t, out.OK())
	assert.Empty(t, out.Output)

	out = r.Dispatch(ctx, Call{ID: "call_4", Type: CallTypeFunction, Name: "failing"})
	assert.False(t, out.OK())
	assert.ErrorContains(t, out.Err, "tool failing: connection refused")

	out = r.Dispatch(ctx, Call{ID: "call_5", Type: CallTypeFunction, Name: "panicking"})
	assert.ErrorContains(t, out.Err, "panic: nil map write")

	out = r.Dispatch(ctx, Call{ID: "call_6", Type: CallTypeFunction, Name: "unencodable"})
	assert.ErrorContains(t, out.Err, "encode result")

	out = r.Dispatch(ctx, Call{ID: "call_7", Type: CallTypeFunction, Name: "missing"})
	assert.ErrorIs(t, out.Err, ErrToolNotFound)

	out = r.Dispatch(ctx, Call{ID: "call_8", Type: "code_interpreter", Name: "text"})
	assert.ErrorIs(t, out.Err, ErrUnsupportedCallType)
	out = r.Dispatch(ctx, Call{ID: "call_10", Name: "text"})
	assert.ErrorIs(t, out.Err, ErrUnsupportedCallType)
	assert.Len(t, text.calls, 1)
}

func TestDispatchAll_KeepsOrderAndFailures(t *testing.T) {
	ok := &fakeTool{name: "ok", result: "fine"}
	bad := &fakeTool{name: "bad", err: errors.New("db down")}
	r, err := NewRegistry([]CallableTool{ok, bad})
	require.NoError(t, err)

	outcomes := r.DispatchAll(context.Background(), []Call{
		{ID: "1", Type: CallTypeFunction, Name: "bad"},
		{ID: "2", Type: CallTypeFunction, Name: "ok"},
		{ID: "3", Type: CallTypeFunction, Name: "ok"},
	})
	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{outcomes[0].CallID, outcomes[1].CallID, outcomes[2].CallID})
	assert.False(t, outcomes[0].OK())
	assert.True(t, outcomes[1].OK())
	assert.Equal(t, "fine", outcomes[2].Output)
}

func TestDispatch_Span(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	old := itrace.Tracer
	itrace.Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")
	defer func() { itrace.Tracer = old }()

	r, err := NewRegistry([]CallableTool{&fakeTool{name: "count_cases", result: "1"}}, WithContentRecording(true))
	require.NoError(t, err)
	r.Dispatch(context.Background(), Call{ID: "call_9", Type: CallTypeFunction, Name: "count_cases", Arguments: []byte(`{"vector_search_query":"leak"}`)})

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "execute_tool count_cases", ended[0].Name())
	found := false
	for _, kv := range ended[0].Attributes() {
		if string(kv.Key) == itelemetry.KeyToolCallArgs {
			found = true
			assert.Equal(t, `{"vector_search_query":"leak"}`, kv.Value.AsString())
		}
	}
	assert.True(t, found)
}
