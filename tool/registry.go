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
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	itelemetry "trpc.group/trpc-go/trpc-legal-agent-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
	imetric "trpc.group/trpc-go/trpc-legal-agent-go/telemetry/metric"
	itrace "trpc.group/trpc-go/trpc-legal-agent-go/telemetry/trace"
)

// CallTypeFunction is the only call type the registry dispatches.
const CallTypeFunction = "function"

// Call is a tool call requested by the remote agent.
type Call struct {
	ID        string
	Type      string
	Name      string
	Arguments []byte
}

// Outcome is the result of one Call. Exactly one of Output and Err is meaningful:
// a successful call with an empty Output is distinct from a failed call.
type Outcome struct {
	CallID   string
	Name     string
	Output   string
	Err      error
	Duration time.Duration
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Registry is a fixed set of callable tools keyed by name.
type Registry struct {
	tools          map[string]CallableTool
	order          []string
	recordContent  bool
	callCounter    metric.Int64Counter
	durationRecord metric.Float64Histogram
}

// Option configures a Registry.
type Option func(*Registry)

// WithContentRecording records tool arguments on spans.
func WithContentRecording(enabled bool) Option {
	return func(r *Registry) {
		r.recordContent = enabled
	}
}

// NewRegistry builds a registry over tools. Names must be unique and non empty.
func NewRegistry(tools []CallableTool, opts ...Option) (*Registry, error) {
	r := &Registry{tools: make(map[string]CallableTool, len(tools))}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range tools {
		if t == nil || t.Declaration() == nil || t.Declaration().Name == "" {
			return nil, ErrInvalidTool
		}
		name := t.Declaration().Name
		if _, ok := r.tools[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}

	var err error
	if r.callCounter, err = imetric.Meter.Int64Counter("legal_agent.tool.calls",
		metric.WithDescription("Tool calls dispatched, by tool and outcome.")); err != nil {
		return nil, fmt.Errorf("tool: create counter: %w", err)
	}
	if r.durationRecord, err = imetric.Meter.Float64Histogram("legal_agent.tool.duration",
		metric.WithDescription("Tool call latency."), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("tool: create histogram: %w", err)
	}
	return r, nil
}

// ToolSet is a named group of tools built over one backend.
type ToolSet interface {
	Tools(context.Context) []CallableTool
	// Close releases the backend. The registry never calls it.
	Close() error
	Name() string
}

// NewRegistryFromToolSets builds a registry over every tool of the sets.
func NewRegistryFromToolSets(ctx context.Context, sets []ToolSet, opts ...Option) (*Registry, error) {
	var tools []CallableTool
	for _, s := range sets {
		tools = append(tools, s.Tools(ctx)...)
	}
	return NewRegistry(tools, opts...)
}

// Declarations returns the declarations in registration order.
func (r *Registry) Declarations() []*Declaration {
	decls := make([]*Declaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}

// Dispatch runs one call. Failures, including panics inside the tool, are
// reported on the Outcome and never returned.
func (r *Registry) Dispatch(ctx context.Context, call Call) (out Outcome) {
	out = Outcome{CallID: call.ID, Name: call.Name}
	start := time.Now()

	ctx, span := itrace.Tracer.Start(ctx, itelemetry.NewExecuteToolSpanName(call.Name))
	defer func() {
		out.Duration = time.Since(start)
		itelemetry.TraceToolCall(span, call.Name, call.ID, call.Arguments, out.Err, r.recordContent)
		span.End()
		r.record(ctx, out)
	}()

	if call.Type != CallTypeFunction {
		out.Err = fmt.Errorf("%w: %q", ErrUnsupportedCallType, call.Type)
		return out
	}
	t, ok := r.tools[call.Name]
	if !ok {
		out.Err = fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
		return out
	}

	result, err := safeCall(ctx, t, call.Arguments)
	if err != nil {
		out.Err = fmt.Errorf("tool %s: %w", call.Name, err)
		return out
	}
	out.Output, out.Err = encodeResult(result)
	return out
}

// DispatchAll runs calls one at a time in the given order.
func (r *Registry) DispatchAll(ctx context.Context, calls []Call) []Outcome {
	outcomes := make([]Outcome, 0, len(calls))
	for _, c := range calls {
		o := r.Dispatch(ctx, c)
		if !o.OK() {
			log.Errorf("Error executing tool_call %s: %v", c.ID, o.Err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (r *Registry) record(ctx context.Context, out Outcome) {
	status := "ok"
	if !out.OK() {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", out.Name),
		attribute.String("outcome", status),
	)
	r.callCounter.Add(ctx, 1, attrs)
	r.durationRecord.Record(ctx, out.Duration.Seconds(), attrs)
}

func safeCall(ctx context.Context, t CallableTool, args []byte) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if len(args) == 0 {
		args = []byte("{}")
	}
	return t.Call(ctx, args)
}

func encodeResult(result any) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("tool: encode result: %w", err)
	}
	return string(b), nil
}
