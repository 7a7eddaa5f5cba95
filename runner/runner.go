//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package runner drives one agent session: it resolves the agent, posts the
// user request on a fresh thread, polls the run and answers its tool calls
// through a tool.Registry until the service reports a terminal status.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-legal-agent-go/agent"
	"trpc.group/trpc-go/trpc-legal-agent-go/internal/poll"
	itelemetry "trpc.group/trpc-go/trpc-legal-agent-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
	imetric "trpc.group/trpc-go/trpc-legal-agent-go/telemetry/metric"
	itrace "trpc.group/trpc-go/trpc-legal-agent-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
)

// Agent definition constants.
const (
	AgentNamePrefix  = "legal-cases-agent-"
	AgentDescription = "Legal Cases Agent"

	agentNameLayout     = "200601021504"
	instructionsFormat  = "You are a helpful legal assistant that can retrieve information about legal cases. The current date is %s."
	instructionsDateFmt = "2006-01-02"
)

// Option is a function that configures a Runner.
type Option func(*Options)

// Options is the options for the Runner.
type Options struct {
	config Config
	now    func() time.Time
}

// WithConfig replaces the whole session configuration.
func WithConfig(c Config) Option {
	return func(opts *Options) {
		opts.config = c
	}
}

// WithAgentID sets the agent to reuse.
func WithAgentID(id string) Option {
	return func(opts *Options) {
		opts.config.AgentID = id
	}
}

// WithModel sets the model deployment of a created agent.
func WithModel(model string) Option {
	return func(opts *Options) {
		opts.config.Model = model
	}
}

// WithPollInterval sets the delay between two run status checks.
func WithPollInterval(d time.Duration) Option {
	return func(opts *Options) {
		opts.config.PollInterval = d
	}
}

// WithMaxWait bounds the time a run may stay active.
func WithMaxWait(d time.Duration) Option {
	return func(opts *Options) {
		opts.config.MaxWait = d
	}
}

// WithDeleteCreatedAgent deletes an agent created by the session when it ends.
func WithDeleteCreatedAgent(enabled bool) Option {
	return func(opts *Options) {
		opts.config.DeleteCreatedAgent = enabled
	}
}

// WithClock sets the clock used for the agent name and instructions.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.now = now
	}
}

// Runner runs agent sessions against a remote agent service.
type Runner struct {
	service     agent.Service
	registry    *tool.Registry
	opts        Options
	pollCounter metric.Int64Counter
}

// New creates a Runner. The service and the registry are used as given.
func New(service agent.Service, registry *tool.Registry, opts ...Option) (*Runner, error) {
	options := Options{config: DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	if options.config.PollInterval <= 0 {
		options.config.PollInterval = DefaultPollInterval
	}
	counter, err := imetric.Meter.Int64Counter("legal_agent.run.polls",
		metric.WithDescription("Run status checks issued by the session driver."))
	if err != nil {
		return nil, fmt.Errorf("runner: create counter: %w", err)
	}
	return &Runner{
		service:     service,
		registry:    registry,
		opts:        options,
		pollCounter: counter,
	}, nil
}

// Result is what a session observed.
type Result struct {
	InvocationID string
	AgentID      string
	AgentCreated bool
	ThreadID     string
	RunID        string
	Status       agent.RunStatus
	// LastError is set by the service on failed runs.
	LastError *agent.RunError
	// Err is ErrNoToolCalls when the run was cancelled for an empty action.
	Err error
	// Outcomes lists every dispatched tool call, in dispatch order.
	Outcomes []tool.Outcome
	// Messages is the thread transcript, oldest first.
	Messages []agent.Message
	Polls    int
}

// Run executes one session for message. Service failures and poll timeouts
// are returned as errors together with what the session saw so far. A run
// that ends failed is not an error; check Result.Status and Result.LastError.
func (r *Runner) Run(ctx context.Context, message string) (*Result, error) {
	result := &Result{InvocationID: uuid.NewString()}
	ctx, span := itrace.Tracer.Start(ctx, itelemetry.SpanNameSession,
		trace.WithAttributes(attribute.String(itelemetry.KeyInvocationID, result.InvocationID)))
	defer span.End()

	err := r.run(ctx, message, result)
	span.SetAttributes(
		attribute.String(itelemetry.KeyAgentID, result.AgentID),
		attribute.String(itelemetry.KeyThreadID, result.ThreadID),
		attribute.String(itelemetry.KeyRunID, result.RunID),
		attribute.String(itelemetry.KeyRunStatus, string(result.Status)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (r *Runner) run(ctx context.Context, message string, result *Result) error {
	ag, created, err := r.ResolveAgent(ctx)
	if err != nil {
		return err
	}
	result.AgentID, result.AgentCreated = ag.ID, created
	if created && r.opts.config.DeleteCreatedAgent {
		defer r.deleteAgent(ctx, ag.ID)
	}

	var thread *agent.Thread
	if err := r.call(ctx, "create_thread", func(ctx context.Context) (err error) {
		thread, err = r.service.CreateThread(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("runner: create thread: %w", err)
	}
	result.ThreadID = thread.ID
	log.Infof("Created thread, ID: %s", thread.ID)

	var msg *agent.Message
	if err := r.call(ctx, "create_message", func(ctx context.Context) (err error) {
		msg, err = r.service.CreateMessage(ctx, thread.ID, agent.RoleUser, message)
		return err
	}); err != nil {
		return fmt.Errorf("runner: create message: %w", err)
	}
	log.Infof("Created message, ID: %s", msg.ID)

	var run *agent.Run
	if err := r.call(ctx, "create_run", func(ctx context.Context) (err error) {
		run, err = r.service.CreateRun(ctx, thread.ID, ag.ID)
		return err
	}); err != nil {
		return fmt.Errorf("runner: create run: %w", err)
	}
	if run.ThreadID == "" {
		run.ThreadID = thread.ID
	}
	result.RunID, result.Status = run.ID, run.Status
	log.Infof("Created run, ID: %s", run.ID)

	run, err = r.wait(ctx, run, result)
	if run != nil {
		result.Status, result.LastError = run.Status, run.LastError
	}
	if err != nil {
		return err
	}
	log.Infof("Run completed with status: %s", run.Status)
	if run.Status == agent.RunStatusFailed && run.LastError != nil {
		log.Errorf("Run failed: %s: %s", run.LastError.Code, run.LastError.Message)
	}

	if err := r.call(ctx, "list_messages", func(ctx context.Context) (err error) {
		result.Messages, err = r.service.ListMessages(ctx, thread.ID)
		return err
	}); err != nil {
		return fmt.Errorf("runner: list messages: %w", err)
	}
	return nil
}

// ResolveAgent fetches the configured agent and creates one only when the
// service reports it as not found. The boolean is true for a created agent.
func (r *Runner) ResolveAgent(ctx context.Context) (*agent.Agent, bool, error) {
	if id := r.opts.config.AgentID; id != "" {
		var ag *agent.Agent
		err := r.call(ctx, "get_agent", func(ctx context.Context) (err error) {
			ag, err = r.service.GetAgent(ctx, id)
			return err
		})
		if err == nil {
			log.Infof("Reuse agent from AGENT_ID: %s", ag.ID)
			return ag, false, nil
		}
		if !errors.Is(err, agent.ErrNotFound) {
			return nil, false, fmt.Errorf("runner: get agent %s: %w", id, err)
		}
		log.Infof("There is no agent with ID %s", id)
	}

	if r.opts.config.Model == "" {
		return nil, false, ErrNoModel
	}
	def := r.definition()
	var ag *agent.Agent
	if err := r.call(ctx, "create_agent", func(ctx context.Context) (err error) {
		ag, err = r.service.CreateAgent(ctx, def)
		return err
	}); err != nil {
		return nil, false, fmt.Errorf("runner: create agent: %w", err)
	}
	log.Infof("Created agent, ID: %s", ag.ID)
	return ag, true, nil
}

func (r *Runner) definition() agent.Definition {
	now := r.opts.now()
	return agent.Definition{
		Model:        r.opts.config.Model,
		Name:         AgentNamePrefix + now.Format(agentNameLayout),
		Description:  AgentDescription,
		Instructions: fmt.Sprintf(instructionsFormat, now.Format(instructionsDateFmt)),
		Tools:        r.registry.Declarations(),
	}
}

// wait polls run until it leaves the active states or is cancelled for an
// empty action. On timeout the run is cancelled.
func (r *Runner) wait(ctx context.Context, run *agent.Run, result *Result) (*agent.Run, error) {
	if !run.Status.Active() {
		return run, nil
	}
	cfg := r.opts.config
	last, err := poll.Until(ctx, cfg.PollInterval, cfg.MaxWait, func(ctx context.Context) (*agent.Run, bool, error) {
		var cur *agent.Run
		if err := r.call(ctx, "get_run", func(ctx context.Context) (err error) {
			cur, err = r.service.GetRun(ctx, run.ThreadID, run.ID)
			return err
		}); err != nil {
			return nil, false, fmt.Errorf("runner: get run %s: %w", run.ID, err)
		}
		if cur.ThreadID == "" {
			cur.ThreadID = run.ThreadID
		}
		result.Polls++
		r.pollCounter.Add(ctx, 1)
		log.Infof("Current run status: %s", cur.Status)

		if cur.Status != agent.RunStatusRequiresAction || cur.RequiredAction == nil {
			return cur, !cur.Status.Active(), nil
		}
		if !cur.NeedsToolOutputs() {
			log.Warnf("Run %s requires unsupported action %q", cur.ID, cur.RequiredAction.Type)
			return cur, false, nil
		}
		if len(cur.RequiredAction.ToolCalls) == 0 {
			log.Warnf("No tool calls provided - cancelling run %s", cur.ID)
			cancelled, err := r.cancel(ctx, cur)
			if err != nil {
				return nil, false, err
			}
			result.Err = ErrNoToolCalls
			return cancelled, true, nil
		}
		next, err := r.answer(ctx, cur, result)
		if err != nil {
			return nil, false, err
		}
		return next, !next.Status.Active(), nil
	})
	if err == nil {
		return last, nil
	}
	if errors.Is(err, poll.ErrTimeout) {
		if last == nil {
			last = run
		}
		log.Warnf("Run %s still %s after %s, cancelling", run.ID, last.Status, cfg.MaxWait)
		if cancelled, cerr := r.cancel(ctx, run); cerr == nil {
			last = cancelled
		} else {
			log.Warnf("cancel run %s: %v", run.ID, cerr)
		}
		return last, fmt.Errorf("%w: run %s", ErrPollTimeout, run.ID)
	}
	return last, err
}

func (r *Runner) cancel(ctx context.Context, run *agent.Run) (*agent.Run, error) {
	var cancelled *agent.Run
	if err := r.call(ctx, "cancel_run", func(ctx context.Context) (err error) {
		cancelled, err = r.service.CancelRun(ctx, run.ThreadID, run.ID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("runner: cancel run %s: %w", run.ID, err)
	}
	return cancelled, nil
}

// answer dispatches the required tool calls and submits the successful
// outputs. Nothing is submitted when every call failed.
func (r *Runner) answer(ctx context.Context, run *agent.Run, result *Result) (*agent.Run, error) {
	calls := make([]tool.Call, 0, len(run.RequiredAction.ToolCalls))
	for _, tc := range run.RequiredAction.ToolCalls {
		calls = append(calls, tool.Call{
			ID:        tc.ID,
			Type:      tc.Type,
			Name:      tc.Name,
			Arguments: []byte(tc.Arguments),
		})
	}
	outcomes := r.registry.DispatchAll(ctx, calls)
	result.Outcomes = append(result.Outcomes, outcomes...)

	var outputs []agent.ToolOutput
	for _, o := range outcomes {
		if o.OK() {
			outputs = append(outputs, agent.ToolOutput{ToolCallID: o.CallID, Output: o.Output})
		}
	}
	log.Infof("Tool outputs: %v", outputs)
	if len(outputs) == 0 {
		log.Warnf("Run %s: no tool output to submit", run.ID)
		return run, nil
	}

	var next *agent.Run
	if err := r.call(ctx, "submit_tool_outputs", func(ctx context.Context) (err error) {
		next, err = r.service.SubmitToolOutputs(ctx, run.ThreadID, run.ID, outputs)
		return err
	}); err != nil {
		return nil, fmt.Errorf("runner: submit tool outputs: %w", err)
	}
	return next, nil
}

func (r *Runner) deleteAgent(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	if err := r.call(ctx, "delete_agent", func(ctx context.Context) error {
		return r.service.DeleteAgent(ctx, id)
	}); err != nil {
		log.Warnf("delete agent %s: %v", id, err)
		return
	}
	log.Infof("Deleted agent, ID: %s", id)
}

// call runs one remote service operation in its own span.
func (r *Runner) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := itrace.Tracer.Start(ctx, itelemetry.NewAgentCallSpanName(op))
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
