//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package agent defines the contract with the hosted agent service: agents,
// threads, messages and runs. All of them live remotely and are referenced
// by opaque ids.
package agent

import (
	"context"
	"time"

	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
)

// Service is the remote agent service.
type Service interface {
	// GetAgent fetches an agent by id. A missing agent is reported as ErrNotFound.
	GetAgent(ctx context.Context, id string) (*Agent, error)
	// CreateAgent registers a new agent.
	CreateAgent(ctx context.Context, def Definition) (*Agent, error)
	// DeleteAgent removes an agent.
	DeleteAgent(ctx context.Context, id string) error

	// CreateThread starts an empty conversation.
	CreateThread(ctx context.Context) (*Thread, error)
	// CreateMessage appends a message to a thread.
	CreateMessage(ctx context.Context, threadID string, role Role, content string) (*Message, error)
	// ListMessages returns every message of a thread, oldest first.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)

	// CreateRun starts the agent on a thread.
	CreateRun(ctx context.Context, threadID, agentID string) (*Run, error)
	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)
	// SubmitToolOutputs answers the tool calls of a run waiting in requires_action.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)
	// CancelRun asks the service to stop a run.
	CancelRun(ctx context.Context, threadID, runID string) (*Run, error)
}

// Definition is what an agent is created from.
type Definition struct {
	Model        string
	Name         string
	Description  string
	Instructions string
	Tools        []*tool.Declaration
}

// Agent is a remote agent definition.
type Agent struct {
	ID    string
	Name  string
	Model string
}

// Thread is a remote conversation.
type Thread struct {
	ID string
}

// Role is the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one thread message flattened to text.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// RunStatus is the state reported by the service. It is authoritative and
// never derived locally.
type RunStatus string

// Run statuses.
const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusExpired        RunStatus = "expired"
)

// Active reports whether the run still needs polling.
func (s RunStatus) Active() bool {
	switch s {
	case RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction:
		return true
	default:
		return false
	}
}

// RequiredActionSubmitToolOutputs is the only required action kind the
// session driver answers.
const RequiredActionSubmitToolOutputs = "submit_tool_outputs"

// ToolCallTypeFunction marks a call to a declared function tool.
const ToolCallTypeFunction = "function"

// RequiredAction is what a run in requires_action waits for.
type RequiredAction struct {
	Type      string
	ToolCalls []ToolCall
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Type      string
	Name      string
	Arguments string
}

// RunError is the last error recorded on a failed run.
type RunError struct {
	Code    string
	Message string
}

// Run is one execution of an agent on a thread.
type Run struct {
	ID             string
	ThreadID       string
	AgentID        string
	Status         RunStatus
	RequiredAction *RequiredAction
	LastError      *RunError
}

// NeedsToolOutputs reports whether the run waits for tool outputs.
func (r *Run) NeedsToolOutputs() bool {
	return r.Status == RunStatusRequiresAction &&
		r.RequiredAction != nil &&
		r.RequiredAction.Type == RequiredActionSubmitToolOutputs
}

// ToolOutput answers one ToolCall.
type ToolOutput struct {
	ToolCallID string
	Output     string
}
