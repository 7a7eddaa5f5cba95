//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package assistants implements agent.Service on the Assistants API, either
// on Azure OpenAI or on an OpenAI compatible endpoint.
package assistants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-legal-agent-go/agent"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
)

var _ agent.Service = (*Service)(nil)

// Service talks to the Assistants API.
type Service struct {
	client openai.Client
}

// New creates a Service. Pass the options returned by Connection.RequestOptions.
func New(opts ...option.RequestOption) *Service {
	return &Service{client: openai.NewClient(opts...)}
}

// GetAgent implements agent.Service.
func (s *Service) GetAgent(ctx context.Context, id string) (*agent.Agent, error) {
	a, err := s.client.Beta.Assistants.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", agent.ErrNotFound, id)
		}
		return nil, fmt.Errorf("assistants: get agent %s: %w", id, err)
	}
	return &agent.Agent{ID: a.ID, Name: a.Name, Model: a.Model}, nil
}

// CreateAgent implements agent.Service.
func (s *Service) CreateAgent(ctx context.Context, def agent.Definition) (*agent.Agent, error) {
	tools, err := convertTools(def.Tools)
	if err != nil {
		return nil, err
	}
	a, err := s.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        shared.ChatModel(def.Model),
		Name:         openai.String(def.Name),
		Description:  openai.String(def.Description),
		Instructions: openai.String(def.Instructions),
		Tools:        tools,
	})
	if err != nil {
		return nil, fmt.Errorf("assistants: create agent: %w", err)
	}
	return &agent.Agent{ID: a.ID, Name: a.Name, Model: a.Model}, nil
}

// DeleteAgent implements agent.Service.
func (s *Service) DeleteAgent(ctx context.Context, id string) error {
	if _, err := s.client.Beta.Assistants.Delete(ctx, id); err != nil {
		return fmt.Errorf("assistants: delete agent %s: %w", id, err)
	}
	return nil
}

// CreateThread implements agent.Service.
func (s *Service) CreateThread(ctx context.Context) (*agent.Thread, error) {
	t, err := s.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return nil, fmt.Errorf("assistants: create thread: %w", err)
	}
	return &agent.Thread{ID: t.ID}, nil
}

// CreateMessage implements agent.Service.
func (s *Service) CreateMessage(ctx context.Context, threadID string, role agent.Role, content string) (*agent.Message, error) {
	m, err := s.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role:    openai.BetaThreadMessageNewParamsRole(role),
		Content: openai.BetaThreadMessageNewParamsContentUnion{OfString: openai.String(content)},
	})
	if err != nil {
		return nil, fmt.Errorf("assistants: create message: %w", err)
	}
	return convertMessage(m), nil
}

// ListMessages implements agent.Service.
func (s *Service) ListMessages(ctx context.Context, threadID string) ([]agent.Message, error) {
	iter := s.client.Beta.Threads.Messages.ListAutoPaging(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderAsc,
	})
	var messages []agent.Message
	for iter.Next() {
		m := iter.Current()
		messages = append(messages, *convertMessage(&m))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("assistants: list messages: %w", err)
	}
	return messages, nil
}

// CreateRun implements agent.Service.
func (s *Service) CreateRun(ctx context.Context, threadID, agentID string) (*agent.Run, error) {
	r, err := s.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("assistants: create run: %w", err)
	}
	return convertRun(r), nil
}

// GetRun implements agent.Service.
func (s *Service) GetRun(ctx context.Context, threadID, runID string) (*agent.Run, error) {
	r, err := s.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("assistants: get run %s: %w", runID, err)
	}
	return convertRun(r), nil
}

// SubmitToolOutputs implements agent.Service.
func (s *Service) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []agent.ToolOutput) (*agent.Run, error) {
	params := openai.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: make([]openai.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(outputs)),
	}
	for _, o := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(o.ToolCallID),
			Output:     openai.String(o.Output),
		})
	}
	r, err := s.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params)
	if err != nil {
		return nil, fmt.Errorf("assistants: submit tool outputs: %w", err)
	}
	return convertRun(r), nil
}

// CancelRun implements agent.Service.
func (s *Service) CancelRun(ctx context.Context, threadID, runID string) (*agent.Run, error) {
	r, err := s.client.Beta.Threads.Runs.Cancel(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("assistants: cancel run %s: %w", runID, err)
	}
	return convertRun(r), nil
}

func isNotFound(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// convertTools maps declarations to function tools. The schema goes through
// JSON so that every field the declaration carries reaches the service.
func convertTools(decls []*tool.Declaration) ([]openai.AssistantToolUnionParam, error) {
	result := make([]openai.AssistantToolUnionParam, 0, len(decls))
	for _, d := range decls {
		schemaBytes, err := json.Marshal(d.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("assistants: marshal schema of %s: %w", d.Name, err)
		}
		var parameters shared.FunctionParameters
		if err := json.Unmarshal(schemaBytes, &parameters); err != nil {
			return nil, fmt.Errorf("assistants: decode schema of %s: %w", d.Name, err)
		}
		result = append(result, openai.AssistantToolUnionParam{
			OfFunction: &openai.FunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        d.Name,
					Description: openai.String(d.Description),
					Parameters:  parameters,
				},
			},
		})
	}
	return result, nil
}

func convertMessage(m *openai.Message) *agent.Message {
	var parts []string
	for _, c := range m.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text.Value)
			continue
		}
		log.Debugf("assistants: message %s: skipping %s content", m.ID, c.Type)
	}
	return &agent.Message{
		ID:        m.ID,
		Role:      agent.Role(m.Role),
		Content:   strings.Join(parts, "\n"),
		CreatedAt: time.Unix(m.CreatedAt, 0),
	}
}

func convertRun(r *openai.Run) *agent.Run {
	out := &agent.Run{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		AgentID:  r.AssistantID,
		Status:   agent.RunStatus(r.Status),
	}
	if actionType := string(r.RequiredAction.Type); actionType != "" {
		action := &agent.RequiredAction{Type: actionType}
		for _, tc := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
			action.ToolCalls = append(action.ToolCalls, agent.ToolCall{
				ID:        tc.ID,
				Type:      string(tc.Type),
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		out.RequiredAction = action
	}
	if r.LastError.Code != "" || r.LastError.Message != "" {
		out.LastError = &agent.RunError{Code: string(r.LastError.Code), Message: r.LastError.Message}
	}
	return out
}
