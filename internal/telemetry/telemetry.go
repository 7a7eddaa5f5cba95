//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the span names, attribute keys and helpers shared by
// the tracing and metric packages.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// telemetry service constants.
const (
	ServiceName      = "legal-agent"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-legal-agent-go"
	InstrumentName   = "trpc.legal.agent.go"

	SpanNameSession           = "legal-agent-session"
	SpanNamePrefixExecuteTool = "execute_tool"
	SpanNamePrefixAgentCall   = "agent"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// telemetry attribute keys.
const (
	KeyRequestedQuery = "requested_query"
	KeyCasesJSON      = "cases_json"
	KeyResult         = "result"

	KeyInvocationID = "legal.agent.invocation_id"
	KeyAgentID      = "legal.agent.agent_id"
	KeyThreadID     = "legal.agent.thread_id"
	KeyRunID        = "legal.agent.run_id"
	KeyRunStatus    = "legal.agent.run_status"
	KeyToolCallID   = "legal.agent.tool_call_id"
	KeyToolCallArgs = "legal.agent.tool_call_args"
	KeyToolOutcome  = "legal.agent.tool_outcome"
)

// NewExecuteToolSpanName returns the span name of a tool invocation.
func NewExecuteToolSpanName(toolName string) string {
	return fmt.Sprintf("%s %s", SpanNamePrefixExecuteTool, toolName)
}

// NewAgentCallSpanName returns the span name of a remote agent service call.
func NewAgentCallSpanName(op string) string {
	return fmt.Sprintf("%s %s", SpanNamePrefixAgentCall, op)
}

// TraceToolCall annotates a tool span. Arguments are recorded only when
// recordContent is set since they carry user text.
func TraceToolCall(span trace.Span, name, callID string, args []byte, err error, recordContent bool) {
	span.SetAttributes(
		attribute.String("gen_ai.operation.name", "execute_tool"),
		attribute.String("gen_ai.tool.name", name),
		attribute.String(KeyToolCallID, callID),
	)
	if recordContent {
		span.SetAttributes(attribute.String(KeyToolCallArgs, string(args)))
	}
	if err != nil {
		span.SetAttributes(attribute.String(KeyToolOutcome, "error"))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(attribute.String(KeyToolOutcome, "ok"))
}

// NewGRPCConn creates a gRPC connection to the OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint,
		// TLS terminates at the local collector.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}
