//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package legal exposes the case law search and count tools.
package legal

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-legal-agent-go/caselaw"
	itelemetry "trpc.group/trpc-go/trpc-legal-agent-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool/function"
)

// Tool names as declared to the agent.
const (
	SearchToolName = "vector_search_cases"
	CountToolName  = "count_cases"
)

const (
	searchDescription = "Fetches the cases information in Washington State for the specified query."
	countDescription  = "Count the number of cases related to the specified query. " +
		`Invoke this tool for aggregation, if the user mentions the word "count" or "how many" or a similar word.`
)

// CaseStore is the data access the tools need.
type CaseStore interface {
	Search(ctx context.Context, q caselaw.SearchQuery) ([]caselaw.CaseRecord, error)
	Count(ctx context.Context, text string, limit int) (int64, error)
}

// SearchArgs are the arguments of vector_search_cases.
type SearchArgs struct {
	Query     string `json:"vector_search_query" jsonschema_description:"The query to fetch cases for specifically in Washington."`
	StartDate string `json:"start_date,omitempty" jsonschema:"format=date,default=1911-01-01" jsonschema_description:"The start date for the search (YYYY-MM-DD), defaults to 1911-01-01."`
	EndDate   string `json:"end_date,omitempty" jsonschema:"format=date,default=2025-12-31" jsonschema_description:"The end date for the search (YYYY-MM-DD), defaults to 2025-12-31."`
	Limit     int    `json:"limit,omitempty" jsonschema:"default=10,minimum=1" jsonschema_description:"The maximum number of cases to fetch, defaults to 10."`
}

// CountArgs are the arguments of count_cases.
type CountArgs struct {
	Query string `json:"vector_search_query" jsonschema_description:"The query to search."`
	Limit int    `json:"limit,omitempty" jsonschema:"default=10,minimum=1" jsonschema_description:"The maximum number of cases to fetch, defaults to 10."`
}

// CountResult is one record of the count_cases payload.
type CountResult struct {
	Count int64 `json:"count"`
}

// ToolSet holds the two case law tools.
type ToolSet struct {
	store         CaseStore
	recordContent bool
	tools         []tool.CallableTool
}

// Option configures the ToolSet.
type Option func(*ToolSet)

// WithContentRecording records the returned payloads on the tool span.
func WithContentRecording(enabled bool) Option {
	return func(ts *ToolSet) {
		ts.recordContent = enabled
	}
}

// NewToolSet creates the tool set over store.
func NewToolSet(store CaseStore, opts ...Option) *ToolSet {
	ts := &ToolSet{store: store}
	for _, opt := range opts {
		opt(ts)
	}
	ts.tools = []tool.CallableTool{
		function.NewFunctionTool(ts.searchCases,
			function.WithName(SearchToolName),
			function.WithStrictArguments(),
			function.WithDescription(searchDescription)),
		function.NewFunctionTool(ts.countCases,
			function.WithName(CountToolName),
			function.WithStrictArguments(),
			function.WithDescription(countDescription)),
	}
	return ts
}

// Tools implements tool.ToolSet.
func (ts *ToolSet) Tools(context.Context) []tool.CallableTool {
	return ts.tools
}

// Close implements tool.ToolSet. Connections are per call, so there is nothing to release.
func (ts *ToolSet) Close() error {
	return nil
}

// Name implements tool.ToolSet.
func (ts *ToolSet) Name() string {
	return "legal"
}

// searchCases returns a JSON array of {id, name, opinion, similarity}.
func (ts *ToolSet) searchCases(ctx context.Context, args SearchArgs) (string, error) {
	q, err := caselaw.NewSearchQuery(args.Query, args.StartDate, args.EndDate, args.Limit)
	if err != nil {
		return "", err
	}
	records, err := ts.store.Search(ctx, q)
	if err != nil {
		return "", err
	}
	if records == nil {
		records = []caselaw.CaseRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode cases: %w", err)
	}
	ts.recordPayload(ctx, itelemetry.KeyCasesJSON, payload)
	return string(payload), nil
}

// countCases returns [{"count": N}].
func (ts *ToolSet) countCases(ctx context.Context, args CountArgs) (string, error) {
	count, err := ts.store.Count(ctx, args.Query, args.Limit)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal([]CountResult{{Count: count}})
	if err != nil {
		return "", fmt.Errorf("encode count: %w", err)
	}
	ts.recordPayload(ctx, itelemetry.KeyResult, payload)
	return string(payload), nil
}

func (ts *ToolSet) recordPayload(ctx context.Context, key string, payload []byte) {
	if !ts.recordContent {
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(key, string(payload)))
}
