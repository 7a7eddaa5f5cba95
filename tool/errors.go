//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package tool

import "errors"

var (
	// ErrToolNotFound is returned when a call names a tool the registry does not hold.
	ErrToolNotFound = errors.New("tool: not found")
	// ErrUnsupportedCallType is returned for tool calls other than function calls.
	ErrUnsupportedCallType = errors.New("tool: unsupported call type")
	// ErrDuplicateTool is returned when two tools share a name.
	ErrDuplicateTool = errors.New("tool: duplicate name")
	// ErrInvalidTool is returned for a nil tool or a tool without a name.
	ErrInvalidTool = errors.New("tool: invalid tool")
)
