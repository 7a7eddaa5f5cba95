//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-legal-agent-go/internal/poll"
)

var (
	// ErrNoToolCalls is set on a Result when the run asked for tool outputs
	// without listing any call. The run is cancelled.
	ErrNoToolCalls = errors.New("runner: required action has no tool calls")

	// ErrPollTimeout is returned when the run is still active after the max wait.
	ErrPollTimeout = fmt.Errorf("runner: run still active: %w", poll.ErrTimeout)

	// ErrNoModel is returned when an agent must be created without a model.
	ErrNoModel = errors.New("runner: no model to create the agent with")
)
