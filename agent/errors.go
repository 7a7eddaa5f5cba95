//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package agent

import "errors"

// ErrNotFound is returned by Service.GetAgent when no agent has the id.
var ErrNotFound = errors.New("agent: not found")
