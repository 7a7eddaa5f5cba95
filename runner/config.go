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
	"time"
)

// Default polling parameters.
const (
	DefaultPollInterval = time.Second
	DefaultMaxWait      = 10 * time.Minute
)

// Config defines the tunables of a session.
type Config struct {
	// AgentID is the agent to reuse. When empty, or when the service does
	// not know it, a new agent is created.
	AgentID string `json:"agent_id,omitempty"`

	// Model is the model deployment of a created agent.
	Model string `json:"model"`

	// PollInterval is the delay between two run status checks.
	PollInterval time.Duration `json:"poll_interval"`

	// MaxWait bounds the time a run may stay active. Zero waits until the
	// context ends.
	MaxWait time.Duration `json:"max_wait"`

	// DeleteCreatedAgent removes an agent created by the session once the
	// session ends. Reused agents are never deleted.
	DeleteCreatedAgent bool `json:"delete_created_agent"`
}

// DefaultConfig returns a default session configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		MaxWait:      DefaultMaxWait,
	}
}

// WithAgentID sets the agent to reuse.
func (c Config) WithAgentID(id string) Config {
	c.AgentID = id
	return c
}

// WithModel sets the model deployment.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithPolling sets the poll interval and the max wait.
func (c Config) WithPolling(interval, maxWait time.Duration) Config {
	c.PollInterval = interval
	c.MaxWait = maxWait
	return c
}
