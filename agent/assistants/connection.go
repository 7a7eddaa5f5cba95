//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package assistants

import (
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// ErrNoEndpoint is returned when a Connection has no endpoint.
var ErrNoEndpoint = errors.New("assistants: endpoint is empty")

// Connection describes how to reach the Assistants API.
//
// With an APIVersion the endpoint is treated as an Azure resource and
// requests are authenticated with APIKey, or with Credential when no key is
// set. Credential defaults to the Azure default credential chain
// (environment, workload identity, managed identity, Azure CLI).
// Without an APIVersion the endpoint is an OpenAI compatible base URL.
//
// MaxRetries is passed to the SDK as is, so the zero value disables its
// automatic retries. Thread, message, run and tool output creation are not
// idempotent.
type Connection struct {
	Endpoint   string
	APIVersion string
	APIKey     string
	Credential azcore.TokenCredential
	MaxRetries int
}

// IsAzure reports whether requests are sent in the Azure OpenAI dialect.
func (c Connection) IsAzure() bool {
	return c.APIVersion != ""
}

// RequestOptions returns client options for the openai-go SDK. They are shared
// by the assistants service and the embedding client.
func (c Connection) RequestOptions() ([]option.RequestOption, error) {
	if c.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	opts := []option.RequestOption{option.WithMaxRetries(c.MaxRetries)}
	if !c.IsAzure() {
		opts = append(opts, option.WithBaseURL(c.Endpoint))
		if c.APIKey != "" {
			opts = append(opts, option.WithAPIKey(c.APIKey))
		}
		return opts, nil
	}

	opts = append(opts, azure.WithEndpoint(c.Endpoint, c.APIVersion))
	if c.APIKey != "" {
		return append(opts, azure.WithAPIKey(c.APIKey)), nil
	}
	cred := c.Credential
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("assistants: azure credential: %w", err)
		}
		cred = defaultCred
	}
	return append(opts, azure.WithTokenCredential(cred)), nil
}
