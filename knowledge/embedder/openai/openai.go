//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI (or Azure OpenAI) embedder.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-legal-agent-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
)

var _ embedder.Embedder = (*Embedder)(nil)

const (
	// DefaultModel matches the model the cases table was embedded with.
	DefaultModel = "text-embedding-ada-002"

	textEmbedding3Prefix = "text-embedding-3"
)

// Embedder implements embedder.Embedder on the embeddings endpoint.
type Embedder struct {
	client         openai.Client
	model          string
	dimensions     int
	requestOptions []option.RequestOption
}

// Option configures the Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model or Azure deployment name.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions requests a reduced dimensionality.
// Only text-embedding-3 models honour it.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// WithRequestOptions sets the client options, for example
// azure.WithEndpoint and azure.WithTokenCredential.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(e *Embedder) {
		e.requestOptions = append(e.requestOptions, opts...)
	}
}

// New creates an Embedder.
func New(opts ...Option) *Embedder {
	e := &Embedder{model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	e.client = openai.NewClient(e.requestOptions...)
	return e
}

// Model implements embedder.Embedder.
func (e *Embedder) Model() string {
	return e.model
}

// Embed implements embedder.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("embedder: text cannot be empty")
	}

	request := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormat("float"),
	}
	if e.dimensions > 0 && strings.HasPrefix(e.model, textEmbedding3Prefix) {
		request.Dimensions = openai.Int(int64(e.dimensions))
	}

	response, err := e.client.Embeddings.New(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("embedder: create embedding: %w", err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		log.Warnf("embedder: model %s returned no vector", e.model)
		return nil, embedder.ErrEmptyEmbedding
	}

	vec := make([]float32, len(response.Data[0].Embedding))
	for i, v := range response.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
