//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package embedder defines text embedding for client side vector search.
package embedder

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding is returned when the provider answers without a vector.
var ErrEmptyEmbedding = errors.New("embedder: empty embedding")

// Embedder turns text into a vector compatible with the stored case embeddings.
type Embedder interface {
	// Embed returns the embedding of text. An empty vector is reported as
	// ErrEmptyEmbedding rather than returned.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the embedding model name.
	Model() string
}
