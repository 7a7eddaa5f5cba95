//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package caselaw

import (
	"trpc.group/trpc-go/trpc-legal-agent-go/knowledge/embedder"
	"trpc.group/trpc-go/trpc-legal-agent-go/storage/postgres"
)

const (
	// DefaultEmbeddingModel is the model passed to azure_openai.create_embeddings.
	DefaultEmbeddingModel = "text-embedding-ada-002"
	// DefaultSimilarityThreshold is the cosine distance under which a case counts as related.
	DefaultSimilarityThreshold = 0.8
	// DefaultTable holds the cases and their precomputed opinion embeddings.
	DefaultTable = "cases"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	connString     string
	clientBuilder  postgres.ClientBuilder
	embeddingModel string
	threshold      float64
	table          string
	embedder       embedder.Embedder
}

var defaultOptions = options{
	clientBuilder:  postgres.DefaultClientBuilder,
	embeddingModel: DefaultEmbeddingModel,
	threshold:      DefaultSimilarityThreshold,
	table:          DefaultTable,
}

// WithConnString sets the database connection, a URI or a key=value DSN.
func WithConnString(connString string) Option {
	return func(o *options) {
		o.connString = connString
	}
}

// WithClientBuilder replaces the builder used to open a client for every query.
func WithClientBuilder(builder postgres.ClientBuilder) Option {
	return func(o *options) {
		if builder != nil {
			o.clientBuilder = builder
		}
	}
}

// WithEmbeddingModel sets the embedding model name used by the database side
// embedding function.
func WithEmbeddingModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.embeddingModel = model
		}
	}
}

// WithSimilarityThreshold sets the distance threshold used by Count.
func WithSimilarityThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithTable overrides the cases table name.
func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithEmbedder switches to client side embedding: the query is embedded by e
// and bound as a pgvector parameter instead of calling azure_openai.create_embeddings.
func WithEmbedder(e embedder.Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}
