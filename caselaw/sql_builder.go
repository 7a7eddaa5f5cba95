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
	"context"
	"fmt"
	"regexp"

	"github.com/pgvector/pgvector-go"
)

var (
	fieldID           = "id"
	fieldName         = "name"
	fieldOpinion      = "opinion"
	fieldVector       = "opinions_vector"
	fieldDecisionDate = "decision_date"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

const (
	// sqlSearchCases orders by cosine distance, most similar first.
	sqlSearchCases = `SELECT %s, %s, %s, %s <=> %s AS similarity FROM %s WHERE %s BETWEEN %s AND %s ORDER BY similarity LIMIT %s`

	// sqlCountCases keeps the LIMIT of the deployed query. LIMIT bounds the
	// number of result rows, and COUNT(*) yields a single row, so the limit never
	// caps the count itself.
	sqlCountCases = `SELECT COUNT(*) FROM %s WHERE %s <=> %s < %s LIMIT %s`

	sqlServerEmbedding = `azure_openai.create_embeddings(%s, %s)::vector`
	sqlBoundVector     = `%s::vector`
)

// queryBuilder collects positional arguments for one statement.
type queryBuilder struct {
	args     []any
	argIndex int
	// vectorExpr is the SQL expression producing the query embedding.
	vectorExpr string
}

func (qb *queryBuilder) addArg(v any) string {
	placeholder := fmt.Sprintf("$%d", qb.argIndex)
	qb.args = append(qb.args, v)
	qb.argIndex++
	return placeholder
}

// newQueryBuilder prepares the embedding expression for text. With an embedder
// configured the vector is computed here and bound, otherwise the database
// embeds the text itself.
func (s *Store) newQueryBuilder(ctx context.Context, text string) (*queryBuilder, error) {
	qb := &queryBuilder{argIndex: 1}
	if s.opts.embedder == nil {
		model := qb.addArg(s.opts.embeddingModel)
		query := qb.addArg(text)
		qb.vectorExpr = fmt.Sprintf(sqlServerEmbedding, model, query)
		return qb, nil
	}

	vec, err := s.opts.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("caselaw: embed query: %w", err)
	}
	qb.vectorExpr = fmt.Sprintf(sqlBoundVector, qb.addArg(pgvector.NewVector(vec)))
	return qb, nil
}

func (s *Store) buildSearchQuery(ctx context.Context, q SearchQuery) (string, []any, error) {
	qb, err := s.newQueryBuilder(ctx, q.Text)
	if err != nil {
		return "", nil, err
	}
	start := qb.addArg(q.StartDate)
	end := qb.addArg(q.EndDate)
	limit := qb.addArg(q.Limit)
	sql := fmt.Sprintf(sqlSearchCases,
		fieldID, fieldName, fieldOpinion, fieldVector, qb.vectorExpr,
		s.opts.table, fieldDecisionDate, start, end, limit)
	return sql, qb.args, nil
}

func (s *Store) buildCountQuery(ctx context.Context, text string, limit int) (string, []any, error) {
	qb, err := s.newQueryBuilder(ctx, text)
	if err != nil {
		return "", nil, err
	}
	threshold := qb.addArg(s.opts.threshold)
	lim := qb.addArg(limit)
	sql := fmt.Sprintf(sqlCountCases, s.opts.table, fieldVector, qb.vectorExpr, threshold, lim)
	return sql, qb.args, nil
}
