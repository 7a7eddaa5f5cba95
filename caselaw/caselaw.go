//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package caselaw runs vector similarity queries over the Washington State
// case law table. Every call opens its own database client and closes it
// before returning.
package caselaw

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	itelemetry "trpc.group/trpc-go/trpc-legal-agent-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
	"trpc.group/trpc-go/trpc-legal-agent-go/storage/postgres"
)

const (
	// DateLayout is the accepted date format.
	DateLayout = "2006-01-02"
	// DefaultStartDate is the earliest decision date searched by default.
	DefaultStartDate = "1911-01-01"
	// DefaultEndDate is the latest decision date searched by default.
	DefaultEndDate = "2025-12-31"
	// DefaultLimit bounds the number of returned cases.
	DefaultLimit = 10
)

// SearchQuery is one similarity search over a decision date window.
// StartDate and EndDate are inclusive.
type SearchQuery struct {
	Text      string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// NewSearchQuery validates and fills defaults for a search. Empty dates take
// DefaultStartDate and DefaultEndDate, a zero limit takes DefaultLimit.
func NewSearchQuery(text, startDate, endDate string, limit int) (SearchQuery, error) {
	if strings.TrimSpace(text) == "" {
		return SearchQuery{}, ErrEmptyQuery
	}
	start, err := parseDate(startDate, DefaultStartDate)
	if err != nil {
		return SearchQuery{}, err
	}
	end, err := parseDate(endDate, DefaultEndDate)
	if err != nil {
		return SearchQuery{}, err
	}
	limit, err = normalizeLimit(limit)
	if err != nil {
		return SearchQuery{}, err
	}
	return SearchQuery{Text: text, StartDate: start, EndDate: end, Limit: limit}, nil
}

func parseDate(value, def string) (time.Time, error) {
	if value == "" {
		value = def
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
	}
	return t, nil
}

func normalizeLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultLimit, nil
	case limit < 0:
		return 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	default:
		return limit, nil
	}
}

// CaseRecord is one row of a similarity search. Similarity is the cosine
// distance to the query, lower is more similar.
type CaseRecord struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Opinion    string  `json:"opinion"`
	Similarity float64 `json:"similarity"`
}

// Store queries the cases table.
type Store struct {
	opts options
}

// New creates a Store.
func New(opts ...Option) (*Store, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !tableNamePattern.MatchString(o.table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, o.table)
	}
	if o.connString == "" {
		return nil, ErrNoConnection
	}
	return &Store{opts: o}, nil
}

// EmbeddingModel returns the model used to embed queries.
func (s *Store) EmbeddingModel() string {
	if s.opts.embedder != nil {
		return s.opts.embedder.Model()
	}
	return s.opts.embeddingModel
}

// Search returns at most q.Limit cases decided within the window, most
// similar first.
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]CaseRecord, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}

	query, args, err := s.buildSearchQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	recordQuery(ctx, query)

	records := make([]CaseRecord, 0, q.Limit)
	err = s.query(ctx, func(rows *sql.Rows) error {
		for rows.Next() {
			var (
				rec     CaseRecord
				name    sql.NullString
				opinion sql.NullString
			)
			if err := rows.Scan(&rec.ID, &name, &opinion, &rec.Similarity); err != nil {
				return fmt.Errorf("caselaw: scan case: %w", err)
			}
			rec.Name = name.String
			rec.Opinion = opinion.String
			records = append(records, rec)
		}
		return nil
	}, query, args...)
	if err != nil {
		return nil, err
	}
	log.Debugf("caselaw: search %q returned %d cases", q.Text, len(records))
	return records, nil
}

// Count returns the number of cases whose distance to text is below the
// similarity threshold. A zero limit takes DefaultLimit.
func (s *Store) Count(ctx context.Context, text string, limit int) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyQuery
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return 0, err
	}

	query, args, err := s.buildCountQuery(ctx, text, limit)
	if err != nil {
		return 0, err
	}
	recordQuery(ctx, query)

	var count int64
	err = s.query(ctx, func(rows *sql.Rows) error {
		if rows.Next() {
			if err := rows.Scan(&count); err != nil {
				return fmt.Errorf("caselaw: scan count: %w", err)
			}
		}
		return nil
	}, query, args...)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// query opens a client, runs one statement and closes the client.
func (s *Store) query(ctx context.Context, fn postgres.HandlerFunc, query string, args ...any) error {
	client, err := s.opts.clientBuilder(ctx, postgres.WithClientConnString(s.opts.connString))
	if err != nil {
		return fmt.Errorf("caselaw: connect: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warnf("caselaw: close client: %v", err)
		}
	}()

	if err := client.Query(ctx, fn, query, args...); err != nil {
		return fmt.Errorf("caselaw: %w", err)
	}
	return nil
}

func recordQuery(ctx context.Context, query string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(itelemetry.KeyRequestedQuery, query))
}
