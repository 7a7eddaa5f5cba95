//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package function wraps typed Go functions as callable tools.
package function

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	itool "trpc.group/trpc-go/trpc-legal-agent-go/internal/tool"
	"trpc.group/trpc-go/trpc-legal-agent-go/log"
	"trpc.group/trpc-go/trpc-legal-agent-go/tool"
)

var _ tool.CallableTool = (*FunctionTool[struct{}, struct{}])(nil)

// FunctionTool calls fn with the model's arguments decoded into I.
type FunctionTool[I, O any] struct {
	decl   tool.Declaration
	fn     func(context.Context, I) (O, error)
	strict bool
}

// Option configures a FunctionTool.
type Option func(*options)

type options struct {
	name        string
	description string
	strict      bool
}

// WithName sets the name the model calls the tool by.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDescription sets the description shown to the model.
func WithDescription(description string) Option {
	return func(o *options) { o.description = description }
}

// WithStrictArguments rejects arguments carrying fields I does not declare.
func WithStrictArguments() Option {
	return func(o *options) { o.strict = true }
}

// NewFunctionTool wraps fn. The input schema is reflected from I once, here.
func NewFunctionTool[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	schema, err := itool.GenerateJSONSchema(reflect.TypeOf((*I)(nil)).Elem())
	if err != nil {
		log.Errorf("function tool %s: %v", o.name, err)
		schema = &tool.Schema{Type: "object"}
	}
	return &FunctionTool[I, O]{
		decl: tool.Declaration{
			Name:        o.name,
			Description: o.description,
			InputSchema: schema,
		},
		fn:     fn,
		strict: o.strict,
	}
}

// Call decodes args into I and calls the wrapped function. Blank arguments
// leave I at its zero value.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, args []byte) (any, error) {
	var input I
	if len(bytes.TrimSpace(args)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(args))
		if ft.strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(&input); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
	}
	return ft.fn(ctx, input)
}

// Declaration returns a copy of the tool's declaration.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	decl := ft.decl
	return &decl
}
