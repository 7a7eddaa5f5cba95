//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package function_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-legal-agent-go/tool/function"
)

type inputArgs struct {
	A int `json:"A" jsonschema_description:"First integer operand"`
	B int `json:"B,omitempty" jsonschema_description:"Second integer operand"`
}

type outputArgs struct {
	Result int `json:"result"`
}

func sum(_ context.Context, args inputArgs) (outputArgs, error) {
	return outputArgs{Result: args.A + args.B}, nil
}

func toArguments(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return json.RawMessage(b)
}

func TestFunctionTool_Call(t *testing.T) {
	fTool := function.NewFunctionTool(sum,
		function.WithName("SumFunction"),
		function.WithDescription("Calculates the sum of two integers."))

	result, err := fTool.Call(context.Background(), toArguments(t, inputArgs{A: 2, B: 3}))
	require.NoError(t, err)
	assert.Equal(t, outputArgs{Result: 5}, result)
}

func TestFunctionTool_Declaration(t *testing.T) {
	fTool := function.NewFunctionTool(sum,
		function.WithName("SumFunction"),
		function.WithDescription("Calculates the sum of two integers."))

	decl := fTool.Declaration()
	assert.Equal(t, "SumFunction", decl.Name)
	assert.Equal(t, "Calculates the sum of two integers.", decl.Description)
	require.NotNil(t, decl.InputSchema)
	assert.Equal(t, "object", decl.InputSchema.Type)
	assert.Equal(t, []string{"A"}, decl.InputSchema.Required)
	assert.Equal(t, "integer", decl.InputSchema.Properties["B"].Type)
	assert.Equal(t, "Second integer operand", decl.InputSchema.Properties["B"].Description)
}

func TestFunctionTool_Errors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		fTool := function.NewFunctionTool(sum, function.WithName("sum"))
		_, err := fTool.Call(context.Background(), []byte(`{"A": "two"}`))
		require.ErrorContains(t, err, "decode arguments")
	})

	t.Run("unknown field in strict mode", func(t *testing.T) {
		fTool := function.NewFunctionTool(sum, function.WithName("sum"), function.WithStrictArguments())
		_, err := fTool.Call(context.Background(), []byte(`{"A": 1, "C": 2}`))
		require.ErrorContains(t, err, "unknown field")

		_, err = function.NewFunctionTool(sum).Call(context.Background(), []byte(`{"A": 1, "C": 2}`))
		require.NoError(t, err)
	})

	t.Run("blank arguments", func(t *testing.T) {
		fTool := function.NewFunctionTool(sum, function.WithStrictArguments())
		result, err := fTool.Call(context.Background(), []byte("  "))
		require.NoError(t, err)
		assert.Equal(t, outputArgs{}, result)
	})

	t.Run("function error", func(t *testing.T) {
		boom := errors.New("boom")
		fTool := function.NewFunctionTool(func(context.Context, inputArgs) (outputArgs, error) {
			return outputArgs{}, boom
		})
		_, err := fTool.Call(context.Background(), []byte(`{"A": 1}`))
		require.ErrorIs(t, err, boom)
	})
}
