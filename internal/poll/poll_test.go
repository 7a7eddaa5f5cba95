//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_StopsOnDone(t *testing.T) {
	calls := 0
	v, err := Until(context.Background(), time.Millisecond, time.Second, func(context.Context) (int, bool, error) {
		calls++
		return calls, calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 3, calls)
}

func TestUntil_FirstCheckIsImmediate(t *testing.T) {
	start := time.Now()
	v, err := Until(context.Background(), time.Hour, time.Hour, func(context.Context) (string, bool, error) {
		return "completed", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", v)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestUntil_Timeout(t *testing.T) {
	calls := 0
	v, err := Until(context.Background(), 5*time.Millisecond, 30*time.Millisecond, func(context.Context) (string, bool, error) {
		calls++
		return "in_progress", false, nil
	})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "in_progress", v)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestUntil_ErrorStopsPolling(t *testing.T) {
	boom := errors.New("service unavailable")
	calls := 0
	_, err := Until(context.Background(), time.Millisecond, time.Second, func(context.Context) (int, bool, error) {
		calls++
		return 0, false, boom
	})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, calls)
}

func TestUntil_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Until(ctx, time.Millisecond, time.Minute, func(context.Context) (int, bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return calls, false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
