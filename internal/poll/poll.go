//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package poll repeats a status check at a fixed interval until it reports
// done, fails, or runs out of time.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrTimeout is returned when the check is still pending after the max wait.
var ErrTimeout = errors.New("poll: timed out")

var errPending = errors.New("poll: pending")

// CheckFunc reports the latest value and whether polling can stop.
type CheckFunc[T any] func(ctx context.Context) (T, bool, error)

// Until calls check immediately and then every interval until it reports
// done. An error from check stops polling and is returned as is. When
// maxWait is positive and the next attempt would start after it, Until
// returns the last value with ErrTimeout. Cancelling ctx returns its cause.
func Until[T any](ctx context.Context, interval, maxWait time.Duration, check CheckFunc[T]) (T, error) {
	op := func() (T, error) {
		v, done, err := check(ctx)
		if err != nil {
			return v, backoff.Permanent(err)
		}
		if !done {
			return v, errPending
		}
		return v, nil
	}
	v, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxElapsedTime(maxWait),
	)
	if errors.Is(err, errPending) {
		return v, fmt.Errorf("%w after %s", ErrTimeout, maxWait)
	}
	return v, err
}
