package pipeline

import (
	"context"

	"github.com/kagelabs/flowpipe/pkg/retry"
	"github.com/kagelabs/flowpipe/pkg/types"
)

// Fallible adapts a stage function that can fail into the pure func(I) O
// every builder constructor requires, by retrying it through a
// retry.RetryExecutor built from policy (and, via opts, an optional
// retry.BackoffStrategy overriding the policy's own delay curve). Once the
// executor's retries are exhausted it panics with the wrapped error — the
// worker-loop recovery path in stage.go turns that into a *StageError,
// handled per the pipeline's PanicPolicy exactly like any other in-flight
// stage failure.
//
// policy must not be nil; Fallible panics immediately (at construction time,
// in the caller's own goroutine, before any worker exists) if it is.
func Fallible[I, O any](fn func(I) (O, error), policy retry.RetryPolicy, clock types.Clock, opts ...retry.ExecutorOption) func(I) O {
	if policy == nil {
		panic("pipeline: Fallible requires a non-nil retry.RetryPolicy")
	}
	if fn == nil {
		panic("pipeline: Fallible requires a non-nil stage function")
	}
	if clock == nil {
		clock = types.NewRealClock()
	}

	executorOpts := append([]retry.ExecutorOption{retry.WithClock(clock)}, opts...)
	executor := retry.NewRetryExecutor(policy, executorOpts...)

	return func(in I) O {
		out, err := retry.Execute(executor, context.Background(), func(context.Context) (O, error) {
			return fn(in)
		})
		if err != nil {
			panic(err)
		}
		return out
	}
}
