// Package retry implements the retry-or-give-up decision (RetryPolicy),
// the delay curve between attempts (BackoffStrategy), and the loop that
// drives a function through both (RetryExecutor).
//
// The two concerns are deliberately independent: a RetryPolicy decides
// whether an error is worth retrying and when to stop; a BackoffStrategy
// only decides how long to wait. pipeline.Fallible wires a RetryPolicy in
// unconditionally and accepts an optional BackoffStrategy override via
// retry.WithBackoffStrategy, so a stage can use a policy's own delay curve
// most of the time and swap in a different one (say, exponential with
// jitter) without touching its retry condition:
//
//	policy := retry.NewFixedDelayRetry(5, 10*time.Millisecond)
//	backoff := retry.NewExponentialBackoff(2*time.Millisecond,
//		retry.WithBackoffMaxDelay(50*time.Millisecond))
//	stage := pipeline.Fallible(flaky, policy, clock, retry.WithBackoffStrategy(backoff))
//
// Used directly, without a pipeline stage, the same pieces compose as:
//
//	executor := retry.NewRetryExecutor(policy, retry.WithBackoffStrategy(backoff))
//	result, err := retry.Execute(executor, ctx, func(ctx context.Context) (string, error) {
//		return doSomething()
//	})
//
// RetryExecutor also accepts a CircuitBreaker (to refuse attempts outright
// once a downstream dependency is known to be failing) and an EventHandler
// (to observe each attempt as it happens) via WithCircuitBreaker and
// WithEventHandler, and tracks per-executor RetryStats across calls.
package retry
