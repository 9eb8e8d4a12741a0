package retry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kagelabs/flowpipe/pkg/types"
)

// RetryPolicy decides whether a failed attempt is worth retrying, and how
// long to wait before the next one (absent a BackoffStrategy override).
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	NextDelay(attempt int) time.Duration
	MaxAttempts() int
	Reset()
}

// RetryCondition decides, from the error alone, whether it's worth retrying.
type RetryCondition func(error) bool

// BaseRetryPolicy implements the attempt-counting and jitter logic shared
// by every RetryPolicy below; embed it and supply NextDelay's curve.
type BaseRetryPolicy struct {
	maxAttempts    int
	retryCondition RetryCondition
	jitter         bool
	jitterFactor   float64
	mu             sync.RWMutex
}

// NewBaseRetryPolicy builds a BaseRetryPolicy capped at maxAttempts, using
// DefaultRetryCondition unless overridden by a PolicyOption.
func NewBaseRetryPolicy(maxAttempts int, opts ...PolicyOption) *BaseRetryPolicy {
	policy := &BaseRetryPolicy{
		maxAttempts:    maxAttempts,
		retryCondition: DefaultRetryCondition,
		jitterFactor:   0.1,
	}
	for _, opt := range opts {
		opt(policy)
	}
	return policy
}

func (p *BaseRetryPolicy) ShouldRetry(err error, attempt int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if attempt >= p.maxAttempts {
		return false
	}
	return p.retryCondition(err)
}

func (p *BaseRetryPolicy) MaxAttempts() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxAttempts
}

// Reset is a no-op: the attempt count lives in the executor, not here.
func (p *BaseRetryPolicy) Reset() {}

func (p *BaseRetryPolicy) applyJitter(delay time.Duration) time.Duration {
	if !p.jitter {
		return delay
	}
	jitterRange := float64(delay) * p.jitterFactor
	jitterAmount := (rand.Float64() - 0.5) * 2 * jitterRange
	result := delay + time.Duration(jitterAmount)
	if result < 0 {
		result = delay / 2
	}
	return result
}

// FixedDelayRetry waits the same delay between every attempt.
type FixedDelayRetry struct {
	*BaseRetryPolicy
	delay time.Duration
}

// NewFixedDelayRetry creates a FixedDelayRetry capped at maxAttempts,
// waiting delay between attempts.
func NewFixedDelayRetry(maxAttempts int, delay time.Duration, opts ...PolicyOption) *FixedDelayRetry {
	return &FixedDelayRetry{
		BaseRetryPolicy: NewBaseRetryPolicy(maxAttempts, opts...),
		delay:           delay,
	}
}

func (p *FixedDelayRetry) NextDelay(attempt int) time.Duration {
	return p.applyJitter(p.delay)
}

// ExponentialBackoffRetry doubles (or multiplier-scales) its delay on every
// attempt, up to maxDelay.
type ExponentialBackoffRetry struct {
	*BaseRetryPolicy
	initialDelay time.Duration
	multiplier   float64
	maxDelay     time.Duration
}

// NewExponentialBackoffRetry creates an ExponentialBackoffRetry capped at
// maxAttempts, starting at initialDelay.
func NewExponentialBackoffRetry(maxAttempts int, initialDelay time.Duration, opts ...BackoffOption) *ExponentialBackoffRetry {
	policy := &ExponentialBackoffRetry{
		BaseRetryPolicy: NewBaseRetryPolicy(maxAttempts),
		initialDelay:    initialDelay,
		multiplier:      2.0,
		maxDelay:        30 * time.Second,
	}
	for _, opt := range opts {
		opt.apply(policy)
	}
	return policy
}

func (p *ExponentialBackoffRetry) NextDelay(attempt int) time.Duration {
	delay := time.Duration(float64(p.initialDelay) * math.Pow(p.multiplier, float64(attempt-1)))
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return p.applyJitter(delay)
}

// PolicyOption configures a BaseRetryPolicy at construction time.
type PolicyOption func(*BaseRetryPolicy)

// WithJitter enables jitter on the policy's computed delay.
func WithJitter(enabled bool, factor float64) PolicyOption {
	return func(p *BaseRetryPolicy) {
		p.jitter = enabled
		if factor > 0 && factor <= 1.0 {
			p.jitterFactor = factor
		}
	}
}

// BackoffOption configures an ExponentialBackoffRetry at construction time.
type BackoffOption interface {
	apply(*ExponentialBackoffRetry)
}

type backoffOption struct {
	multiplier *float64
	maxDelay   *time.Duration
}

func (o *backoffOption) apply(p *ExponentialBackoffRetry) {
	if o.multiplier != nil {
		p.multiplier = *o.multiplier
	}
	if o.maxDelay != nil {
		p.maxDelay = *o.maxDelay
	}
}

// WithMultiplier sets the exponential growth multiplier.
func WithMultiplier(multiplier float64) BackoffOption {
	return &backoffOption{multiplier: &multiplier}
}

// WithMaxDelay caps the computed delay.
func WithMaxDelay(maxDelay time.Duration) BackoffOption {
	return &backoffOption{maxDelay: &maxDelay}
}

// DefaultRetryCondition retries types.RetryableError marked retryable and
// the handful of RetryableErrorTypes this package recognizes, and nothing
// else — including a nil error, which by definition needs no retry.
func DefaultRetryCondition(err error) bool {
	if err == nil {
		return false
	}
	if types.IsRetryable(err) {
		return true
	}
	return isRetryableError(err)
}

// RetryableErrorTypes classifies the sentinel errors pkg/types defines:
// timeouts and a full worker pool are transient and worth retrying; a
// closed/stopped pipeline or stream is a terminal state that retrying
// cannot fix. context.Canceled/DeadlineExceeded are never retried here —
// the caller asked to stop.
func RetryableErrorTypes(err error) bool {
	if err == context.DeadlineExceeded || err == context.Canceled {
		return false
	}
	switch err {
	case types.ErrTimeout, types.ErrWorkerPoolFull:
		return true
	case types.ErrPipelineClosed, types.ErrPipelineStopped, types.ErrStreamClosed:
		return false
	default:
		return false
	}
}

// isRetryableError unwraps a *types.PipelineError to classify its Cause
// instead of the wrapper itself.
func isRetryableError(err error) bool {
	if pipelineErr, ok := err.(*types.PipelineError); ok {
		return DefaultRetryCondition(pipelineErr.Cause)
	}
	return RetryableErrorTypes(err)
}
