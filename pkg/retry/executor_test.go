package retry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kagelabs/flowpipe/pkg/types"
)

func TestExecuteSucceedsOnFirstAttempt(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	result, err := Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if result != "ok" {
		t.Errorf("Execute() = %q, want %q", result, "ok")
	}

	stats := executor.GetStats()
	if stats.TotalAttempts != 1 || stats.TotalSuccesses != 1 || stats.TotalRetries != 0 {
		t.Errorf("GetStats() = {TotalAttempts:%d TotalSuccesses:%d TotalRetries:%d}, want 1 attempt, 1 success, 0 retries", stats.TotalAttempts, stats.TotalSuccesses, stats.TotalRetries)
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	var attempts int32
	result, err := Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return "", types.ErrTimeout
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if result != "recovered" {
		t.Errorf("Execute() = %q, want %q", result, "recovered")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}

	stats := executor.GetStats()
	if stats.TotalAttempts != 3 || stats.TotalRetries != 1 {
		t.Errorf("GetStats() = {TotalAttempts:%d TotalRetries:%d}, want 3 attempts, 1 retry", stats.TotalAttempts, stats.TotalRetries)
	}
}

func TestExecuteGivesUpAfterMaxAttempts(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	var attempts int32
	_, err := Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", types.ErrTimeout
	})
	if err == nil {
		t.Fatal("Execute() error = nil, want an error after exhausting attempts")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if stats := executor.GetStats(); stats.TotalFailures != 1 {
		t.Errorf("GetStats().TotalFailures = %d, want 1", stats.TotalFailures)
	}
}

func TestExecuteStopsImmediatelyOnNonRetryableError(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	var attempts int32
	_, err := Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", types.ErrPipelineClosed
	})
	if err == nil {
		t.Fatal("Execute() error = nil, want an error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1 (non-retryable error must not retry)", got)
	}
	if stats := executor.GetStats(); stats.TotalRetries != 0 {
		t.Errorf("GetStats().TotalRetries = %d, want 0", stats.TotalRetries)
	}
}

func TestExecuteHonorsBackoffStrategyOverOwnPolicyDelay(t *testing.T) {
	policy := NewFixedDelayRetry(5, 200*time.Millisecond)
	backoff := NewFixedBackoff(5 * time.Millisecond)
	executor := NewRetryExecutor(policy, WithBackoffStrategy(backoff))

	var attempts int32
	start := time.Now()
	_, err := Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return "", types.ErrTimeout
		}
		return "done", nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	// Two retries at the backoff's 5ms delay should finish well under the
	// policy's own 200ms delay, proving the override actually took effect.
	if elapsed > 100*time.Millisecond {
		t.Errorf("elapsed = %v, want well under the policy's own delay (backoff override not applied)", elapsed)
	}
}

func TestExecuteAbortsOnContextCancellation(t *testing.T) {
	policy := NewFixedDelayRetry(3, 100*time.Millisecond)
	executor := NewRetryExecutor(policy)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	var attempts int32
	_, err := Execute(executor, ctx, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&attempts, 1)
		return "", types.ErrTimeout
	})
	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if atomic.LoadInt32(&attempts) < 1 {
		t.Error("attempts = 0, want at least 1")
	}
}

func TestExecuteAbortsOnContextDeadline(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Execute(executor, ctx, func(ctx context.Context) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "", types.ErrTimeout
	})
	if err != context.DeadlineExceeded {
		t.Errorf("Execute() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestExecuteAsyncDeliversResultOnChannel(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	var attempts int32
	resultChan := ExecuteAsync(executor, context.Background(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&attempts, 1) < 2 {
			return "", types.ErrTimeout
		}
		return "async-ok", nil
	})

	select {
	case result := <-resultChan:
		if result.Error != nil {
			t.Fatalf("result.Error = %v, want nil", result.Error)
		}
		if result.Value != "async-ok" {
			t.Errorf("result.Value = %q, want %q", result.Value, "async-ok")
		}
		if result.Duration <= 0 {
			t.Error("result.Duration = 0, want > 0")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for async result")
	}

	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestEventHandlerObservesRetryAndSuccess(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)

	var events []string
	executor := NewRetryExecutor(policy, WithEventHandler(&recordingEventHandler{events: &events}))

	var attempts int32
	_, err := Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return "", types.ErrTimeout
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	var sawAttempt, sawSuccess bool
	for _, event := range events {
		switch event {
		case "retry_attempt":
			sawAttempt = true
		case "retry_success":
			sawSuccess = true
		}
	}
	if !sawAttempt {
		t.Error("expected a retry_attempt event")
	}
	if !sawSuccess {
		t.Error("expected a retry_success event")
	}
}

func TestStatsAccumulateAcrossCalls(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	var attempts1 int32
	Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&attempts1, 1) < 2 {
			return "", types.ErrTimeout
		}
		return "ok", nil
	})

	var attempts2 int32
	Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		atomic.AddInt32(&attempts2, 1)
		return "", types.ErrTimeout
	})

	stats := executor.GetStats()
	if stats.TotalAttempts != 5 {
		t.Errorf("TotalAttempts = %d, want 5", stats.TotalAttempts)
	}
	if stats.TotalSuccesses != 1 {
		t.Errorf("TotalSuccesses = %d, want 1", stats.TotalSuccesses)
	}
	if stats.TotalFailures != 1 {
		t.Errorf("TotalFailures = %d, want 1", stats.TotalFailures)
	}
	if stats.TotalRetries != 2 {
		t.Errorf("TotalRetries = %d, want 2", stats.TotalRetries)
	}
	if stats.AverageAttempts != 2.5 {
		t.Errorf("AverageAttempts = %v, want 2.5", stats.AverageAttempts)
	}
}

func TestResetStatsClearsAccumulatedCounts(t *testing.T) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	Execute(executor, context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	executor.ResetStats()

	stats := executor.GetStats()
	if stats.TotalAttempts != 0 || stats.TotalSuccesses != 0 {
		t.Errorf("GetStats() after reset = {TotalAttempts:%d TotalSuccesses:%d}, want all zero", stats.TotalAttempts, stats.TotalSuccesses)
	}
}

// recordingEventHandler captures which EventHandler callbacks fired, in order.
type recordingEventHandler struct {
	events *[]string
}

func (h *recordingEventHandler) OnRetryAttempt(ctx context.Context, attempt int, err error) {
	*h.events = append(*h.events, "retry_attempt")
}

func (h *recordingEventHandler) OnRetrySuccess(ctx context.Context, attempt int, duration time.Duration) {
	*h.events = append(*h.events, "retry_success")
}

func (h *recordingEventHandler) OnRetryFailure(ctx context.Context, attempt int, err error) {
	*h.events = append(*h.events, "retry_failure")
}

func (h *recordingEventHandler) OnMaxAttemptsReached(ctx context.Context, attempt int, err error) {
	*h.events = append(*h.events, "max_attempts_reached")
}

func BenchmarkExecuteNoRetry(b *testing.B) {
	policy := NewFixedDelayRetry(3, 10*time.Millisecond)
	executor := NewRetryExecutor(policy)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Execute(executor, context.Background(), func(ctx context.Context) (int, error) {
			return i, nil
		})
	}
}

func BenchmarkExecuteWithRetry(b *testing.B) {
	policy := NewFixedDelayRetry(3, 1*time.Millisecond)
	executor := NewRetryExecutor(policy)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var attempts int32
		Execute(executor, context.Background(), func(ctx context.Context) (int, error) {
			if atomic.AddInt32(&attempts, 1) < 2 {
				return 0, types.ErrTimeout
			}
			return i, nil
		})
	}
}

func BenchmarkExecuteAsync(b *testing.B) {
	policy := NewFixedDelayRetry(3, 1*time.Millisecond)
	executor := NewRetryExecutor(policy)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resultChan := ExecuteAsync(executor, context.Background(), func(ctx context.Context) (int, error) {
			return i, nil
		})
		<-resultChan
	}
}
