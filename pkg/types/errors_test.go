package types

import (
	"errors"
	"testing"
	"time"
)

func TestSentinelErrorsAreNonEmpty(t *testing.T) {
	sentinels := []error{
		ErrPipelineClosed,
		ErrPipelineStopped,
		ErrTimeout,
		ErrWorkerPoolFull,
		ErrStreamClosed,
	}

	for _, err := range sentinels {
		if err == nil {
			t.Fatal("sentinel error is nil")
		}
		if err.Error() == "" {
			t.Errorf("%T has an empty message", err)
		}
	}
}

func TestPipelineErrorCarriesOperationAndInput(t *testing.T) {
	cause := errors.New("boom")
	err := NewPipelineError("validate-batch", "row-42", cause)

	if err.Operation != "validate-batch" {
		t.Errorf("Operation = %q, want %q", err.Operation, "validate-batch")
	}
	if err.Input != "row-42" {
		t.Errorf("Input = %v, want %q", err.Input, "row-42")
	}
	if err.Cause != cause {
		t.Error("Cause does not reference the wrapped error")
	}

	want := "pipeline error in operation validate-batch: boom"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPipelineErrorUnwrapsToCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewPipelineError("decode", "payload", cause)

	if got := errors.Unwrap(err); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestPipelineErrorIsMatchesOnlyItsOwnCause(t *testing.T) {
	err := NewPipelineError("fetch", "key", ErrTimeout)

	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = false, want true")
	}
	if errors.Is(err, ErrPipelineStopped) {
		t.Error("errors.Is(err, ErrPipelineStopped) = true, want false")
	}
}

func TestPipelineErrorWithContextAccumulates(t *testing.T) {
	err := NewPipelineError("retry", "payload", errors.New("transient"))

	err.WithContext("attempt", 2)
	err.WithContext("deadline", time.Now())

	if len(err.Context) != 2 {
		t.Fatalf("len(Context) = %d, want 2", len(err.Context))
	}
	if err.Context["attempt"] != 2 {
		t.Errorf("Context[\"attempt\"] = %v, want 2", err.Context["attempt"])
	}
}

func TestRetryableErrorReportsItsOwnFlagAndDelay(t *testing.T) {
	cause := errors.New("connection reset")
	err := &RetryableError{Err: cause, Retryable: true, RetryAfter: 5 * time.Second}

	if err.Error() != cause.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), cause.Error())
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() did not return the wrapped cause")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false, want true")
	}
	if got := GetRetryDelay(err); got != 5*time.Second {
		t.Errorf("GetRetryDelay() = %v, want 5s", got)
	}
}

func TestRetryableErrorMarkedFalseHasNoDelay(t *testing.T) {
	err := &RetryableError{Err: errors.New("bad input"), Retryable: false}

	if IsRetryable(err) {
		t.Error("IsRetryable() = true, want false")
	}
	if got := GetRetryDelay(err); got != 0 {
		t.Errorf("GetRetryDelay() = %v, want 0", got)
	}
}

func TestIsRetryableAndGetRetryDelayIgnorePlainErrors(t *testing.T) {
	plain := errors.New("unremarkable failure")

	if IsRetryable(plain) {
		t.Error("IsRetryable(plain error) = true, want false")
	}
	if got := GetRetryDelay(plain); got != 0 {
		t.Errorf("GetRetryDelay(plain error) = %v, want 0", got)
	}
}
