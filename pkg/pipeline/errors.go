package pipeline

import (
	"fmt"
	"reflect"

	pipelineerrors "github.com/kagelabs/flowpipe/internal/errors"
)

// BuildError reports a rejected build: a type-plan violation the Go compiler
// could not catch, such as a nil stage function or a void output in a
// non-terminal position. Every check that can produce a BuildError runs
// before any worker goroutine is spawned, so there is never a partially
// running chain to unwind.
type BuildError struct {
	// Stage is the 1-indexed position of the offending stage, or 0 if the
	// error does not name a specific stage.
	Stage int

	// Reason is a short, human-readable description.
	Reason string

	// Cause is the originating error or recovered panic value, if any.
	Cause error
}

func (e *BuildError) Error() string {
	if e.Stage > 0 {
		if e.Cause != nil {
			return fmt.Sprintf("pipeline: build rejected at stage %d: %s: %v", e.Stage, e.Reason, e.Cause)
		}
		return fmt.Sprintf("pipeline: build rejected at stage %d: %s", e.Stage, e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("pipeline: build rejected: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("pipeline: build rejected: %s", e.Reason)
}

func (e *BuildError) Unwrap() error { return e.Cause }

func newBuildError(stage int, reason string, cause error) *BuildError {
	return &BuildError{Stage: stage, Reason: reason, Cause: cause}
}

func errNilStageFunc(stage int) *BuildError {
	return newBuildError(stage, "stage function is nil", nil)
}

func errVoidMiddle(stage int, t reflect.Type) *BuildError {
	return newBuildError(stage, fmt.Sprintf("stage output type %s is void; only the consumer tail may return struct{}{}", t), nil)
}

// StageError is recorded when a stage function panics mid-run. It carries
// enough to diagnose which stage failed and why, without retrying or
// swallowing the failure silently. Context is the record produced by the
// handler registry that decided whether the pipeline should stop; see
// ctrl.recordPanic.
type StageError struct {
	// Stage is the 1-indexed position of the stage that panicked.
	Stage int

	// Panic is the recovered panic value.
	Panic interface{}

	// Stack is the goroutine stack captured at the point of recovery.
	Stack string

	// Context is the diagnostic record built for the handler registry.
	Context *pipelineerrors.ErrorContext
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %d panicked: %v", e.Stage, e.Panic)
}
