package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	pipelineerrors "github.com/kagelabs/flowpipe/internal/errors"
)

// defaultIdlePollInterval is how often WaitUntilIdle re-polls Idle() when the
// caller's Config does not override it.
const defaultIdlePollInterval = 2 * time.Millisecond

// ctrl is the shared state every stage worker in a pipeline reads or writes:
// the monotone stop flag, the optional pause flag (producer heads only), the
// per-stage in-flight counters Idle() inspects, and the first recorded
// StageError. It is created once per pipeline and referenced by every
// worker's closure.
type ctrl struct {
	stop  atomic.Bool
	pause atomic.Bool

	inFlight []atomic.Int64
	wg       sync.WaitGroup

	panicPolicy PanicPolicy
	handler     pipelineerrors.ErrorHandler

	errMu    sync.Mutex
	firstErr *StageError
}

// panicHandlerNames maps a PanicPolicy to the name under which its handler
// is registered in the HandlerRegistry built by newCtrl.
var panicHandlerNames = map[PanicPolicy]string{
	PanicPolicyStop:     "FailFast",
	PanicPolicyContinue: "ContinueOnError",
}

func newCtrl(stageCount int, panicPolicy PanicPolicy) *ctrl {
	registry := pipelineerrors.NewHandlerRegistry()
	name, known := panicHandlerNames[panicPolicy]
	if !known {
		name = panicHandlerNames[PanicPolicyStop]
	}
	handler, err := registry.GetHandler(name)
	if err != nil {
		handler = registry.GetDefaultHandler()
	}
	return &ctrl{
		inFlight:    make([]atomic.Int64, stageCount),
		panicPolicy: panicPolicy,
		handler:     handler,
	}
}

func (c *ctrl) stopped() bool { return c.stop.Load() }

func (c *ctrl) paused() bool { return c.pause.Load() }

// recordPanic stores the first StageError seen and asks the handler registry
// whether the failure should bring the pipeline down. A FailFastHandler
// (PanicPolicyStop) always echoes the error back and the stop flag is set; a
// ContinueOnErrorHandler (PanicPolicyContinue) reports the error handled
// (nil) and every other stage keeps running.
func (c *ctrl) recordPanic(stage int, r interface{}) {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)

	panicErr, ok := r.(error)
	if !ok {
		panicErr = fmt.Errorf("%v", r)
	}
	errCtx := pipelineerrors.NewErrorContext(panicErr, fmt.Sprintf("stage-%d", stage), nil)

	c.errMu.Lock()
	if c.firstErr == nil {
		c.firstErr = &StageError{Stage: stage, Panic: r, Stack: string(buf[:n]), Context: errCtx}
	}
	c.errMu.Unlock()

	if c.handler.HandleError(context.Background(), errCtx) != nil {
		c.stop.Store(true)
	}
}

func (c *ctrl) err() *StageError {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.firstErr
}

// inFlightTotal sums every stage's in-flight counter; used by Idle().
func (c *ctrl) inFlightTotal() int64 {
	var total int64
	for i := range c.inFlight {
		total += c.inFlight[i].Load()
	}
	return total
}
