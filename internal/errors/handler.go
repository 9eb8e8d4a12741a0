// Package errors implements the stage-panic handling pkg/pipeline's ctrl
// dispatches to: a small ErrorHandler interface, the two handlers a
// pipeline's PanicPolicy selects between, and the registry that looks one
// up by name.
package errors

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrorHandler decides what happens to a recovered stage panic: return it
// unchanged (the pipeline stops) or swallow it (return nil, the pipeline
// keeps running).
type ErrorHandler interface {
	HandleError(ctx context.Context, errCtx *ErrorContext) error
	Name() string
}

// ErrorContext is the diagnostic record built for a single recovered panic:
// which stage, what operation was running, and when.
type ErrorContext struct {
	Error         error
	OperationName string
	InputData     interface{}
	Timestamp     time.Time
}

// NewErrorContext builds an ErrorContext for err, stamped with the current
// time.
func NewErrorContext(err error, operationName string, inputData interface{}) *ErrorContext {
	return &ErrorContext{
		Error:         err,
		OperationName: operationName,
		InputData:     inputData,
		Timestamp:     time.Now(),
	}
}

// FailFastHandler echoes every error back unchanged, telling the caller to
// stop. It backs PanicPolicyStop.
type FailFastHandler struct{}

// NewFailFastHandler creates a FailFastHandler.
func NewFailFastHandler() *FailFastHandler {
	return &FailFastHandler{}
}

func (h *FailFastHandler) HandleError(ctx context.Context, errCtx *ErrorContext) error {
	return errCtx.Error
}

func (h *FailFastHandler) Name() string { return "FailFast" }

// ContinueOnErrorHandler swallows every error (returns nil), optionally
// logging it first. It backs PanicPolicyContinue.
type ContinueOnErrorHandler struct {
	logErrors bool
	mu        sync.Mutex
}

// NewContinueOnErrorHandler creates a ContinueOnErrorHandler. logErrors
// controls whether a swallowed error is printed before being dropped.
func NewContinueOnErrorHandler(logErrors bool) *ContinueOnErrorHandler {
	return &ContinueOnErrorHandler{logErrors: logErrors}
}

func (h *ContinueOnErrorHandler) HandleError(ctx context.Context, errCtx *ErrorContext) error {
	h.mu.Lock()
	logErrors := h.logErrors
	h.mu.Unlock()

	if logErrors {
		fmt.Printf("[%s] ignored error in operation %s: %v\n",
			time.Now().Format(time.RFC3339), errCtx.OperationName, errCtx.Error)
	}
	return nil
}

func (h *ContinueOnErrorHandler) Name() string { return "ContinueOnError" }

// HandlerRegistry looks up an ErrorHandler by name. pipeline.ctrl builds one
// per pipeline and resolves the handler for its PanicPolicy at construction
// time rather than branching on the policy enum at panic time.
type HandlerRegistry struct {
	handlers       map[string]ErrorHandler
	defaultHandler ErrorHandler
	mu             sync.RWMutex
}

// NewHandlerRegistry creates a registry pre-populated with the two built-in
// handlers, defaulting to FailFast.
func NewHandlerRegistry() *HandlerRegistry {
	failFast := NewFailFastHandler()
	registry := &HandlerRegistry{
		handlers:       make(map[string]ErrorHandler),
		defaultHandler: failFast,
	}
	registry.handlers[failFast.Name()] = failFast

	continueOnError := NewContinueOnErrorHandler(true)
	registry.handlers[continueOnError.Name()] = continueOnError

	return registry
}

// RegisterHandler adds handler under its own Name(), failing if that name
// is already registered.
func (r *HandlerRegistry) RegisterHandler(handler ErrorHandler) error {
	if handler == nil {
		return fmt.Errorf("cannot register nil handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := handler.Name()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler with name %s already exists", name)
	}
	r.handlers[name] = handler
	return nil
}

// GetHandler looks up a handler by name.
func (r *HandlerRegistry) GetHandler(name string) (ErrorHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("handler with name %s not found", name)
	}
	return handler, nil
}

// GetDefaultHandler returns the registry's fallback handler.
func (r *HandlerRegistry) GetDefaultHandler() ErrorHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultHandler
}

// ListHandlers returns the names of every registered handler.
func (r *HandlerRegistry) ListHandlers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
