package pipeline

import (
	"sync"
	"time"

	"github.com/kagelabs/flowpipe/pkg/channel"
)

// pipelineCore is the state every handle type shares regardless of which
// role combination it exposes: the control block, every channel edge a
// worker reads from (ingress and internal hops, not egress; for
// Idle/Close), and the idempotent Close machinery. Handles embed a pointer
// to this rather than the struct itself so the handle types stay cheap to
// pass around and never risk copying the sync.Once inside.
type pipelineCore struct {
	ctrl  *ctrl
	cfg   Config
	edges []emptyWaker

	closeOnce sync.Once
	closeErr  error
}

func newCore(c *ctrl, cfg Config, edges []emptyWaker) *pipelineCore {
	return &pipelineCore{ctrl: c, cfg: cfg, edges: edges}
}

// Idle reports whether no value is in flight anywhere in the pipeline: the
// ingress and every internal channel are empty and no stage's in-flight
// counter is nonzero. A stage's counter stays raised until its result has
// been pushed downstream, so this is exact, not a channel-emptiness
// approximation. A result already waiting in the egress channel does not
// count as in flight.
func (p *pipelineCore) Idle() bool {
	return allEmpty(p.edges) && p.ctrl.inFlightTotal() == 0
}

// WaitUntilIdle blocks, polling Idle() on cfg.Clock, until it holds.
func (p *pipelineCore) WaitUntilIdle() {
	interval := time.Duration(p.cfg.IdlePollInterval)
	for !p.Idle() {
		p.cfg.Clock.Sleep(interval)
	}
}

// Close is idempotent: it sets the stop flag, wakes every channel edge so no
// worker stays parked on an empty one, and joins every worker goroutine
// before returning. If any stage panicked, under either PanicPolicy, the
// first recorded *StageError is returned.
func (p *pipelineCore) Close() error {
	p.closeOnce.Do(func() {
		p.ctrl.stop.Store(true)
		wakeAll(p.edges)
		p.ctrl.wg.Wait()
		if e := p.ctrl.err(); e != nil {
			p.closeErr = e
		}
	})
	return p.closeErr
}

// Err returns the first *StageError recorded so far, or nil. Safe to call
// before Close.
func (p *pipelineCore) Err() error {
	if e := p.ctrl.err(); e != nil {
		return e
	}
	return nil
}

// Handle is the public surface for a chain built with both caller ingress
// and a polled egress — the common case (ingress<...> → ... → egress).
type Handle[A, O any] struct {
	core    *pipelineCore
	ingress channel.Channel[A]
	egress  channel.Channel[O]
}

// Input pushes args into the ingress channel. Non-blocking under
// PolicyQueue; under a triple-buffer policy it overwrites any previous
// undelivered input.
func (h *Handle[A, O]) Input(args A) { h.ingress.Push(args) }

// WaitGet blocks until the egress channel yields a value.
func (h *Handle[A, O]) WaitGet() O { return h.egress.Pop() }

// TryGet polls the egress channel without blocking.
func (h *Handle[A, O]) TryGet() (O, bool) {
	return h.egress.PopUnless(alwaysTrue)
}

// Available reports whether a value is waiting in the egress channel.
func (h *Handle[A, O]) Available() bool { return !h.egress.Empty() }

// Empty reports the inverse of Available.
func (h *Handle[A, O]) Empty() bool { return h.egress.Empty() }

// Idle reports whether no value is in flight anywhere in the pipeline.
func (h *Handle[A, O]) Idle() bool { return h.core.Idle() }

// WaitUntilIdle blocks until Idle() holds.
func (h *Handle[A, O]) WaitUntilIdle() { h.core.WaitUntilIdle() }

// Close stops every worker and joins every goroutine. Idempotent.
func (h *Handle[A, O]) Close() error { return h.core.Close() }

// Err returns the first recorded stage panic, if any.
func (h *Handle[A, O]) Err() error { return h.core.Err() }

// ConsumerHandle is the public surface for a chain with caller ingress and a
// consumer tail (ingress<...> → ... → Consumer(f)): there is nothing to
// pull, since the consumer already drained it.
type ConsumerHandle[A any] struct {
	core    *pipelineCore
	ingress channel.Channel[A]
}

func (h *ConsumerHandle[A]) Input(args A)     { h.ingress.Push(args) }
func (h *ConsumerHandle[A]) Idle() bool       { return h.core.Idle() }
func (h *ConsumerHandle[A]) WaitUntilIdle()   { h.core.WaitUntilIdle() }
func (h *ConsumerHandle[A]) Close() error     { return h.core.Close() }
func (h *ConsumerHandle[A]) Err() error       { return h.core.Err() }

// SourceHandle is the public surface for a producer-headed chain with a
// polled egress (producer → ... → egress): there is nothing to push, since
// the producer already manufactures its own input.
type SourceHandle[O any] struct {
	core   *pipelineCore
	egress channel.Channel[O]
}

func (h *SourceHandle[O]) WaitGet() O { return h.egress.Pop() }
func (h *SourceHandle[O]) TryGet() (O, bool) {
	return h.egress.PopUnless(alwaysTrue)
}
func (h *SourceHandle[O]) Available() bool  { return !h.egress.Empty() }
func (h *SourceHandle[O]) Empty() bool      { return h.egress.Empty() }
func (h *SourceHandle[O]) Idle() bool       { return h.core.Idle() }
func (h *SourceHandle[O]) WaitUntilIdle()   { h.core.WaitUntilIdle() }
func (h *SourceHandle[O]) Close() error     { return h.core.Close() }
func (h *SourceHandle[O]) Err() error       { return h.core.Err() }

// Pause stops the producer head from pushing further values; it keeps
// spinning (no condition variable on the pause flag), trading CPU for
// simplicity.
func (h *SourceHandle[O]) Pause() { h.core.ctrl.pause.Store(true) }

// Resume lets the producer head push values again.
func (h *SourceHandle[O]) Resume() { h.core.ctrl.pause.Store(false) }

// Producing reports whether the producer head is currently unpaused.
func (h *SourceHandle[O]) Producing() bool { return !h.core.ctrl.paused() }

// SinkHandle is the public surface for a fully automatic chain (producer →
// ... → Consumer(f)): nothing to push, nothing to pull, only lifecycle and
// pause control.
type SinkHandle struct {
	core *pipelineCore
}

func (h *SinkHandle) Idle() bool        { return h.core.Idle() }
func (h *SinkHandle) WaitUntilIdle()    { h.core.WaitUntilIdle() }
func (h *SinkHandle) Close() error      { return h.core.Close() }
func (h *SinkHandle) Err() error        { return h.core.Err() }
func (h *SinkHandle) Pause()            { h.core.ctrl.pause.Store(true) }
func (h *SinkHandle) Resume()           { h.core.ctrl.pause.Store(false) }
func (h *SinkHandle) Producing() bool   { return !h.core.ctrl.paused() }

func alwaysTrue() bool { return true }
