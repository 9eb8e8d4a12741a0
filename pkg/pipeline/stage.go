package pipeline

import "github.com/kagelabs/flowpipe/pkg/channel"

// stageDescriptor is the boxed, runtime-erased record of one stage, created
// eagerly the moment its function and channels are known (inside FromProducer/
// FromIngress/Then/ToConsumer, where the concrete types are still visible to
// the Go compiler). By the time spawnAll runs, every descriptor's run
// closure already has everything it needs captured: no further generics, no
// reflection, just a loop over two already-typed channels.
type stageDescriptor struct {
	// run is the goroutine body. It is created once and never invoked more
	// than once; spawnAll calls it in its own goroutine with the stage index.
	run func(c *ctrl, index int)
}

// runProducer drives a producer-head stage: no input, fn invoked repeatedly,
// each result pushed downstream. Spins (does not block) while paused.
func runProducer[O any](fn func() O, out channel.Channel[O]) func(c *ctrl, index int) {
	return func(c *ctrl, index int) {
		for !c.stopped() {
			if c.paused() {
				continue
			}
			c.inFlight[index].Add(1)
			v, ok := safeCall0(c, index, fn)
			if ok {
				out.Push(v)
			}
			c.inFlight[index].Add(-1)
		}
		out.Wake()
	}
}

// runPipe drives every stage shape that both consumes and produces: the
// head-input stage, every middle stage, and the tail-output stage. They are
// indistinguishable at the worker level — only whether `out` is an internal
// channel or the pipeline's exposed egress channel differs, and that
// distinction is invisible here.
func runPipe[I, O any](fn func(I) O, in channel.Channel[I], out channel.Channel[O]) func(c *ctrl, index int) {
	return func(c *ctrl, index int) {
		for {
			v, ok := in.PopUnless(c.stopped)
			if !ok {
				break
			}
			c.inFlight[index].Add(1)
			r, ok := safeCall1(c, index, fn, v)
			if ok {
				out.Push(r)
			}
			c.inFlight[index].Add(-1)
		}
		out.Wake()
	}
}

// runSink drives the consumer-tail stage: consumes, invokes fn for effect,
// produces nothing and wakes no downstream channel.
func runSink[I any](fn func(I), in channel.Channel[I]) func(c *ctrl, index int) {
	return func(c *ctrl, index int) {
		for {
			v, ok := in.PopUnless(c.stopped)
			if !ok {
				break
			}
			c.inFlight[index].Add(1)
			safeCallVoid(c, index, fn, v)
			c.inFlight[index].Add(-1)
		}
	}
}

// safeCall0/safeCall1/safeCallVoid recover a panic raised by a stage
// function, record it on ctrl (see ctrl.recordPanic), and report ok=false so
// the caller knows to skip pushing a value this iteration. PanicPolicy
// (policy.go) decides what happens next.
func safeCall0[O any](c *ctrl, index int, fn func() O) (out O, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(index+1, r)
			ok = false
		}
	}()
	out = fn()
	return out, true
}

func safeCall1[I, O any](c *ctrl, index int, fn func(I) O, in I) (out O, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(index+1, r)
			ok = false
		}
	}()
	out = fn(in)
	return out, true
}

func safeCallVoid[I any](c *ctrl, index int, fn func(I), in I) {
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(index+1, r)
		}
	}()
	fn(in)
}
