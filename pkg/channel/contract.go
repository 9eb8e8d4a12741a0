// Package channel provides the single-producer/single-consumer hand-off
// channels used between adjacent pipeline stages.
//
// Three variants share the same Channel[T] contract but no implementation
// state: a blocking unbounded (or bounded) queue, a blocking triple-buffer,
// and a lock-free triple-buffer. Each is SPSC only — exactly one goroutine
// may call Push, and exactly one (possibly different) goroutine may call
// Pop/PopUnless. Concurrent pushers or concurrent poppers are undefined
// behavior, same as the upstream pipeline's stage-to-stage wiring guarantees.
package channel

// Channel is the uniform contract shared by every SPSC hand-off variant.
type Channel[T any] interface {
	// Push deposits v. The queue variant never blocks (amortized O(1), or
	// blocks only if built with a finite capacity and that capacity is
	// full); the triple-buffer variants never block, overwriting any
	// undelivered value instead.
	Push(v T)

	// Pop blocks until a value is available and returns it.
	Pop() T

	// PopUnless blocks until either a value is available or pred returns
	// true. ok is false if it woke because of pred with no value pending.
	PopUnless(pred func() bool) (v T, ok bool)

	// Empty reports whether the channel currently holds no undelivered
	// value. Best-effort and advisory — the result may be stale by the
	// time the caller observes it.
	Empty() bool

	// Wake causes every blocked Pop/PopUnless to re-evaluate its wait
	// condition immediately. Idempotent. Used at shutdown to unstick
	// workers parked on an empty channel.
	Wake()
}
