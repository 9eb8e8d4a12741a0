package channel

import "sync/atomic"

// control packs the three 2-bit slot indices {write, buffer, read} plus the
// available bit into one word, so a single CAS atomically hands a slot from
// writer to reader (or back) without ever taking a lock.
type control uint32

const (
	slotMask     control = 0x3
	writeShift           = 0
	bufferShift          = 2
	readShift            = 4
	availableBit control = 1 << 6
)

func packControl(write, buffer, read uint32, available bool) control {
	c := control(write&uint32(slotMask))<<writeShift |
		control(buffer&uint32(slotMask))<<bufferShift |
		control(read&uint32(slotMask))<<readShift
	if available {
		c |= availableBit
	}
	return c
}

func (c control) write() uint32  { return uint32(c>>writeShift) & uint32(slotMask) }
func (c control) buffer() uint32 { return uint32(c>>bufferShift) & uint32(slotMask) }
func (c control) read() uint32   { return uint32(c>>readShift) & uint32(slotMask) }
func (c control) avail() bool    { return c&availableBit != 0 }

// LockFreeTripleBuffer is a latest-wins SPSC channel with no mutex on its
// hot path: a single atomic control word is CAS-swapped between the writer
// and the reader. Requires exactly one producer goroutine and exactly one
// consumer goroutine; violating that corrupts the slots array silently.
//
// Wake is a no-op: no goroutine is ever parked here, so cooperative shutdown
// must rely on the stop predicate passed to PopUnless, re-checked on every
// spin iteration.
type LockFreeTripleBuffer[T any] struct {
	ctrl  atomic.Uint32
	slots [3]T
}

// NewLockFreeTripleBuffer creates a lock-free triple-buffer channel.
func NewLockFreeTripleBuffer[T any]() *LockFreeTripleBuffer[T] {
	b := &LockFreeTripleBuffer[T]{}
	b.ctrl.Store(uint32(packControl(0, 1, 2, false)))
	return b
}

// Push writes v into the writer's current slot and CAS-publishes it as the
// latest available value. Never blocks.
func (b *LockFreeTripleBuffer[T]) Push(v T) {
	for {
		old := control(b.ctrl.Load())
		b.slots[old.write()] = v

		next := packControl(old.buffer(), old.write(), old.read(), true)
		if b.ctrl.CompareAndSwap(uint32(old), uint32(next)) {
			return
		}
		// The reader claimed buffer<->read between our load and our CAS;
		// retry against the new control word. The reader never changes the
		// write index, so the rewrite lands in the same slot.
	}
}

// Pop spins until a value is available and returns the latest one pushed.
func (b *LockFreeTripleBuffer[T]) Pop() T {
	v, _ := b.PopUnless(func() bool { return false })
	return v
}

// PopUnless spins until either a value is available or pred returns true.
func (b *LockFreeTripleBuffer[T]) PopUnless(pred func() bool) (T, bool) {
	for {
		old := control(b.ctrl.Load())
		if old.avail() {
			next := packControl(old.write(), old.read(), old.buffer(), false)
			if b.ctrl.CompareAndSwap(uint32(old), uint32(next)) {
				return b.slots[next.read()], true
			}
			continue
		}
		if pred() {
			var zero T
			return zero, false
		}
	}
}

// Empty reports whether an undelivered value is pending.
func (b *LockFreeTripleBuffer[T]) Empty() bool {
	return !control(b.ctrl.Load()).avail()
}

// Wake is a no-op: the lock-free variant never parks a goroutine.
func (b *LockFreeTripleBuffer[T]) Wake() {}
