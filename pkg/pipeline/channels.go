package pipeline

import "github.com/kagelabs/flowpipe/pkg/channel"

// newChannel builds the channel.Channel[T] backing one edge of a pipeline,
// chosen by policy. It is called once per edge (ingress, each internal hop,
// and egress) while the chain is being assembled, at a point where T is
// statically known — the caller never needs to box or assert the result.
func newChannel[T any](policy Policy, cfg Config) channel.Channel[T] {
	switch policy {
	case PolicyBlockingTripleBuffer:
		return channel.NewTripleBuffer[T]()
	case PolicyLockFreeTripleBuffer:
		return channel.NewLockFreeTripleBuffer[T]()
	case PolicyQueue:
		fallthrough
	default:
		if cfg.Capacity > 0 {
			return channel.NewBoundedQueue[T](cfg.Capacity)
		}
		return channel.NewQueue[T]()
	}
}
