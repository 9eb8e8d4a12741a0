package pipeline

// emptyWaker is the type-erased subset of channel.Channel[T] that Idle() and
// Close() need: an emptiness check and a way to unstick a blocked reader.
// Every channel.Channel[T] value — ingress, every internal hop, egress —
// already satisfies this structurally, so building this list costs nothing
// beyond slice appends while the chain is assembled; see Builder.edges.
type emptyWaker interface {
	Empty() bool
	Wake()
}

func allEmpty(edges []emptyWaker) bool {
	for _, e := range edges {
		if !e.Empty() {
			return false
		}
	}
	return true
}

func wakeAll(edges []emptyWaker) {
	for _, e := range edges {
		e.Wake()
	}
}
