package pipeline

import "github.com/kagelabs/flowpipe/pkg/types"

// Policy selects the channel.Channel variant used for every internal,
// ingress, and egress channel in a pipeline. A pipeline always uses exactly
// one policy end to end; mixing variants within a single chain is not
// supported.
type Policy int

const (
	// PolicyQueue backs every edge with channel.Queue: unbounded FIFO,
	// end-to-end ordering preserved. The default.
	PolicyQueue Policy = iota

	// PolicyBlockingTripleBuffer backs every edge with channel.TripleBuffer:
	// latest-wins, writer never blocks.
	PolicyBlockingTripleBuffer

	// PolicyLockFreeTripleBuffer backs every edge with
	// channel.LockFreeTripleBuffer: latest-wins, no mutex on the hot path,
	// reader spins while waiting.
	PolicyLockFreeTripleBuffer
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyQueue:
		return "queue"
	case PolicyBlockingTripleBuffer:
		return "blocking-triple-buffer"
	case PolicyLockFreeTripleBuffer:
		return "lock-free-triple-buffer"
	default:
		return "unknown"
	}
}

// PanicPolicy governs what happens when a stage function panics mid-run.
type PanicPolicy int

const (
	// PanicPolicyStop records the panic as a *StageError and sets the stop
	// flag, tearing the whole pipeline down. The default.
	PanicPolicyStop PanicPolicy = iota

	// PanicPolicyContinue records the panic as a *StageError but drops only
	// the offending value, keeping the stage (and the rest of the chain)
	// alive.
	PanicPolicyContinue
)

// Config carries the knobs passed to FromProducer/FromIngress and carried
// along the builder chain to the finished handle.
type Config struct {
	// Capacity bounds channel.Queue edges; zero means unbounded. Ignored by
	// the triple-buffer policies, which are never capacity-bounded.
	Capacity int

	// Clock is used by WaitUntilIdle's poll loop. It is not passed to
	// Fallible, which takes its own clock. Defaults to types.NewRealClock().
	Clock types.Clock

	// PanicPolicy governs in-flight stage panics. Defaults to
	// PanicPolicyStop.
	PanicPolicy PanicPolicy

	// IdlePollInterval is how often WaitUntilIdle re-checks Idle(). Defaults
	// to a small constant; tests inject a short interval via their mock
	// clock so the poll loop advances deterministically.
	IdlePollInterval int64 // nanoseconds; 0 means use the package default
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = types.NewRealClock()
	}
	if c.IdlePollInterval == 0 {
		c.IdlePollInterval = defaultIdlePollInterval.Nanoseconds()
	}
	return c
}
