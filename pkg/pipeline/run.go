package pipeline

import "github.com/kagelabs/flowpipe/pkg/types"

// RunOnce pushes a single input and waits for the matching output, timing
// the round trip. The result is built from the shared types.ResultPool to
// avoid a per-call allocation on the hot path.
func RunOnce[A, O any](h *Handle[A, O], clock types.Clock, input A) types.Result[O] {
	if clock == nil {
		clock = types.NewRealClock()
	}
	start := clock.Now()
	h.Input(input)
	out := h.WaitGet()

	pooled := types.GetPooledResult[O]()
	pooled.Value = out
	pooled.Duration = clock.Since(start)
	result := *pooled
	types.PutPooledResult(pooled)
	return result
}

// RunBatch pushes every input, then collects one output per input in
// submission order. This is only a faithful index-to-value mapping under
// PolicyQueue, which preserves end-to-end FIFO; under either triple-buffer
// policy some inputs are dropped by design (see §4.3/4.4), so fewer results
// than len(inputs) may ever arrive and callers must not block forever on a
// dropped index — RunBatch itself blocks on WaitGet per slot, so a caller
// using a lossy policy should prefer TryGet-based polling instead.
func RunBatch[A, O any](h *Handle[A, O], clock types.Clock, inputs []A) <-chan types.BatchResult[O] {
	if clock == nil {
		clock = types.NewRealClock()
	}
	out := make(chan types.BatchResult[O], len(inputs))

	go func() {
		defer close(out)
		start := clock.Now()
		for _, in := range inputs {
			h.Input(in)
		}
		for i := range inputs {
			v := h.WaitGet()

			pooled := types.GetPooledBatchResult[O]()
			pooled.Index = i
			pooled.Value = v
			pooled.Duration = clock.Since(start)
			out <- *pooled
			types.PutPooledBatchResult(pooled)
		}
	}()

	return out
}
