package pipeline

import (
	"reflect"

	"github.com/kagelabs/flowpipe/pkg/channel"
)

// Builder accumulates a linear chain of stages. A is the ingress argument
// type (struct{} for a producer-headed chain); O is the output type of the
// chain *as built so far* — it changes with every Then call, which is why
// the already-finalized stages and channels are held type-erased (as
// emptyWaker, §edges.go) while only the current tail's channel (outChan)
// needs a type assertion back to the concrete O at the next call site.
type Builder[A, O any] struct {
	policy Policy
	cfg    Config
	err    error

	ingress    channel.Channel[A] // nil for a producer head
	hasIngress bool
	outChan    channel.Channel[O] // current tail's output channel
	stages     []stageDescriptor  // already-finalized stages, in build order (1..i)
	edges      []emptyWaker       // every channel created so far, ingress first if present
}

// FromProducer starts a producer-headed chain: no caller ingress, fn is
// invoked with no arguments to manufacture each value.
func FromProducer[O any](fn func() O, policy Policy, cfg ...Config) *Builder[struct{}, O] {
	c := resolveConfig(cfg)
	b := &Builder[struct{}, O]{policy: policy, cfg: c}
	if fn == nil {
		b.err = errNilStageFunc(1)
		return b
	}
	if isVoidType[O]() {
		b.err = errVoidMiddle(1, reflect.TypeOf(*new(O)))
		return b
	}
	out := newChannel[O](policy, c)
	b.outChan = out
	b.edges = append(b.edges, out)
	b.stages = append(b.stages, stageDescriptor{run: runProducer(fn, out)})
	return b
}

// FromIngress starts a caller-driven chain: the ingress channel carries A
// (typically a struct grouping several logical arguments), fn transforms it
// into the first stage's output.
func FromIngress[A, O any](fn func(A) O, policy Policy, cfg ...Config) *Builder[A, O] {
	c := resolveConfig(cfg)
	b := &Builder[A, O]{policy: policy, cfg: c}
	if fn == nil {
		b.err = errNilStageFunc(1)
		return b
	}
	if isVoidType[O]() {
		b.err = errVoidMiddle(1, reflect.TypeOf(*new(O)))
		return b
	}
	in := newChannel[A](policy, c)
	out := newChannel[O](policy, c)
	b.ingress = in
	b.hasIngress = true
	b.outChan = out
	b.edges = append(b.edges, in, out)
	b.stages = append(b.stages, stageDescriptor{run: runPipe(fn, in, out)})
	return b
}

// Then appends a middle stage. fn's parameter type is pinned by the Go
// compiler to the builder's current O; the only runtime check left is that
// O2 is not struct{} (void is reserved for the consumer tail).
func Then[A, O, O2 any](b *Builder[A, O], fn func(O) O2) *Builder[A, O2] {
	nb := &Builder[A, O2]{policy: b.policy, cfg: b.cfg, ingress: b.ingress, hasIngress: b.hasIngress}
	if b.err != nil {
		nb.err = b.err
		return nb
	}
	stage := len(b.stages) + 1
	if fn == nil {
		nb.err = errNilStageFunc(stage)
		return nb
	}
	if isVoidType[O2]() {
		nb.err = errVoidMiddle(stage, reflect.TypeOf(*new(O2)))
		return nb
	}
	out := newChannel[O2](b.policy, b.cfg)
	nb.outChan = out
	nb.stages = append(append([]stageDescriptor{}, b.stages...), stageDescriptor{run: runPipe(fn, b.outChan, out)})
	nb.edges = append(append([]emptyWaker{}, b.edges...), out)
	return nb
}

// ToEgress finalizes the chain with a polled egress: the last stage built
// (by FromProducer/FromIngress or Then) already pushes into what becomes
// the egress channel, so no extra stage is added here.
func ToEgress[A, O any](b *Builder[A, O]) (*Handle[A, O], error) {
	if b.err != nil {
		return nil, b.err
	}
	c := newCtrl(len(b.stages), b.cfg.PanicPolicy)
	spawnAll(b.stages, c)
	// The egress channel (always the last edge) is left out of the core's
	// edges: a result waiting to be collected does not keep the pipeline
	// from being idle, and its reader is the caller, not a worker.
	internal := b.edges[:len(b.edges)-1]
	return &Handle[A, O]{
		core:    newCore(c, b.cfg, internal),
		ingress: b.ingress,
		egress:  b.outChan,
	}, nil
}

// ToConsumer finalizes the chain with a consumer tail: fn is invoked for
// effect on every value the chain produces; it returns void, so one extra
// stage (the sink) is appended here, consuming what was the chain's tail
// channel. No new channel is created — the sink has no output.
func ToConsumer[A, O any](b *Builder[A, O], fn func(O)) (*ConsumerHandle[A], error) {
	if b.err != nil {
		return nil, b.err
	}
	stage := len(b.stages) + 1
	if fn == nil {
		return nil, errNilStageFunc(stage)
	}
	stages := append(append([]stageDescriptor{}, b.stages...), stageDescriptor{run: runSink(fn, b.outChan)})

	c := newCtrl(len(stages), b.cfg.PanicPolicy)
	spawnAll(stages, c)
	return &ConsumerHandle[A]{
		core:    newCore(c, b.cfg, b.edges),
		ingress: b.ingress,
	}, nil
}

// ToEgressFromProducer and ToConsumerFromProducer are convenience aliases for
// the producer-headed case, returning the narrower handle types that expose
// Pause/Resume/Producing in place of Input.

func ToEgressFromProducer[O any](b *Builder[struct{}, O]) (*SourceHandle[O], error) {
	h, err := ToEgress[struct{}, O](b)
	if err != nil {
		return nil, err
	}
	return &SourceHandle[O]{core: h.core, egress: h.egress}, nil
}

func ToConsumerFromProducer[O any](b *Builder[struct{}, O], fn func(O)) (*SinkHandle, error) {
	h, err := ToConsumer[struct{}, O](b, fn)
	if err != nil {
		return nil, err
	}
	return &SinkHandle{core: h.core}, nil
}

// spawnAll spawns every worker goroutine in reverse topological order — tail
// first, then each middle from N-1 down to 1, then the head last — so
// downstream is always ready to consume before upstream can produce.
//
// Go cannot fail to create a goroutine the way the source's thread spawn can
// fail at the OS level (see DESIGN.md's Open Question decisions): every
// sticky build-time error is already surfaced by the checks in FromProducer/
// FromIngress/Then/ToConsumer above, before this runs, so there is nothing
// left here to roll back. The wake/join machinery ctrl and pipelineCore
// provide is still real, and is exercised by Close and by a stage's first
// in-flight panic under PanicPolicyStop.
func spawnAll(stages []stageDescriptor, c *ctrl) {
	for i := len(stages) - 1; i >= 0; i-- {
		idx := i
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			stages[idx].run(c, idx)
		}()
	}
}

func isVoidType[T any]() bool {
	t := reflect.TypeOf(*new(T))
	return t != nil && t.Kind() == reflect.Struct && t.NumField() == 0
}

func resolveConfig(cfg []Config) Config {
	if len(cfg) == 0 {
		return Config{}.withDefaults()
	}
	return cfg[0].withDefaults()
}
