// Package pipeline builds multi-stage processing chains whose stages run on
// their own goroutine and hand values to each other over the SPSC channels in
// pkg/channel. A chain is assembled through a generic builder (FromProducer/
// FromIngress, Then, ToEgress/ToConsumer) that lets the Go compiler enforce
// that each stage consumes its upstream's output type; the small number of
// checks the type system cannot express (nil stage functions, a void output
// in a non-terminal position) are caught at Build time and reported as a
// *BuildError.
//
// The resulting Handle owns every channel and goroutine in the chain. Input
// is pushed through Input, output pulled through WaitGet/TryGet, and Close
// tears the whole chain down deterministically: no worker goroutine survives
// a returned Close.
package pipeline
