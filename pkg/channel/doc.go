// Package channel provides the SPSC hand-off primitives wired between
// adjacent pipeline stages: a blocking FIFO queue for lossless back-pressure,
// and two latest-wins triple-buffers (blocking and lock-free) for stages
// that only ever care about the newest value.
package channel
