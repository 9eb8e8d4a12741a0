// Package types provides the clock abstraction pipeline.Config, RunOnce,
// and pkg/retry thread through instead of calling time.Sleep/time.After
// directly, so tests can swap in a mock clock without real sleeps.
package types

import "time"

// Clock abstracts the time operations a pipeline stage or retry loop needs.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Sleep(d time.Duration)
	Since(t time.Time) time.Duration
	NewTimer(d time.Duration) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer mirrors the subset of *time.Timer a Clock implementation needs to
// hand back.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker mirrors the subset of *time.Ticker a Clock implementation needs to
// hand back.
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

// RealClock is the Clock backed by the actual wall clock; it's the default
// everywhere a *Config doesn't have one injected.
type RealClock struct{}

// NewRealClock returns a Clock backed by the real time package.
func NewRealClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time { return time.Now() }

func (c *RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (c *RealClock) Sleep(d time.Duration) { time.Sleep(d) }

func (c *RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (c *RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{timer: time.NewTimer(d)}
}

func (c *RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) C() <-chan time.Time { return t.timer.C }

func (t *realTimer) Stop() bool { return t.timer.Stop() }

func (t *realTimer) Reset(d time.Duration) bool { return t.timer.Reset(d) }

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.ticker.C }

func (t *realTicker) Stop() { t.ticker.Stop() }

func (t *realTicker) Reset(d time.Duration) { t.ticker.Reset(d) }
