// Package testutils provides a pipeline.Config.Clock implementation backed
// by github.com/coder/quartz, so pipeline tests that need to drive
// WaitUntilIdle's poll loop can advance time on command instead of sleeping
// on the wall clock.
package testutils

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/kagelabs/flowpipe/pkg/types"
)

// NewMockClock returns a quartz mock clock scoped to t's lifetime.
func NewMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// ClockWrapper adapts a *quartz.Mock to types.Clock, which is the interface
// pipeline.Config.Clock and the retry executor actually depend on.
type ClockWrapper struct {
	*quartz.Mock
}

// NewClockWrapper wraps mock as a types.Clock.
func NewClockWrapper(mock *quartz.Mock) *ClockWrapper {
	return &ClockWrapper{Mock: mock}
}

func (c *ClockWrapper) After(d time.Duration) <-chan time.Time {
	return c.Mock.NewTimer(d).C
}

func (c *ClockWrapper) Sleep(d time.Duration) {
	<-c.Mock.NewTimer(d).C
}

func (c *ClockWrapper) Now() time.Time {
	return c.Mock.Now()
}

func (c *ClockWrapper) Since(t time.Time) time.Duration {
	return c.Mock.Since(t)
}

func (c *ClockWrapper) NewTimer(d time.Duration) types.Timer {
	return &mockTimer{timer: c.Mock.NewTimer(d)}
}

func (c *ClockWrapper) NewTicker(d time.Duration) types.Ticker {
	return &mockTicker{ticker: c.Mock.NewTicker(d)}
}

type mockTimer struct {
	timer *quartz.Timer
}

func (t *mockTimer) C() <-chan time.Time { return t.timer.C }

func (t *mockTimer) Stop() bool { return t.timer.Stop() }

func (t *mockTimer) Reset(d time.Duration) bool { return t.timer.Reset(d) }

type mockTicker struct {
	ticker *quartz.Ticker
}

func (t *mockTicker) C() <-chan time.Time { return t.ticker.C }

func (t *mockTicker) Stop() { t.ticker.Stop() }

func (t *mockTicker) Reset(d time.Duration) { t.ticker.Reset(d) }