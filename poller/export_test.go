package poller

import "time"

// FakeTicker is a manually driven ticker for tests.
type FakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

// NewFakeTicker returns an unbuffered FakeTicker.
func NewFakeTicker() *FakeTicker {
	return &FakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *FakeTicker) C() <-chan time.Time { return f.ch }
func (f *FakeTicker) Stop()               { close(f.stopped) }

// Tick delivers one tick, blocking until the loop receives it.
func (f *FakeTicker) Tick() { f.ch <- time.Now() }

// Stopped is closed when the loop stops the ticker.
func (f *FakeTicker) Stopped() <-chan struct{} { return f.stopped }

// WithTicker makes the poller use tickers from next.
func WithTicker(next func() *FakeTicker) Option {
	return func(p *Poller) {
		p.newTicker = func(time.Duration) ticker { return next() }
	}
}
