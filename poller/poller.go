// Package poller re-validates a session in the background and logs it out
// when the backend no longer accepts it.
package poller

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/enciclo/control"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultInterval is the time between periodic checks.
	DefaultInterval = 5 * time.Minute

	// CheckEndpoint is the lightweight authenticated call used as a probe.
	CheckEndpoint = "collections"
)

// ticker is the subset of *time.Ticker the loop needs.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Poller periodically probes the backend with the session's token. It is
// Idle until Start and Active until Stop or a detected expiry.
type Poller struct {
	caller    control.Caller
	session   *control.Session
	logger    *zap.Logger
	onExpired func()
	newTicker func(time.Duration) ticker

	inflight *semaphore.Weighted
	expired  chan struct{}

	lifecycle sync.Mutex // serializes Start and Stop

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a [Poller].
type Option func(*Poller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithOnExpired registers fn to run after an expiry has logged the session
// out. fn runs on the poller's goroutine once its loop has exited, so fn may
// call Stop or Start.
func WithOnExpired(fn func()) Option {
	return func(p *Poller) { p.onExpired = fn }
}

// New creates an idle Poller that probes through caller on behalf of
// session.
func New(caller control.Caller, session *control.Session, opts ...Option) *Poller {
	p := &Poller{
		caller:    caller,
		session:   session,
		logger:    zap.NewNop(),
		newTicker: newTimeTicker,
		inflight:  semaphore.NewWeighted(1),
		expired:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Expired delivers a value each time the poller logs the session out. The
// channel is buffered; a signal nobody reads is dropped rather than
// blocking the poller.
func (p *Poller) Expired() <-chan struct{} {
	return p.expired
}

// Active reports whether a periodic loop is running.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// Start stops any running loop, then begins checking: once immediately and
// every interval after that. A non-positive interval means DefaultInterval.
// Start does nothing and returns false unless the session is authenticated
// and has a token.
func (p *Poller) Start(ctx context.Context, interval time.Duration) bool {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stop()

	if interval <= 0 {
		interval = DefaultInterval
	}
	tok, err := p.session.Token()
	if err != nil || tok == "" || !p.session.Authenticated() {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.mu.Lock()
	p.cancel, p.done = cancel, done
	p.mu.Unlock()

	t := p.newTicker(interval)
	go p.loop(ctx, cancel, t, done)
	p.logger.Debug("session check started", zap.Duration("interval", interval))
	return true
}

// Stop cancels the loop and waits for it to exit. It is safe to call when
// idle.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stop()
}

func (p *Poller) stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Debug("session check stopped")
}

func (p *Poller) loop(ctx context.Context, cancel context.CancelFunc, t ticker, done chan struct{}) {
	expired := false
	defer func() {
		t.Stop()
		close(done)
		if expired && p.onExpired != nil {
			p.onExpired()
		}
	}()

	if !p.Check(ctx) && ctx.Err() == nil {
		p.expire(cancel, done)
		expired = true
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !p.Check(ctx) && ctx.Err() == nil {
				p.expire(cancel, done)
				expired = true
				return
			}
		}
	}
}

// expire runs on the loop goroutine. It detaches the loop from the poller
// instead of calling Stop, which would wait on the loop itself.
func (p *Poller) expire(cancel context.CancelFunc, done chan struct{}) {
	p.mu.Lock()
	if p.done == done {
		p.cancel, p.done = nil, nil
	}
	p.mu.Unlock()
	cancel()

	if err := p.session.Clear(); err != nil {
		p.logger.Warn("clear expired session", zap.Error(err))
	}
	p.logger.Info("session expired")
	select {
	case p.expired <- struct{}{}:
	default:
	}
}

// Check probes the backend once and reports whether the session is still
// valid. Without a token it returns false. While another check is in
// flight it returns the session's current authenticated flag without a
// network call. Errors that do not point at the session (network, 5xx)
// are assumed transient and leave the session valid.
func (p *Poller) Check(ctx context.Context) bool {
	tok, err := p.session.Token()
	if err != nil || tok == "" {
		return false
	}
	if !p.inflight.TryAcquire(1) {
		return p.session.Authenticated()
	}
	defer p.inflight.Release(1)

	resp := p.caller.Call(ctx, CheckEndpoint, control.Params{})
	if e := resp.Err(); e != nil {
		if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden || control.IndicatesExpiry(e.Message) {
			p.logger.Debug("session rejected", zap.Int("status", e.Code), zap.String("message", e.Message))
			return false
		}
		p.logger.Debug("session check inconclusive", zap.String("kind", string(e.Kind)), zap.String("message", e.Message))
		return p.session.Authenticated()
	}
	if reply := resp.Reply(); reply.Failed() && control.IndicatesExpiry(reply.Message) {
		p.logger.Debug("session rejected", zap.String("message", reply.Message))
		return false
	}
	return true
}
