package poller_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enciclo/control"
	"github.com/enciclo/control/mock"
	"github.com/enciclo/control/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loggedIn(t *testing.T) *control.Session {
	t.Helper()
	s := control.NewSession(nil)
	require.NoError(t, s.Establish("sess"))
	return s
}

func respond(r control.Response[json.RawMessage]) *mock.Caller {
	return &mock.Caller{
		CallFn: func(context.Context, string, any, ...control.CallOption) control.Response[json.RawMessage] {
			return r
		},
	}
}

func TestPoller_Check(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		resp control.Response[json.RawMessage]
		want bool
	}{
		{"success", mock.JSON(`{"success":true,"list":[]}`), true},
		{"forbidden", mock.Failure(403, "Forbidden"), false},
		{"unauthorized", mock.Failure(401, "Unauthorized"), false},
		{"expiry wording in error", mock.Failure(400, "Session not found"), false},
		{"network error fails open", mock.Failure(0, "connection refused"), true},
		{"server error fails open", mock.Failure(502, "Bad Gateway"), true},
		{"spanish expiry reply", mock.JSON(`{"success":false,"message":"Sesión caducada"}`), false},
		{"unrelated business failure", mock.JSON(`{"success":false,"message":"Invalid filter value"}`), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := poller.New(respond(tt.resp), loggedIn(t))
			assert.Equal(t, tt.want, p.Check(context.Background()))
		})
	}
}

func TestPoller_Check_ProbesCollections(t *testing.T) {
	t.Parallel()
	c := &mock.Caller{
		CallFn: func(_ context.Context, endpoint string, params any, _ ...control.CallOption) control.Response[json.RawMessage] {
			assert.Equal(t, poller.CheckEndpoint, endpoint)
			assert.Equal(t, control.Params{}, params)
			return mock.JSON(`{"success":true}`)
		},
	}
	assert.True(t, poller.New(c, loggedIn(t)).Check(context.Background()))
}

func TestPoller_Check_NoToken(t *testing.T) {
	t.Parallel()
	p := poller.New(&mock.Caller{}, control.NewSession(nil))
	assert.False(t, p.Check(context.Background()))
}

func TestPoller_Check_SingleFlight(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	c := &mock.Caller{
		CallFn: func(context.Context, string, any, ...control.CallOption) control.Response[json.RawMessage] {
			calls.Add(1)
			close(entered)
			<-release
			return mock.Failure(403, "Forbidden")
		},
	}
	s := loggedIn(t)
	p := poller.New(c, s)

	first := make(chan bool)
	go func() { first <- p.Check(context.Background()) }()
	<-entered

	// The overlapping check answers from the session without a call.
	assert.True(t, p.Check(context.Background()))
	close(release)
	assert.False(t, <-first)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPoller_Start_RequiresAuthentication(t *testing.T) {
	t.Parallel()
	p := poller.New(&mock.Caller{}, control.NewSession(nil))
	assert.False(t, p.Start(context.Background(), time.Minute))
	assert.False(t, p.Active())
}

func TestPoller_Start_Twice(t *testing.T) {
	t.Parallel()
	var tickers []*poller.FakeTicker
	next := func() *poller.FakeTicker {
		ft := poller.NewFakeTicker()
		tickers = append(tickers, ft)
		return ft
	}
	p := poller.New(respond(mock.JSON(`{"success":true}`)), loggedIn(t), poller.WithTicker(next))

	require.True(t, p.Start(context.Background(), time.Minute))
	require.True(t, p.Start(context.Background(), time.Minute))
	require.Len(t, tickers, 2)

	select {
	case <-tickers[0].Stopped():
	default:
		t.Fatal("first loop still running after restart")
	}
	assert.True(t, p.Active())

	p.Stop()
	<-tickers[1].Stopped()
	assert.False(t, p.Active())
	p.Stop()
}

func TestPoller_ExpiresOnTick(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := &mock.Caller{
		CallFn: func(context.Context, string, any, ...control.CallOption) control.Response[json.RawMessage] {
			if calls.Add(1) == 1 {
				return mock.JSON(`{"success":true}`)
			}
			return mock.JSON(`{"success":false,"message":"Sesión caducada"}`)
		},
	}
	ft := poller.NewFakeTicker()
	hook := make(chan struct{})
	s := loggedIn(t)
	p := poller.New(c, s,
		poller.WithTicker(func() *poller.FakeTicker { return ft }),
		poller.WithOnExpired(func() { close(hook) }),
	)

	require.True(t, p.Start(context.Background(), time.Minute))
	ft.Tick()

	select {
	case <-p.Expired():
	case <-time.After(5 * time.Second):
		t.Fatal("expiry not signalled")
	}
	<-hook
	<-ft.Stopped()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.ID())
	assert.False(t, p.Active())
	assert.Equal(t, int32(2), calls.Load())
	p.Stop()
}

func TestPoller_OnExpiredMayRestart(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c := &mock.Caller{
		CallFn: func(context.Context, string, any, ...control.CallOption) control.Response[json.RawMessage] {
			if calls.Add(1) == 1 {
				return mock.Failure(401, "Unauthorized")
			}
			return mock.JSON(`{"success":true}`)
		},
	}
	tickers := []*poller.FakeTicker{poller.NewFakeTicker(), poller.NewFakeTicker()}
	var made atomic.Int32
	s := loggedIn(t)
	restarted := make(chan bool, 1)
	var p *poller.Poller
	p = poller.New(c, s,
		poller.WithTicker(func() *poller.FakeTicker { return tickers[made.Add(1)-1] }),
		poller.WithOnExpired(func() {
			select {
			case <-tickers[0].Stopped():
			default:
				t.Error("hook ran before the loop exited")
			}
			p.Stop()
			if err := s.Establish("fresh"); err != nil {
				t.Error(err)
			}
			restarted <- p.Start(context.Background(), time.Minute)
		}),
	)

	require.True(t, p.Start(context.Background(), time.Minute))
	select {
	case ok := <-restarted:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("expiry hook blocked")
	}
	assert.True(t, p.Active())

	p.Stop()
	<-tickers[1].Stopped()
	assert.False(t, p.Active())
	assert.Equal(t, "fresh", s.ID())
}

func TestPoller_ExpiresOnFirstCheck(t *testing.T) {
	t.Parallel()
	ft := poller.NewFakeTicker()
	s := loggedIn(t)
	p := poller.New(respond(mock.Failure(401, "Unauthorized")), s,
		poller.WithTicker(func() *poller.FakeTicker { return ft }))

	require.True(t, p.Start(context.Background(), 0))
	<-p.Expired()
	<-ft.Stopped()
	assert.False(t, s.Authenticated())
}

func TestPoller_StopDuringCheckKeepsSession(t *testing.T) {
	t.Parallel()
	entered := make(chan struct{})
	c := &mock.Caller{
		CallFn: func(ctx context.Context, _ string, _ any, _ ...control.CallOption) control.Response[json.RawMessage] {
			close(entered)
			<-ctx.Done()
			return mock.Failure(0, ctx.Err().Error())
		},
	}
	s := loggedIn(t)
	p := poller.New(c, s, poller.WithTicker(poller.NewFakeTicker))

	require.True(t, p.Start(context.Background(), time.Minute))
	<-entered
	p.Stop()

	assert.True(t, s.Authenticated())
	select {
	case <-p.Expired():
		t.Fatal("stop must not signal expiry")
	default:
	}
}
