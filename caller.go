package control

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Caller is the single choke point for backend calls. Implementations never
// return nil and never panic on transport failure: every outcome is a
// Response.
//
// Calls are independent. Two calls issued concurrently may complete in
// either order; nothing here serializes them.
type Caller interface {
	Call(ctx context.Context, endpoint string, params any, opts ...CallOption) Response[json.RawMessage]
}

// Call issues endpoint through c and decodes the payload into T.
func Call[T any](ctx context.Context, c Caller, endpoint string, params any, opts ...CallOption) Response[T] {
	return Decode[T](c.Call(ctx, endpoint, params, opts...))
}

// Params is the loose parameter shape used where the backend accepts
// arbitrary keys.
type Params map[string]any

// CallOption configures a single call.
type CallOption func(*CallConfig)

// CallConfig is the per-call configuration assembled from CallOptions.
type CallConfig struct {
	Timeout time.Duration // 0 = caller default
	Header  http.Header
}

// WithTimeout overrides the caller's default timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(c *CallConfig) { c.Timeout = d }
}

// WithHeader adds a request header. Headers set here take precedence over
// the caller's defaults, including Content-Type.
func WithHeader(key, value string) CallOption {
	return func(c *CallConfig) {
		if c.Header == nil {
			c.Header = make(http.Header)
		}
		c.Header.Set(key, value)
	}
}

// NewCallConfig applies opts to an empty CallConfig.
func NewCallConfig(opts ...CallOption) CallConfig {
	var cfg CallConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Client-side timeouts for the two kinds of backend call.
const (
	DefaultTimeout  = 30 * time.Second
	LongTaskTimeout = 5 * time.Minute
)
