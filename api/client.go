package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/enciclo/control"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Interface compliance check.
var _ control.Caller = (*Client)(nil)

// Client implements [control.Caller] for the console backend.
type Client struct {
	session    *control.Session
	resolver   *Resolver
	longTask   bool
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the default base URL template. Useful for testing with
// httptest.
func WithBaseURL(template string) Option {
	return func(c *Client) { c.resolver = NewResolver(template, "", "") }
}

// WithResolver shares a [Resolver] between clients, so both the default and
// the long-task client resolve their base URL from the same templates.
func WithResolver(r *Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// LongTask selects the long-task base URL and its longer timeout.
func LongTask() Option {
	return func(c *Client) {
		c.longTask = true
		c.timeout = control.LongTaskTimeout
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit paces outgoing calls to limit per second with the given
// burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] that attaches session's id to every call.
func New(session *control.Session, opts ...Option) *Client {
	c := &Client{
		session:    session,
		resolver:   NewResolver("", "", ""),
		timeout:    control.DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.session == nil {
		c.session = control.NewSession(nil)
	}
	return c
}

// BaseURL returns the resolved base URL this client posts to.
func (c *Client) BaseURL() string {
	return c.resolver.BaseURL(c.longTask)
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *control.Session {
	return c.session
}

// Call posts params to endpoint. params may be nil, a map or any value that
// encodes to a JSON object. The session id is merged into the body.
func (c *Client) Call(ctx context.Context, endpoint string, params any, opts ...control.CallOption) control.Response[json.RawMessage] {
	body, err := c.buildBody(params)
	if err != nil {
		c.logger.Warn("api call not sent", zap.String("endpoint", endpoint), zap.Error(err))
		return control.Failf[json.RawMessage](control.KindRequest, 0, "%s", err)
	}
	return c.do(ctx, endpoint, body, control.NewCallConfig(opts...))
}

// Post is an alias of [Client.Call].
func (c *Client) Post(ctx context.Context, endpoint string, params any, opts ...control.CallOption) control.Response[json.RawMessage] {
	return c.Call(ctx, endpoint, params, opts...)
}

// Login negotiates a new session. On success the session id is stored in
// the session and persisted; on rejection the backend's message is recorded
// as the session's last error and returned wrapped in
// [control.ErrLoginFailed]. Logging in again replaces the current session.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if creds.Username == "" {
		return fmt.Errorf("api: username is required: %w", control.ErrValidation)
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	resp := control.Decode[loginResponse](c.do(ctx, loginPath, body, control.CallConfig{}))
	lr, err := control.Unwrap(resp)
	if err != nil {
		c.session.Fail(control.ErrorMessage(err, ""))
		return err
	}
	if !lr.Success || lr.SessionID == "" {
		msg := lr.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		c.session.Fail(msg)
		return fmt.Errorf("%w: %s", control.ErrLoginFailed, msg)
	}
	if err := c.session.Establish(lr.SessionID); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	c.logger.Info("logged in", zap.String("username", creds.Username))
	return nil
}

// Logout clears the session and its persisted token. The backend is not
// contacted.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) buildBody(params any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode params: %w", err)
		}
		if !bytes.Equal(raw, []byte("null")) {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("params must encode to a JSON object: %w", err)
			}
			if fields == nil {
				fields = map[string]json.RawMessage{}
			}
		}
	}
	token, err := c.session.Token()
	if err != nil {
		return nil, err
	}
	if token != "" {
		id, _ := json.Marshal(token)
		fields[sessionField] = id
	}
	return json.Marshal(fields)
}

func (c *Client) do(ctx context.Context, endpoint string, body []byte, cfg control.CallConfig) control.Response[json.RawMessage] {
	timeout := c.timeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log := c.logger.With(zap.String("endpoint", endpoint), zap.Bool("long_task", c.longTask))
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Warn("api call not sent", zap.Error(err))
			return control.Failf[json.RawMessage](control.KindTransport, 0, "rate limit: %s", err)
		}
	}

	url := c.BaseURL() + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return control.Failf[json.RawMessage](control.KindRequest, 0, "%s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range noCacheHeaders {
		req.Header.Set(k, v)
	}
	for k, vs := range cfg.Header {
		req.Header[k] = vs
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("api call failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return control.Failf[json.RawMessage](control.KindTransport, 0, "%s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := parseHTTPError(resp)
		log.Warn("api call failed", zap.Int("status", e.Code), zap.String("message", e.Message), zap.Duration("elapsed", time.Since(start)))
		return control.Fail[json.RawMessage]{Error: e}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("api call failed", zap.Error(err))
		return control.Failf[json.RawMessage](control.KindTransport, resp.StatusCode, "read body: %s", err)
	}
	if !json.Valid(raw) {
		log.Warn("api call failed", zap.String("reason", "invalid JSON"), zap.Int("bytes", len(raw)))
		return control.Failf[json.RawMessage](control.KindDecode, 0, "decode response: invalid JSON")
	}
	var reply control.Reply
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		_ = json.Unmarshal(raw, &reply)
	}
	log.Debug("api call", zap.Int("status", resp.StatusCode), zap.Bool("business_failure", reply.Failed()), zap.Duration("elapsed", time.Since(start)))
	return control.Ok[json.RawMessage]{Data: raw, Header: reply}
}

func parseHTTPError(resp *http.Response) *control.Error {
	e := &control.Error{Code: resp.StatusCode, Kind: control.KindHTTP}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.Message = fmt.Sprintf("%s (failed to read body: %s)", http.StatusText(resp.StatusCode), err)
		return e
	}
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		switch {
		case apiErr.Message != "":
			e.Message = apiErr.Message
			return e
		case apiErr.Error != "":
			e.Message = apiErr.Error
			return e
		}
	}
	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
