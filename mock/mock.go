// Package mock provides test doubles for control interfaces using function fields.
package mock

import (
	"context"
	"encoding/json"

	"github.com/enciclo/control"
)

// Interface compliance checks.
var (
	_ control.Caller     = (*Caller)(nil)
	_ control.TokenStore = (*TokenStore)(nil)
	_ control.Notifier   = (*Notifier)(nil)
	_ control.Navigator  = (*Navigator)(nil)
)

// Caller is a test double for control.Caller.
// Set CallFn before calling Call.
type Caller struct {
	CallFn func(ctx context.Context, endpoint string, params any, opts ...control.CallOption) control.Response[json.RawMessage]
}

// Call delegates to CallFn.
func (c *Caller) Call(ctx context.Context, endpoint string, params any, opts ...control.CallOption) control.Response[json.RawMessage] {
	return c.CallFn(ctx, endpoint, params, opts...)
}

// TokenStore is a test double for control.TokenStore.
// LoadFn panics when nil to catch missing setup. SaveFn and ClearFn are
// nil-safe no-ops.
type TokenStore struct {
	LoadFn  func() (string, error)
	SaveFn  func(token string) error
	ClearFn func() error
}

// Load delegates to LoadFn.
func (s *TokenStore) Load() (string, error) {
	return s.LoadFn()
}

// Save delegates to SaveFn. Returns nil if SaveFn is not set.
func (s *TokenStore) Save(token string) error {
	if s.SaveFn == nil {
		return nil
	}
	return s.SaveFn(token)
}

// Clear delegates to ClearFn. Returns nil if ClearFn is not set.
func (s *TokenStore) Clear() error {
	if s.ClearFn == nil {
		return nil
	}
	return s.ClearFn()
}

// Notifier is a test double for control.Notifier.
// Set NotifyFn before calling Notify.
type Notifier struct {
	NotifyFn func(n control.Notice)
}

// Notify delegates to NotifyFn.
func (n *Notifier) Notify(notice control.Notice) {
	n.NotifyFn(notice)
}

// Navigator is a test double for control.Navigator.
// Set ToLoginFn before calling ToLogin.
type Navigator struct {
	ToLoginFn func()
}

// ToLogin delegates to ToLoginFn.
func (n *Navigator) ToLogin() {
	n.ToLoginFn()
}

// JSON is a convenience for building a successful raw response from a JSON
// literal, with the Reply header decoded from the same body.
func JSON(body string) control.Response[json.RawMessage] {
	var reply control.Reply
	_ = json.Unmarshal([]byte(body), &reply)
	return control.Ok[json.RawMessage]{Data: json.RawMessage(body), Header: reply}
}

// Failure builds a failed raw response.
func Failure(code int, message string) control.Response[json.RawMessage] {
	kind := control.KindHTTP
	if code == 0 {
		kind = control.KindTransport
	}
	return control.Fail[json.RawMessage]{Error: &control.Error{Message: message, Code: code, Kind: kind}}
}
