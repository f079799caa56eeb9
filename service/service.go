// Package service maps each backend resource area onto named methods.
//
// Every method issues exactly one call to a fixed endpoint and returns the
// response unchanged. Nothing here inspects failures: callers run the
// result through a [control.Guard].
package service

import (
	"context"

	"github.com/enciclo/control"
)

// Base holds the callers shared by every service. LongTask may be nil;
// long-running methods then fail with [control.ErrLongTaskUnavailable].
type Base struct {
	API      control.Caller
	LongTask control.Caller
}

func call[T any](ctx context.Context, b Base, endpoint string, params any) control.Response[T] {
	return control.Call[T](ctx, b.API, endpoint, params)
}

func callLong[T any](ctx context.Context, b Base, endpoint string, params any) control.Response[T] {
	if b.LongTask == nil {
		return control.Fail[T]{Error: &control.Error{
			Message: control.ErrLongTaskUnavailable.Error(),
			Kind:    control.KindRequest,
			Details: control.ErrLongTaskUnavailable,
		}}
	}
	return control.Call[T](ctx, b.LongTask, endpoint, params)
}

// List is the payload of every paged endpoint.
type List[T any] struct {
	List  []T `json:"list"`
	Total int `json:"total"`
}

// Export is the payload of export endpoints: a download URL.
type Export struct {
	URL string `json:"url"`
}

// Ack is the payload of mutations. It carries the optional id of the
// created record; success and message are in the response's Reply.
type Ack struct {
	ID any `json:"id,omitempty"`
}

// Services bundles one instance of every service over the same callers.
type Services struct {
	Users      *Users
	Stats      *Stats
	Repository *Repository
	Pages      *Pages
	Chat       *Chat
	Tests      *Tests
	CRM        *CRM
	Messages   *Messages
	Entities   *Entities
	Media      *Media
	Meta       *Meta
	Process    *Process
}

// New returns services without a long-task caller.
func New(api control.Caller) *Services {
	return NewWithLongTask(api, nil)
}

// NewWithLongTask returns services whose long-running methods use longTask.
func NewWithLongTask(api, longTask control.Caller) *Services {
	b := Base{API: api, LongTask: longTask}
	return &Services{
		Users:      &Users{b},
		Stats:      &Stats{b},
		Repository: &Repository{b},
		Pages:      &Pages{b},
		Chat:       &Chat{b},
		Tests:      &Tests{b},
		CRM:        &CRM{b},
		Messages:   &Messages{b},
		Entities:   &Entities{b},
		Media:      &Media{b},
		Meta:       &Meta{b},
		Process:    &Process{b},
	}
}
