package control

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Status discriminates the two Response variants.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorKind classifies where a call failed.
type ErrorKind string

const (
	KindRequest   ErrorKind = "request"   // params could not be encoded; nothing was sent
	KindTransport ErrorKind = "transport" // no HTTP response was obtained
	KindHTTP      ErrorKind = "http"      // non-2xx HTTP status
	KindDecode    ErrorKind = "decode"    // 2xx response whose body is not the expected JSON
)

// Error describes a failed call. Code is the HTTP status, or 0 when no
// response was obtained.
type Error struct {
	Message string
	Code    int
	Kind    ErrorKind
	Details any
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return "HTTP " + strconv.Itoa(e.Code) + ": " + e.Message
	}
	return e.Message
}

// Unwrap exposes Details when it is an error, so sentinel errors carried
// by a Fail survive errors.Is.
func (e *Error) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

// Reply is the business header every backend body carries:
// {"success": bool, "message": string}. A body without "success" is
// treated as successful.
type Reply struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failed reports whether the backend explicitly answered success=false.
func (r Reply) Failed() bool {
	return r.Success != nil && !*r.Success
}

// Result is the type-independent view of a Response used by the guard and
// the session poller.
type Result interface {
	Status() Status
	// Err returns the failure, or nil for a successful response.
	Err() *Error
	// Reply returns the business header, or the zero Reply on failure.
	Reply() Reply
	isResult()
}

// Response is a sealed union of Ok and Fail. Every call returns exactly one
// of them; Status is derived from the variant, so a response can never carry
// both data and an error.
type Response[T any] interface {
	Result
	// Value returns the payload and true for Ok, the zero value and false
	// for Fail.
	Value() (T, bool)
}

// Ok is a successful response.
type Ok[T any] struct {
	Data   T
	Header Reply
}

func (Ok[T]) isResult()          {}
func (Ok[T]) Status() Status     { return StatusSuccess }
func (Ok[T]) Err() *Error        { return nil }
func (o Ok[T]) Reply() Reply     { return o.Header }
func (o Ok[T]) Value() (T, bool) { return o.Data, true }

// Fail is a failed response.
type Fail[T any] struct {
	Error *Error
}

func (Fail[T]) isResult()      {}
func (Fail[T]) Status() Status { return StatusError }
func (f Fail[T]) Err() *Error  { return f.Error }
func (Fail[T]) Reply() Reply   { return Reply{} }
func (Fail[T]) Value() (T, bool) {
	var zero T
	return zero, false
}

// Failf builds a Fail of the given kind.
func Failf[T any](kind ErrorKind, code int, format string, args ...any) Fail[T] {
	return Fail[T]{Error: &Error{Message: fmt.Sprintf(format, args...), Code: code, Kind: kind}}
}

// Unwrap converts a Response to the conventional (value, error) pair. A
// business failure (success=false) is not an error here; callers that need
// it inspect Reply or run the response through a Guard.
func Unwrap[T any](r Response[T]) (T, error) {
	if v, ok := r.Value(); ok {
		return v, nil
	}
	var zero T
	if e := r.Err(); e != nil {
		return zero, e
	}
	return zero, &Error{Message: "unknown failure", Kind: KindTransport}
}

// Decode re-types a raw response. A payload that does not decode into T
// becomes a Fail of KindDecode; an existing Fail is carried over unchanged.
func Decode[T any](r Response[json.RawMessage]) Response[T] {
	raw, ok := r.Value()
	if !ok {
		return Fail[T]{Error: r.Err()}
	}
	var data T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return Failf[T](KindDecode, 0, "decode response: %s", err)
		}
	}
	return Ok[T]{Data: data, Header: r.Reply()}
}

// Interface compliance checks.
var (
	_ Response[json.RawMessage] = Ok[json.RawMessage]{}
	_ Response[json.RawMessage] = Fail[json.RawMessage]{}
	_ error                     = (*Error)(nil)
)
