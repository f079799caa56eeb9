package control

import "net/http"

// Severity ranks a user-facing notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// Notice is a message surfaced to the user.
type Notice struct {
	Severity Severity
	Summary  string
	Detail   string
}

// Notifier presents notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Navigator moves the user to another screen. In a command-line host the
// login "screen" is whatever prompts for credentials.
type Navigator interface {
	ToLogin()
}

// InternalErrorDetail is the notice detail shown for HTTP 500 responses.
const InternalErrorDetail = "Internal server error"

// Guard decides, after each call, whether the caller may use the response.
// It is the one place that tells revoked authorization from server faults
// from business failures.
type Guard struct {
	Session   *Session
	Notifier  Notifier
	Navigator Navigator
}

// Check inspects r in a fixed order:
//  1. HTTP 403: the session is cleared and the user is sent to login.
//  2. HTTP 500: a generic internal-error notice; the session is kept.
//  3. success=false: the backend's message is shown.
//
// It returns true only when none of these apply.
func (g Guard) Check(r Result) bool {
	if err := r.Err(); err != nil {
		switch err.Code {
		case http.StatusForbidden:
			if g.Session != nil {
				_ = g.Session.Clear()
			}
			if g.Navigator != nil {
				g.Navigator.ToLogin()
			}
			return false
		case http.StatusInternalServerError:
			g.notify(Notice{Severity: SeverityError, Summary: "Error", Detail: InternalErrorDetail})
			return false
		}
	}
	if reply := r.Reply(); reply.Failed() {
		g.notify(Notice{Severity: SeverityError, Summary: "Error", Detail: reply.Message})
		return false
	}
	return true
}

func (g Guard) notify(n Notice) {
	if g.Notifier != nil {
		g.Notifier.Notify(n)
	}
}
