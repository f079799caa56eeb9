// Package api implements [control.Caller] over JSON-over-HTTP.
//
// Every call is a POST of a JSON object to <baseURL>/<endpoint>, with the
// session id merged into the body. Failures never escape as Go errors: they
// are returned as [control.Fail] so screens can run them through a
// [control.Guard].
package api

const (
	loginPath    = "login"
	sessionField = "session_id"

	// DomainPlaceholder is replaced in base URL templates by the
	// normalized origin host.
	DomainPlaceholder = "{domain}"
)

// noCacheHeaders are sent with every call. The backend's answers depend on
// session state and must never come from an intermediary cache.
var noCacheHeaders = map[string]string{
	"Cache-Control": "no-store, no-cache, must-revalidate, max-age=0",
	"Pragma":        "no-cache",
	"Expires":       "0",
}

// Credentials are the login form fields.
type Credentials struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

type loginResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
