package control

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, query or configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrNotLoggedIn indicates an operation needs a session but none is present.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrLoginFailed indicates the backend rejected the credentials.
	ErrLoginFailed = errors.New("login failed")

	// ErrLongTaskUnavailable indicates a long-running operation was requested
	// from a service constructed without a long-task caller.
	ErrLongTaskUnavailable = errors.New("long task caller not available")
)

// ErrorMessage extracts a user-facing message from err, falling back to
// fallback when err is nil or carries no text.
func ErrorMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = "An error occurred"
	}
	if err == nil {
		return fallback
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
