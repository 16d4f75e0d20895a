package remote

import "net/http"

// Error is a failed authority call: any non-2xx response or transport
// failure, reported as a single human-readable string. The client never
// retries automatically.
type Error struct {
	// StatusCode is zero for transport failures.
	StatusCode int
	Message    string

	cause error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Unauthorized reports whether the authority rejected the bearer token.
func (e *Error) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
