package jira

import "fmt"

// FailureKind classifies how an API call failed
type FailureKind int

const (
	// FailureTimeout indicates the request exceeded the client timeout
	FailureTimeout FailureKind = iota
	// FailureConnectionRefused indicates the server could not be reached
	FailureConnectionRefused
	// FailureForbidden indicates the server rejected the credentials (HTTP 403)
	FailureForbidden
	// FailureHTTP indicates any other non-2xx response
	FailureHTTP
)

// String returns a short name for the failure kind, used in logs and reports
func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureConnectionRefused:
		return "connection refused"
	case FailureForbidden:
		return "forbidden"
	default:
		return "http error"
	}
}

// APIError is a classified failure from the Jira REST API. Callers inspect
// Kind to decide on retry or fallback; the underlying cause is preserved
// for logging.
type APIError struct {
	Kind   FailureKind
	URL    string
	Status int
	Cause  error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("jira api %s (%d): %s", e.Kind, e.Status, e.URL)
	}
	if e.Cause != nil {
		return fmt.Sprintf("jira api %s: %s: %v", e.Kind, e.URL, e.Cause)
	}
	return fmt.Sprintf("jira api %s: %s", e.Kind, e.URL)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches errors by failure kind
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
