package api

import "github.com/google/uuid"

// NewRequestID generates a request identifier for callers that did not
// supply one. Caller-supplied identifiers are opaque and passed through
// untouched.
func NewRequestID() string {
	return "req_" + uuid.NewString()
}

// NewTraceID generates a local trace identifier for code paths where the
// upstream did not supply one but downstream consumers need a stable
// correlation key.
func NewTraceID() string {
	return "trace_" + uuid.NewString()
}
