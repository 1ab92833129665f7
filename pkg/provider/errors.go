package provider

import (
	"fmt"
	"time"
)

// Classification is the closed set of provider failure categories. Every
// upstream fault an adapter surfaces carries exactly one classification;
// the retry loop and the transport status mapping both key off it.
type Classification string

const (
	// ClassTemporary is a transient provider or network fault.
	ClassTemporary Classification = "TEMPORARY"

	// ClassRateLimit means the upstream throttled the call.
	ClassRateLimit Classification = "RATE_LIMIT"

	// ClassPermanent means the request was rejected on its merits.
	ClassPermanent Classification = "PERMANENT"

	// ClassAuth means the credential was missing, invalid, or rejected.
	ClassAuth Classification = "AUTH"

	// ClassConfig is a local misconfiguration, e.g. a capability declared
	// in configuration with no adapter behind it.
	ClassConfig Classification = "CONFIG"
)

// Retryable reports whether the classification permits a retry.
func (c Classification) Retryable() bool {
	return c == ClassTemporary || c == ClassRateLimit
}

// Error is a classified upstream failure. It is constructed at the
// adapter boundary the moment a provider call fails and is the only
// error kind the engine's retry loop will ever retry.
type Error struct {
	Class   Classification
	Message string

	// RetryAfter is an upstream backoff hint; zero means none.
	RetryAfter time.Duration

	// Cause is diagnostic only and is never serialized to callers.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap returns the diagnostic cause for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether this error may be retried.
func (e *Error) Retryable() bool {
	return e.Class.Retryable()
}

// NewError creates a classified error.
func NewError(class Classification, message string) *Error {
	return &Error{Class: class, Message: message}
}

// FromStatus maps an upstream HTTP status to a classified error. The
// mapping is centralized here so every adapter classifies identically;
// per-adapter divergence would silently break retry semantics.
//
//	401/403  -> AUTH
//	429      -> RATE_LIMIT
//	>=500    -> TEMPORARY
//	other 4xx-> PERMANENT
//	anything else defaults to TEMPORARY (fail toward retry, not drop)
func FromStatus(status int, message string) *Error {
	var class Classification
	switch {
	case status == 401 || status == 403:
		class = ClassAuth
	case status == 429:
		class = ClassRateLimit
	case status >= 500:
		class = ClassTemporary
	case status >= 400:
		class = ClassPermanent
	default:
		class = ClassTemporary
	}
	return &Error{Class: class, Message: message}
}

// WrapNetwork wraps a network-level failure (connection refused, timeout,
// DNS) as TEMPORARY, keeping the original error as diagnostic cause.
func WrapNetwork(err error) *Error {
	return &Error{
		Class:   ClassTemporary,
		Message: "upstream connection failed",
		Cause:   err,
	}
}
