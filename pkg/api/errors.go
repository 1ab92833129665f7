package api

import "fmt"

// ErrorKind categorizes local (non-provider) errors: validation failures,
// unknown lookups, and internal faults. Upstream provider failures use
// the classified provider error family instead; the two are deliberately
// distinct so the retry loop can tell them apart.
type ErrorKind string

const (
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
	ErrorKindNotFound       ErrorKind = "not_found"
	ErrorKindServer         ErrorKind = "server_error"
)

// Error is a structured local error.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Kind, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewInvalidRequestError creates an Error for a rejected request parameter.
func NewInvalidRequestError(param, message string) *Error {
	return &Error{Kind: ErrorKindInvalidRequest, Param: param, Message: message}
}

// NewNotFoundError creates an Error for an unknown resource or provider key.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: message}
}

// NewServerError creates an Error for an internal fault.
func NewServerError(message string) *Error {
	return &Error{Kind: ErrorKindServer, Message: message}
}
