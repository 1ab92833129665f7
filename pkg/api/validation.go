package api

import "fmt"

var validRoles = map[string]bool{
	"system":    true,
	"user":      true,
	"assistant": true,
	"tool":      true,
}

// ValidateChatRequest checks a canonical chat request before dispatch.
// Returns a local Error (never a classified provider error).
func ValidateChatRequest(req *ChatRequest) *Error {
	if req == nil {
		return NewInvalidRequestError("", "request body is required")
	}
	if len(req.Messages) == 0 {
		return NewInvalidRequestError("messages", "at least one message is required")
	}
	for i, m := range req.Messages {
		if m.Role == "" {
			return NewInvalidRequestError("messages", fmt.Sprintf("message %d is missing a role", i))
		}
		if !validRoles[m.Role] {
			return NewInvalidRequestError("messages", fmt.Sprintf("message %d has unknown role %q", i, m.Role))
		}
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return NewInvalidRequestError("temperature", "temperature must be between 0 and 2")
	}
	if req.MaxOutputTokens != nil && *req.MaxOutputTokens < 1 {
		return NewInvalidRequestError("maxOutputTokens", "maxOutputTokens must be at least 1")
	}
	return nil
}

// ValidateEmbedRequest checks a canonical embedding request before dispatch.
func ValidateEmbedRequest(req *EmbedRequest) *Error {
	if req == nil {
		return NewInvalidRequestError("", "request body is required")
	}
	if len(req.Inputs) == 0 {
		return NewInvalidRequestError("inputs", "at least one input is required")
	}
	for i, in := range req.Inputs {
		if !in.IsVec && in.Text == "" {
			return NewInvalidRequestError("inputs", fmt.Sprintf("input %d is empty", i))
		}
		if in.IsVec && len(in.Vector) == 0 {
			return NewInvalidRequestError("inputs", fmt.Sprintf("input %d is an empty vector", i))
		}
	}
	return nil
}
