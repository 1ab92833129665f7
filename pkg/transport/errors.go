package transport

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// ErrorBody is the JSON error envelope returned to callers. Messages
// are human-safe: upstream error bodies stay in the diagnostic cause
// and never reach this struct.
type ErrorBody struct {
	Type           string `json:"type"`
	Classification string `json:"classification,omitempty"`
	Param          string `json:"param,omitempty"`
	Message        string `json:"message"`
	TraceID        string `json:"traceId,omitempty"`
}

// ErrorResponse wraps ErrorBody under an error key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// StatusFromClassification maps a provider error classification to the
// HTTP status returned to callers. An AUTH failure is the gateway's own
// upstream credential being rejected, which makes the gateway a bad
// gateway, not the caller unauthorized.
func StatusFromClassification(class provider.Classification) int {
	switch class {
	case provider.ClassRateLimit:
		return http.StatusTooManyRequests
	case provider.ClassAuth:
		return http.StatusBadGateway
	case provider.ClassPermanent:
		return http.StatusUnprocessableEntity
	case provider.ClassConfig:
		return http.StatusInternalServerError
	case provider.ClassTemporary:
		return http.StatusServiceUnavailable
	default:
		return http.StatusServiceUnavailable
	}
}

// statusFromKind maps a local api error kind to an HTTP status.
func statusFromKind(kind api.ErrorKind) int {
	switch kind {
	case api.ErrorKindInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates an error from the dispatch path into an HTTP
// status and JSON body. Classified provider errors and local api errors
// each carry their own mapping; anything else is an unexpected fault
// reported as a plain 500.
func WriteError(w http.ResponseWriter, err error) {
	var perr *provider.Error
	if errors.As(err, &perr) {
		if perr.RetryAfter > 0 {
			secs := int(math.Ceil(perr.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		writeBody(w, StatusFromClassification(perr.Class), ErrorBody{
			Type:           "provider_error",
			Classification: string(perr.Class),
			Message:        perr.Message,
		})
		return
	}

	var aerr *api.Error
	if errors.As(err, &aerr) {
		writeBody(w, statusFromKind(aerr.Kind), ErrorBody{
			Type:    string(aerr.Kind),
			Param:   aerr.Param,
			Message: aerr.Message,
		})
		return
	}

	writeBody(w, http.StatusInternalServerError, ErrorBody{
		Type:    string(api.ErrorKindServer),
		Message: "internal server error",
	})
}

func writeBody(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: body})
}
