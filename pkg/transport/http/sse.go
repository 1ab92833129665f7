package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/transport"
)

// sseWriter serializes a normalized stream onto the wire as SSE frames:
//
//	event: {type}\n
//	data: {json}\n
//	\n
//
// The completion event is terminal and is followed by a [DONE] sentinel
// block. Error events are rewritten into the structured error envelope
// before serialization so diagnostic causes never reach the caller.
type sseWriter struct {
	w        http.ResponseWriter
	rc       *http.ResponseController
	started  bool
	finished bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	return &sseWriter{w: w, rc: http.NewResponseController(w)}
}

// WriteEvent sends one SSE frame. Terminal events (completion, error)
// also emit the [DONE] sentinel and close the logical stream.
func (s *sseWriter) WriteEvent(event api.StreamEvent) error {
	if s.finished {
		return errors.New("stream already finished")
	}

	if !s.started {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		s.started = true
	}

	var payload any = event
	if event.Type == api.EventError {
		payload = errorFrame(event)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	if event.Type == api.EventCompletion || event.Type == api.EventError {
		if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
			return fmt.Errorf("failed to write sentinel: %w", err)
		}
		if err := s.rc.Flush(); err != nil {
			return fmt.Errorf("failed to flush sentinel: %w", err)
		}
		s.finished = true
	}

	return nil
}

// errorFrame converts an internal error event into the caller-facing
// error envelope.
func errorFrame(event api.StreamEvent) transport.ErrorResponse {
	body := transport.ErrorBody{
		Type:    "provider_error",
		Message: "stream failed",
		TraceID: event.TraceID,
	}

	var perr *provider.Error
	if errors.As(event.Err, &perr) {
		body.Classification = string(perr.Class)
		body.Message = perr.Message
	}

	return transport.ErrorResponse{Error: body}
}
