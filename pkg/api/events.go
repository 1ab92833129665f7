package api

// StreamEventType classifies a normalized streaming event.
type StreamEventType string

const (
	// EventDelta carries an incremental role/content fragment.
	EventDelta StreamEventType = "delta"

	// EventCompletion carries the final accumulated message. It is always
	// the last event of a successful stream.
	EventCompletion StreamEventType = "completion"

	// EventError terminates a failed stream. It is internal to the
	// process: the transport translates it into an error frame and it is
	// never serialized as-is.
	EventError StreamEventType = "error"
)

// StreamEvent is one unit of a normalized streaming sequence. The
// sequence is lazy, finite, and not restartable; a consumer that wants
// the conversation again must re-issue the request.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	TraceID string          `json:"traceId,omitempty"`

	// Delta fields: only the new fragment, never the running total.
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// Completion fields.
	Message  *Message      `json:"message,omitempty"`
	Usage    *Usage        `json:"usage,omitempty"`
	Provider *ProviderInfo `json:"providerInfo,omitempty"`

	// Err is populated only on EventError.
	Err error `json:"-"`
}

// DeltaEvent builds a delta event for a new fragment.
func DeltaEvent(traceID, role, content string) StreamEvent {
	return StreamEvent{Type: EventDelta, TraceID: traceID, Role: role, Content: content}
}

// CompletionEvent builds the terminal completion event.
func CompletionEvent(traceID string, msg Message, usage Usage, info ProviderInfo) StreamEvent {
	return StreamEvent{
		Type:     EventCompletion,
		TraceID:  traceID,
		Message:  &msg,
		Usage:    &usage,
		Provider: &info,
	}
}

// ErrorEvent builds a terminal failure event.
func ErrorEvent(traceID string, err error) StreamEvent {
	return StreamEvent{Type: EventError, TraceID: traceID, Err: err}
}
