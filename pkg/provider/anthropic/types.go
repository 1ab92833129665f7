package anthropic

// Messages API wire types.

// messagesRequest is the request body for /v1/messages.
type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []wireMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	Metadata    *wireMetadata `json:"metadata,omitempty"`
}

// wireMetadata carries caller attribution.
type wireMetadata struct {
	UserID string `json:"user_id,omitempty"`
}

// wireMessage is one turn in the Messages API format.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the non-streaming response from /v1/messages.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      map[string]any `json:"usage,omitempty"`
}

// contentBlock is one block in a response message.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// streamEvent is a single SSE event payload. Anthropic tags every
// payload with a type field; the fields populated depend on the type.
type streamEvent struct {
	Type string `json:"type"`

	// message_start
	Message *messagesResponse `json:"message,omitempty"`

	// content_block_delta / message_delta
	Index int          `json:"index,omitempty"`
	Delta *streamDelta `json:"delta,omitempty"`

	// message_delta carries cumulative output usage.
	Usage map[string]any `json:"usage,omitempty"`

	// error events
	Error *wireError `json:"error,omitempty"`
}

// streamDelta holds the incremental payload of a delta event.
type streamDelta struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

// errorResponse is the error body format.
type errorResponse struct {
	Type  string     `json:"type"`
	Error *wireError `json:"error"`
}

// wireError is the embedded error detail.
type wireError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// modelsResponse is the response from /v1/models.
type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

// modelEntry is one model in the /v1/models response.
type modelEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// Usage field name candidates for the Messages API.
var (
	usageInputKeys  = []string{"input_tokens"}
	usageOutputKeys = []string{"output_tokens"}
	usageTotalKeys  = []string{"total_tokens"}
)
