package openaicompat

// Chat Completions and Embeddings wire types shared across
// OpenAI-compatible adapters. These mirror the upstream API format.

// ChatCompletionRequest is the request body for /v1/chat/completions.
type ChatCompletionRequest struct {
	Model         string             `json:"model"`
	Messages      []ChatMessage      `json:"messages"`
	Temperature   *float64           `json:"temperature,omitempty"`
	MaxTokens     *int               `json:"max_tokens,omitempty"`
	Stream        bool               `json:"stream"`
	StreamOptions *ChatStreamOptions `json:"stream_options,omitempty"`
	User          string             `json:"user,omitempty"`
}

// ChatStreamOptions controls streaming behavior.
type ChatStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ChatMessage is a message in the Chat Completions format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the non-streaming response from
// /v1/chat/completions. Usage is decoded as a raw map because backends
// disagree on field naming; the shared usage normalizer sorts it out.
type ChatCompletionResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Model   string         `json:"model"`
	Choices []ChatChoice   `json:"choices"`
	Usage   map[string]any `json:"usage,omitempty"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionChunk is a single SSE chunk in a streaming response.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Model   string            `json:"model"`
	Choices []ChatChunkChoice `json:"choices"`
	Usage   map[string]any    `json:"usage,omitempty"`
}

// ChatChunkChoice is a streaming choice delta.
type ChatChunkChoice struct {
	Index        int            `json:"index"`
	Delta        ChatChunkDelta `json:"delta"`
	FinishReason *string        `json:"finish_reason"`
}

// ChatChunkDelta holds incremental content in a streaming chunk.
type ChatChunkDelta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// EmbeddingsRequest is the request body for /v1/embeddings. Input
// entries are strings or pre-computed numeric vectors.
type EmbeddingsRequest struct {
	Model string `json:"model"`
	Input []any  `json:"input"`
}

// EmbeddingsResponse is the response from /v1/embeddings.
type EmbeddingsResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []EmbeddingItem `json:"data"`
	Usage  map[string]any  `json:"usage,omitempty"`
}

// EmbeddingItem is one embedding vector in the response.
type EmbeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// ErrorResponse is the error body format used by Chat Completions
// backends.
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// ModelsResponse is the response from /v1/models.
type ModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Model is one model entry in the /v1/models response.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// Usage field name candidates across OpenAI-compatible backends. Chat
// backends report prompt/completion counts; embeddings backends report
// prompt counts only.
var (
	UsageInputKeys  = []string{"prompt_tokens", "input_tokens"}
	UsageOutputKeys = []string{"completion_tokens", "output_tokens"}
	UsageTotalKeys  = []string{"total_tokens"}
)
