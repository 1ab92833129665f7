package openaicompat

import (
	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// TranslateChat converts a canonical chat request into the Chat
// Completions format. The model must already be resolved by routing.
func TranslateChat(req *api.ChatRequest, stream bool) ChatCompletionRequest {
	cr := ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
		Stream:      stream,
		User:        req.CallerTool,
	}

	// When streaming, ask the backend to report usage in the stream.
	if stream {
		cr.StreamOptions = &ChatStreamOptions{IncludeUsage: true}
	}

	for _, m := range req.Messages {
		cr.Messages = append(cr.Messages, ChatMessage{Role: m.Role, Content: m.Content})
	}

	return cr
}

// ChatResultFromResponse converts a Chat Completions response into the
// canonical result, normalizing usage figures.
func ChatResultFromResponse(resp *ChatCompletionResponse, providerName, model string) (*api.ChatResult, error) {
	if len(resp.Choices) == 0 {
		return nil, provider.NewError(provider.ClassTemporary, "upstream returned no completion choices")
	}

	choice := resp.Choices[0]
	reply := api.Message{Role: choice.Message.Role, Content: choice.Message.Content}
	if reply.Role == "" {
		reply.Role = "assistant"
	}

	if resp.Model != "" {
		model = resp.Model
	}

	return &api.ChatResult{
		Reply:    reply,
		Usage:    provider.NormalizeUsage(resp.Usage, UsageInputKeys, UsageOutputKeys, UsageTotalKeys),
		Provider: api.ProviderInfo{Name: providerName, Model: model},
		TraceID:  resp.ID,
	}, nil
}

// TranslateEmbed converts a canonical embedding request into the
// Embeddings format. Text inputs pass through as strings; pre-computed
// vectors pass through as number arrays.
func TranslateEmbed(req *api.EmbedRequest) EmbeddingsRequest {
	er := EmbeddingsRequest{Model: req.Model}
	for _, in := range req.Inputs {
		if in.IsVec {
			er.Input = append(er.Input, in.Vector)
		} else {
			er.Input = append(er.Input, in.Text)
		}
	}
	return er
}

// EmbedResultFromResponse converts an Embeddings response into the
// canonical result. Vectors are ordered by the upstream index field.
func EmbedResultFromResponse(resp *EmbeddingsResponse, providerName, model string) *api.EmbedResult {
	vectors := make([][]float64, len(resp.Data))
	for i, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= len(vectors) {
			idx = i
		}
		vectors[idx] = item.Embedding
	}

	if resp.Model != "" {
		model = resp.Model
	}

	return &api.EmbedResult{
		Vectors:  vectors,
		Usage:    provider.NormalizeUsage(resp.Usage, UsageInputKeys, UsageOutputKeys, UsageTotalKeys),
		Provider: api.ProviderInfo{Name: providerName, Model: model},
	}
}
