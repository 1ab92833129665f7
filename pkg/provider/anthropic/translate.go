package anthropic

import (
	"strings"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// defaultMaxTokens applies when the caller did not bound the output.
// The Messages API requires an explicit max_tokens on every request.
const defaultMaxTokens = 1024

// translateChat converts a canonical chat request into the Messages API
// format. System messages move to the top-level system field; the
// Messages API rejects them inline.
func translateChat(req *api.ChatRequest, stream bool) messagesRequest {
	mr := messagesRequest{
		Model:       req.Model,
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if req.MaxOutputTokens != nil {
		mr.MaxTokens = *req.MaxOutputTokens
	}
	if req.CallerTool != "" {
		mr.Metadata = &wireMetadata{UserID: req.CallerTool}
	}

	var system []string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		mr.Messages = append(mr.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	mr.System = strings.Join(system, "\n\n")

	return mr
}

// chatResultFromResponse converts a Messages API response into the
// canonical result. Text blocks are concatenated in order.
func chatResultFromResponse(resp *messagesResponse, providerName, model string) *api.ChatResult {
	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	role := resp.Role
	if role == "" {
		role = "assistant"
	}
	if resp.Model != "" {
		model = resp.Model
	}

	return &api.ChatResult{
		Reply:    api.Message{Role: role, Content: content.String()},
		Usage:    provider.NormalizeUsage(resp.Usage, usageInputKeys, usageOutputKeys, usageTotalKeys),
		Provider: api.ProviderInfo{Name: providerName, Model: model},
		TraceID:  resp.ID,
	}
}
