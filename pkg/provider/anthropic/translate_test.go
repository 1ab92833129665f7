package anthropic

import (
	"testing"

	"github.com/llmcaller/llmcaller/pkg/api"
)

func TestTranslateChatSystemPromotion(t *testing.T) {
	req := &api.ChatRequest{
		Model: "claude-test",
		Messages: []api.Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
			{Role: "system", Content: "answer in English"},
			{Role: "assistant", Content: "hello"},
		},
	}

	mr := translateChat(req, false)

	if mr.System != "be terse\n\nanswer in English" {
		t.Errorf("system = %q", mr.System)
	}
	if len(mr.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(mr.Messages))
	}
	if mr.Messages[0].Role != "user" || mr.Messages[1].Role != "assistant" {
		t.Errorf("message order not preserved: %+v", mr.Messages)
	}
}

func TestTranslateChatMaxTokens(t *testing.T) {
	req := &api.ChatRequest{Model: "claude-test", Messages: []api.Message{{Role: "user", Content: "hi"}}}

	mr := translateChat(req, false)
	if mr.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %d, want default %d", mr.MaxTokens, defaultMaxTokens)
	}

	limit := 64
	req.MaxOutputTokens = &limit
	mr = translateChat(req, false)
	if mr.MaxTokens != 64 {
		t.Errorf("max_tokens = %d, want 64", mr.MaxTokens)
	}
}

func TestTranslateChatCallerMetadata(t *testing.T) {
	req := &api.ChatRequest{
		Model:      "claude-test",
		CallerTool: "ingest-worker",
		Messages:   []api.Message{{Role: "user", Content: "hi"}},
	}

	mr := translateChat(req, true)
	if !mr.Stream {
		t.Error("stream flag not set")
	}
	if mr.Metadata == nil || mr.Metadata.UserID != "ingest-worker" {
		t.Errorf("metadata = %+v, want user_id ingest-worker", mr.Metadata)
	}
}

func TestChatResultFromResponse(t *testing.T) {
	resp := &messagesResponse{
		ID:    "msg_03",
		Role:  "assistant",
		Model: "claude-test-20260101",
		Content: []contentBlock{
			{Type: "text", Text: "first "},
			{Type: "tool_use"},
			{Type: "text", Text: "second"},
		},
		Usage: map[string]any{"input_tokens": float64(10), "output_tokens": float64(4)},
	}

	result := chatResultFromResponse(resp, "anthropic", "claude-test")

	if result.Reply.Content != "first second" {
		t.Errorf("content = %q", result.Reply.Content)
	}
	if result.Provider.Model != "claude-test-20260101" {
		t.Errorf("served model not preferred: %q", result.Provider.Model)
	}
	if result.TraceID != "msg_03" {
		t.Errorf("traceID = %q", result.TraceID)
	}
	if result.Usage.InputTokens != 10 || result.Usage.OutputTokens != 4 {
		t.Errorf("usage = %+v", result.Usage)
	}
}

func TestChatResultFromResponseDefaults(t *testing.T) {
	result := chatResultFromResponse(&messagesResponse{}, "anthropic", "claude-test")

	if result.Reply.Role != "assistant" {
		t.Errorf("role = %q, want assistant", result.Reply.Role)
	}
	if result.Provider.Model != "claude-test" {
		t.Errorf("model = %q, want requested model as fallback", result.Provider.Model)
	}
}
