package main

import (
	"encoding/json"
	"fmt"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/engine"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

func main() {
	fmt.Println("=== llmcaller core protocol demo ===")
	fmt.Println()

	// 1. Build a canonical chat request
	req := &api.ChatRequest{
		RequestID:  api.NewRequestID(),
		CallerTool: "demo",
		Messages: []api.Message{
			{Role: "system", Content: "You are a concise assistant."},
			{Role: "user", Content: "What is the capital of France?"},
		},
	}

	// 2. Validate request
	if err := api.ValidateChatRequest(req); err != nil {
		fmt.Printf("Validation FAILED: %v\n", err)
		return
	}
	fmt.Println("[1] Request validated successfully")

	// 3. Serialize request to JSON
	data, _ := json.MarshalIndent(req, "", "  ")
	fmt.Printf("\n[2] Request JSON:\n%s\n", data)

	// 4. Routing decisions across a three-provider configuration
	providers := []engine.ProviderSpec{
		{
			Name:         "openai",
			DefaultModel: "gpt-base",
			Capabilities: []api.Capability{api.CapabilityChat, api.CapabilityChatStream, api.CapabilityEmbed},
			Defaults:     map[api.Capability]string{api.CapabilityEmbed: "embed-small"},
			Scores:       map[api.Capability]int{api.CapabilityChat: 60},
		},
		{
			Name:         "anthropic",
			DefaultModel: "claude-base",
			Capabilities: []api.Capability{api.CapabilityChat, api.CapabilityChatStream},
			Defaults:     map[api.Capability]string{api.CapabilityChat: "claude-chat"},
			Scores:       map[api.Capability]int{api.CapabilityChat: 40},
		},
		{
			Name:         "lmstudio",
			DefaultModel: "qwen-local",
		},
	}

	fmt.Println("[3] Routing decisions:")
	for _, cap := range api.RoutableCapabilities {
		sel, err := engine.Route(providers, cap, "", "")
		if err != nil {
			fmt.Printf("    %-12s ERROR %v\n", cap, err)
			continue
		}
		fmt.Printf("    %-12s -> %s/%s (%s)\n", cap, sel.Provider, sel.Model, sel.Strategy)
	}

	sel, _ := engine.Route(providers, api.CapabilityChat, "lmstudio", "")
	fmt.Printf("    override     -> %s/%s (%s)\n", sel.Provider, sel.Model, sel.Strategy)

	// 5. Error taxonomy: HTTP status classification and retry policy
	fmt.Println("\n[4] Error taxonomy:")
	for _, status := range []int{401, 403, 404, 429, 500, 503} {
		mapped := provider.FromStatus(status, "upstream failure")
		fmt.Printf("    HTTP %d -> %-10s retryable=%v\n", status, mapped.Class, mapped.Retryable())
	}

	// 6. Classified error with backoff hint
	perr := &provider.Error{
		Class:      provider.ClassRateLimit,
		Message:    "rate limit exceeded",
		RetryAfter: 2_000_000_000,
	}
	fmt.Printf("\n[5] Classified error: %v (retry after %s)\n", perr, perr.RetryAfter)

	// 7. Streaming event samples
	fmt.Println("\n[6] Streaming event samples:")
	events := []api.StreamEvent{
		api.DeltaEvent("trace-1", "assistant", ""),
		api.DeltaEvent("trace-1", "", "Paris"),
		api.CompletionEvent("trace-1",
			api.Message{Role: "assistant", Content: "Paris"},
			api.Usage{InputTokens: 12, OutputTokens: 1},
			api.ProviderInfo{Name: "openai", Model: "gpt-base"}),
	}
	for _, ev := range events {
		evJSON, _ := json.Marshal(ev)
		fmt.Printf("    %s\n", evJSON)
	}

	// 8. Validation error demo
	fmt.Println("\n[7] Validation error examples:")
	bad := &api.ChatRequest{CallerTool: "demo"}
	if err := api.ValidateChatRequest(bad); err != nil {
		fmt.Printf("    Missing messages: %v\n", err)
	}
	temp := 3.0
	bad2 := &api.ChatRequest{
		CallerTool:  "demo",
		Messages:    []api.Message{{Role: "user", Content: "hi"}},
		Temperature: &temp,
	}
	if err := api.ValidateChatRequest(bad2); err != nil {
		fmt.Printf("    Bad temperature: %v\n", err)
	}

	fmt.Println("\n=== demo complete ===")
}
