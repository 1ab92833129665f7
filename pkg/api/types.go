package api

import (
	"encoding/json"
	"fmt"
)

// Capability identifies an operation a provider adapter may support.
type Capability string

const (
	CapabilityChat       Capability = "chat"
	CapabilityChatStream Capability = "chatStream"
	CapabilityEmbed      Capability = "embed"
	CapabilityListModels Capability = "listModels"
	CapabilityHealth     Capability = "checkHealth"
)

// RoutableCapabilities are the capabilities a provider may declare in
// configuration and that participate in routing selection. ListModels and
// CheckHealth are adapter-level operations that bypass routing.
var RoutableCapabilities = []Capability{CapabilityChat, CapabilityChatStream, CapabilityEmbed}

// Message is a single role/content pair in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the canonical chat (and streaming chat) request.
// Provider and Model are caller overrides; after routing both are
// concretely populated on the dispatch path.
type ChatRequest struct {
	RequestID  string    `json:"requestId"`
	CallerTool string    `json:"callerTool"`
	Messages   []Message `json:"messages"`
	Provider   string    `json:"provider,omitempty"`
	Model      string    `json:"model,omitempty"`

	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// EmbedInput is one embedding input: either raw text or a pre-computed
// numeric vector. Exactly one of the two fields is set.
type EmbedInput struct {
	Text   string
	Vector []float64
	IsVec  bool
}

// UnmarshalJSON accepts either a JSON string or a JSON number array.
func (e *EmbedInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Text = s
		e.IsVec = false
		return nil
	}
	var v []float64
	if err := json.Unmarshal(data, &v); err == nil {
		e.Vector = v
		e.IsVec = true
		return nil
	}
	return fmt.Errorf("embed input must be a string or a number array")
}

// MarshalJSON writes the input back in its original shape.
func (e EmbedInput) MarshalJSON() ([]byte, error) {
	if e.IsVec {
		return json.Marshal(e.Vector)
	}
	return json.Marshal(e.Text)
}

// EmbedRequest is the canonical embedding request.
type EmbedRequest struct {
	RequestID  string       `json:"requestId"`
	CallerTool string       `json:"callerTool"`
	Inputs     []EmbedInput `json:"inputs"`
	Provider   string       `json:"provider,omitempty"`
	Model      string       `json:"model,omitempty"`
}

// Usage reports token consumption for one call. TotalTokens is the
// upstream-supplied total when present, derived as input+output when both
// were reported, and omitted otherwise.
type Usage struct {
	InputTokens  int  `json:"inputTokens"`
	OutputTokens int  `json:"outputTokens"`
	TotalTokens  *int `json:"totalTokens,omitempty"`
}

// RoutingInfo records why a provider/model pair was chosen. It is set by
// the engine on every successful dispatch and is never caller-suppliable.
type RoutingInfo struct {
	Capability Capability `json:"capability"`
	Strategy   string     `json:"strategy"`
}

// Routing strategy tags.
const (
	StrategyCallerOverride    = "caller-override"
	StrategyCapabilityDefault = "capability-default"
	StrategyFallback          = "fallback"
)

// ProviderInfo identifies which provider/model served a request and how
// it was selected.
type ProviderInfo struct {
	Name    string       `json:"name"`
	Model   string       `json:"model"`
	Routing *RoutingInfo `json:"routing,omitempty"`
}

// ChatResult is the canonical non-streaming chat response.
type ChatResult struct {
	Reply    Message      `json:"reply"`
	Usage    Usage        `json:"usage"`
	Provider ProviderInfo `json:"providerInfo"`

	// TraceID is the upstream trace identifier; empty if the provider
	// did not supply one.
	TraceID string `json:"traceId,omitempty"`

	// RetryAfterMS is an upstream backoff hint in milliseconds. It is
	// set when the call succeeded only after a throttled attempt, so
	// callers can pace themselves before the next request.
	RetryAfterMS *int `json:"retryAfterMs,omitempty"`

	// Attempts is the number of dispatch attempts consumed (>=1).
	Attempts int `json:"attempts"`
}

// EmbedResult is the canonical embedding response.
type EmbedResult struct {
	Vectors  [][]float64  `json:"vectors"`
	Usage    Usage        `json:"usage"`
	Provider ProviderInfo `json:"providerInfo"`
	TraceID  string       `json:"traceId,omitempty"`
	Attempts int          `json:"attempts"`
}

// ModelDescriptor describes one model served by a provider.
type ModelDescriptor struct {
	ID      string `json:"id"`
	OwnedBy string `json:"ownedBy,omitempty"`
}

// ModelList is the discovery result for one provider, enriched with the
// routing configuration so callers can audit selection behavior without
// making inference calls.
type ModelList struct {
	Provider     string                `json:"provider"`
	Models       []ModelDescriptor     `json:"models"`
	DefaultModel string                `json:"defaultModel,omitempty"`
	Defaults     map[Capability]string `json:"defaults,omitempty"`
	Scores       map[Capability]int    `json:"scores,omitempty"`
}

// HealthStatus is the coarse health classification for a provider.
type HealthStatus string

const (
	HealthOK       HealthStatus = "ok"
	HealthDegraded HealthStatus = "degraded"
	HealthFailed   HealthStatus = "failed"
)

// Health is the result of a provider health probe.
type Health struct {
	Provider string       `json:"provider"`
	Status   HealthStatus `json:"status"`
	Details  string       `json:"details,omitempty"`
}
