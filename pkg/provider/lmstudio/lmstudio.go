// Package lmstudio implements the provider adapter for local
// LM Studio-style inference servers. The backend speaks the
// OpenAI-compatible wire protocol but requires no credential, so the
// adapter skips the secrets lookup entirely. This is a legitimate
// variant of the adapter contract, not an error path.
package lmstudio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/provider/openaicompat"
	"github.com/llmcaller/llmcaller/pkg/secrets"
)

// Config holds configuration for the LM Studio adapter.
type Config struct {
	// Name is the provider key. Defaults to "lmstudio".
	Name string

	// BaseURL is the local server URL (e.g., "http://localhost:1234").
	BaseURL string

	// Timeout bounds individual non-streaming HTTP requests.
	// Defaults to 120s: local models can be slow to load.
	Timeout time.Duration
}

// Adapter implements provider.Adapter for a local OpenAI-compatible
// backend.
type Adapter struct {
	cfg    Config
	client *openaicompat.Client
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates the adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("lmstudio: BaseURL is required")
	}
	if cfg.Name == "" {
		cfg.Name = "lmstudio"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Adapter{
		cfg:    cfg,
		client: openaicompat.NewClient(cfg.Name, cfg.BaseURL, secrets.New(""), cfg.Timeout),
	}, nil
}

// Name returns the provider key.
func (a *Adapter) Name() string {
	return a.cfg.Name
}

// Supports reports the adapter's capability surface.
func (a *Adapter) Supports(cap api.Capability) bool {
	switch cap {
	case api.CapabilityChat, api.CapabilityChatStream, api.CapabilityEmbed,
		api.CapabilityListModels, api.CapabilityHealth:
		return true
	}
	return false
}

// Chat performs non-streaming inference.
func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error) {
	return a.client.Chat(ctx, req)
}

// ChatStream performs streaming inference.
func (a *Adapter) ChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error) {
	return a.client.ChatStream(ctx, req)
}

// Embed computes embeddings.
func (a *Adapter) Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error) {
	return a.client.Embed(ctx, req)
}

// ListModels returns the models currently loaded in the local server.
func (a *Adapter) ListModels(ctx context.Context) ([]api.ModelDescriptor, error) {
	return a.client.ListModels(ctx)
}

// CheckHealth probes the local server.
func (a *Adapter) CheckHealth(ctx context.Context) (*api.Health, error) {
	return a.client.CheckHealth(ctx)
}

// Close releases the underlying HTTP client.
func (a *Adapter) Close() error {
	return a.client.Close()
}
