package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/provider/openaicompat"
	"github.com/llmcaller/llmcaller/pkg/secrets"
)

// Adapter implements provider.Adapter for OpenAI-style hosted backends.
//
// The credential is resolved through the secrets source on every call
// rather than at construction: a missing key surfaces as a CONFIG
// classification when the capability is exercised, and rotated keys are
// picked up without a restart.
type Adapter struct {
	cfg    Config
	source secrets.Source

	mu     sync.Mutex
	client *openaicompat.Client
	curKey string
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates the adapter. Returns an error only for structural
// misconfiguration; a missing credential is deferred to call time.
func New(cfg Config, source secrets.Source) (*Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: BaseURL is required")
	}
	if source == nil {
		return nil, fmt.Errorf("openai: secrets source is required")
	}
	return &Adapter{cfg: cfg.withDefaults(), source: source}, nil
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

// resolveClient resolves the credential and returns a wire client bound
// to it. The client is cached until the resolved key changes.
func (a *Adapter) resolveClient() (*openaicompat.Client, error) {
	key, ok := a.source.Lookup(a.cfg.APIKeyName)
	if !ok {
		return nil, &provider.Error{
			Class:   provider.ClassConfig,
			Message: "provider credential is not configured",
			Cause:   fmt.Errorf("secret %q is absent", a.cfg.APIKeyName),
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil || a.curKey != key {
		if a.client != nil {
			a.client.Close()
		}
		a.client = openaicompat.NewClient(a.cfg.Name, a.cfg.BaseURL, secrets.New(key), a.cfg.Timeout)
		a.curKey = key
	}
	return a.client, nil
}

// Chat performs non-streaming inference.
func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error) {
	client, err := a.resolveClient()
	if err != nil {
		return nil, err
	}
	return client.Chat(ctx, req)
}

// ChatStream performs streaming inference.
func (a *Adapter) ChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error) {
	client, err := a.resolveClient()
	if err != nil {
		return nil, err
	}
	return client.ChatStream(ctx, req)
}

// Embed computes embeddings.
func (a *Adapter) Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error) {
	client, err := a.resolveClient()
	if err != nil {
		return nil, err
	}
	return client.Embed(ctx, req)
}

// ListModels returns the backend's model list.
func (a *Adapter) ListModels(ctx context.Context) ([]api.ModelDescriptor, error) {
	client, err := a.resolveClient()
	if err != nil {
		return nil, err
	}
	return client.ListModels(ctx)
}

// CheckHealth probes the backend. A missing credential reports failed
// health rather than an error: health checks never crash.
func (a *Adapter) CheckHealth(ctx context.Context) (*api.Health, error) {
	client, err := a.resolveClient()
	if err != nil {
		return &api.Health{
			Provider: a.cfg.Name,
			Status:   api.HealthFailed,
			Details:  "provider credential is not configured",
		}, nil
	}
	return client.CheckHealth(ctx)
}

// Close releases the underlying HTTP client.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
