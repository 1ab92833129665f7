package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/secrets"
)

// apiVersion is the Messages API version header value.
const apiVersion = "2023-06-01"

// Config holds configuration for the Anthropic adapter.
type Config struct {
	// Name is the provider key. Defaults to "anthropic".
	Name string

	// BaseURL is the backend URL (e.g., "https://api.anthropic.com").
	BaseURL string

	// APIKeyName is the secret name resolved through the secrets source.
	// Defaults to "ANTHROPIC_API_KEY".
	APIKeyName string

	// Timeout bounds individual non-streaming HTTP requests.
	// Defaults to 120s.
	Timeout time.Duration
}

// Adapter implements provider.Adapter for Anthropic-style backends.
// It supports chat, streaming chat, model discovery, and health; the
// Messages API has no embeddings endpoint.
type Adapter struct {
	cfg        Config
	source     secrets.Source
	httpClient *http.Client
}

var _ provider.Adapter = (*Adapter)(nil)

// New creates the adapter.
func New(cfg Config, source secrets.Source) (*Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("anthropic: BaseURL is required")
	}
	if source == nil {
		return nil, fmt.Errorf("anthropic: secrets source is required")
	}
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	if cfg.APIKeyName == "" {
		cfg.APIKeyName = "ANTHROPIC_API_KEY"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Adapter{
		cfg:        cfg,
		source:     source,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the provider key.
func (a *Adapter) Name() string {
	return a.cfg.Name
}

// Supports reports the adapter's capability surface.
func (a *Adapter) Supports(cap api.Capability) bool {
	switch cap {
	case api.CapabilityChat, api.CapabilityChatStream,
		api.CapabilityListModels, api.CapabilityHealth:
		return true
	}
	return false
}

// credential resolves the API key on every call so rotated keys are
// picked up without a restart. Absence is a CONFIG classification.
func (a *Adapter) credential() (secrets.Secret, *provider.Error) {
	key, ok := a.source.Lookup(a.cfg.APIKeyName)
	if !ok {
		return secrets.Secret{}, &provider.Error{
			Class:   provider.ClassConfig,
			Message: "provider credential is not configured",
			Cause:   fmt.Errorf("secret %q is absent", a.cfg.APIKeyName),
		}
	}
	return secrets.New(key), nil
}

// Chat performs non-streaming inference against /v1/messages.
func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error) {
	key, cerr := a.credential()
	if cerr != nil {
		return nil, cerr
	}

	body, err := json.Marshal(translateChat(req, false))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := a.newRequest(ctx, http.MethodPost, "/v1/messages", bytes.NewReader(body), key)
	if err != nil {
		return nil, err
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, provider.WrapNetwork(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&msgResp); err != nil {
		return nil, &provider.Error{
			Class:   provider.ClassTemporary,
			Message: "malformed upstream response",
			Cause:   err,
		}
	}

	return chatResultFromResponse(&msgResp, a.cfg.Name, req.Model), nil
}

// ChatStream performs streaming inference against /v1/messages.
//
// The HTTP client timeout is not applied: the context controls the
// request lifetime, and the producing goroutine closes the body so an
// abandoned stream releases the connection on cancellation.
func (a *Adapter) ChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error) {
	key, cerr := a.credential()
	if cerr != nil {
		return nil, cerr
	}

	body, err := json.Marshal(translateChat(req, true))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := a.newRequest(ctx, http.MethodPost, "/v1/messages", bytes.NewReader(body), key)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	streamClient := &http.Client{Transport: a.httpClient.Transport}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, provider.WrapNetwork(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		return nil, mapHTTPError(httpResp)
	}

	ch := make(chan api.StreamEvent, 16)
	go func() {
		defer close(ch)
		defer httpResp.Body.Close()
		parseSSEStream(ctx, httpResp.Body, a.cfg.Name, req.Model, ch)
	}()

	return ch, nil
}

// Embed is not part of the Messages API surface.
func (a *Adapter) Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error) {
	return nil, provider.NewError(provider.ClassConfig, "provider does not support embeddings")
}

// ListModels queries /v1/models.
func (a *Adapter) ListModels(ctx context.Context) ([]api.ModelDescriptor, error) {
	key, cerr := a.credential()
	if cerr != nil {
		return nil, cerr
	}

	httpReq, err := a.newRequest(ctx, http.MethodGet, "/v1/models", nil, key)
	if err != nil {
		return nil, err
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, provider.WrapNetwork(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var modelsResp modelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, &provider.Error{
			Class:   provider.ClassTemporary,
			Message: "malformed upstream models response",
			Cause:   err,
		}
	}

	var models []api.ModelDescriptor
	for _, m := range modelsResp.Data {
		models = append(models, api.ModelDescriptor{ID: m.ID})
	}
	return models, nil
}

// CheckHealth probes /v1/models.
func (a *Adapter) CheckHealth(ctx context.Context) (*api.Health, error) {
	key, cerr := a.credential()
	if cerr != nil {
		return &api.Health{
			Provider: a.cfg.Name,
			Status:   api.HealthFailed,
			Details:  "provider credential is not configured",
		}, nil
	}

	httpReq, err := a.newRequest(ctx, http.MethodGet, "/v1/models", nil, key)
	if err != nil {
		return nil, err
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return &api.Health{
			Provider: a.cfg.Name,
			Status:   api.HealthFailed,
			Details:  "backend unreachable",
		}, nil
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &api.Health{Provider: a.cfg.Name, Status: api.HealthOK}, nil
	}
	return &api.Health{
		Provider: a.cfg.Name,
		Status:   api.HealthDegraded,
		Details:  fmt.Sprintf("backend returned HTTP %d", httpResp.StatusCode),
	}, nil
}

// Close releases the underlying HTTP client.
func (a *Adapter) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// newRequest builds a Messages API request with auth and version headers.
func (a *Adapter) newRequest(ctx context.Context, method, path string, body *bytes.Reader, key secrets.Secret) (*http.Request, error) {
	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, nil)
	}
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", apiVersion)
	httpReq.Header.Set("x-api-key", key.Expose())
	return httpReq, nil
}
