package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/debug"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/secrets"
)

// Client performs HTTP calls against an OpenAI-compatible backend and
// normalizes results into the canonical api types. Provider adapters
// embed this Client and delegate their capability methods to it; the
// adapter decides which capabilities it exposes.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       secrets.Secret
	providerName string
}

// NewClient creates a Client for an OpenAI-compatible backend. An empty
// apiKey is valid for credential-free local backends.
func NewClient(providerName, baseURL string, apiKey secrets.Secret, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		apiKey:       apiKey,
		providerName: providerName,
	}
}

// Chat performs non-streaming inference against /v1/chat/completions.
func (c *Client) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error) {
	chatReq := TranslateChat(req, false)

	var chatResp ChatCompletionResponse
	if err := c.postJSON(ctx, "/v1/chat/completions", chatReq, &chatResp); err != nil {
		return nil, err
	}

	return ChatResultFromResponse(&chatResp, c.providerName, req.Model)
}

// ChatStream performs streaming inference against /v1/chat/completions.
// The returned channel is closed when the stream completes, fails, or
// ctx is cancelled.
//
// The HTTP client timeout is not applied for streaming requests because
// a stream can legitimately outlast any fixed timeout; the context
// controls the request lifetime instead.
func (c *Client) ChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error) {
	chatReq := TranslateChat(req, true)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	c.setAuth(httpReq)

	streamClient := &http.Client{Transport: c.httpClient.Transport}

	debug.Log("streaming", "stream opening", "provider", c.providerName, "model", req.Model)

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, provider.WrapNetwork(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		return nil, MapHTTPError(httpResp)
	}

	ch := make(chan api.StreamEvent, 16)
	go func() {
		defer close(ch)
		defer httpResp.Body.Close()
		ParseSSEStream(ctx, httpResp.Body, c.providerName, req.Model, ch)
	}()

	return ch, nil
}

// Embed computes embeddings against /v1/embeddings.
func (c *Client) Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error) {
	embedReq := TranslateEmbed(req)

	var embedResp EmbeddingsResponse
	if err := c.postJSON(ctx, "/v1/embeddings", embedReq, &embedResp); err != nil {
		return nil, err
	}

	return EmbedResultFromResponse(&embedResp, c.providerName, req.Model), nil
}

// ListModels queries /v1/models.
func (c *Client) ListModels(ctx context.Context) ([]api.ModelDescriptor, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	c.setAuth(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, provider.WrapNetwork(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, &provider.Error{
			Class:   provider.ClassTemporary,
			Message: "malformed upstream models response",
			Cause:   err,
		}
	}

	var models []api.ModelDescriptor
	for _, m := range modelsResp.Data {
		models = append(models, api.ModelDescriptor{ID: m.ID, OwnedBy: m.OwnedBy})
	}
	return models, nil
}

// CheckHealth probes /v1/models as a lightweight availability check.
func (c *Client) CheckHealth(ctx context.Context) (*api.Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	c.setAuth(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &api.Health{
			Provider: c.providerName,
			Status:   api.HealthFailed,
			Details:  "backend unreachable",
		}, nil
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &api.Health{Provider: c.providerName, Status: api.HealthOK}, nil
	}

	return &api.Health{
		Provider: c.providerName,
		Status:   api.HealthDegraded,
		Details:  fmt.Sprintf("backend returned HTTP %d", httpResp.StatusCode),
	}, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// postJSON posts a JSON body and decodes a JSON response, mapping
// non-2xx statuses and network faults to classified errors.
func (c *Client) postJSON(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuth(httpReq)

	debug.Log("providers", "upstream request",
		"provider", c.providerName, "path", path, "bytes", len(body))
	debug.Raw("providers", string(body))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return provider.WrapNetwork(err)
	}
	defer httpResp.Body.Close()

	debug.Log("providers", "upstream response",
		"provider", c.providerName, "path", path, "status", httpResp.StatusCode)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return MapHTTPError(httpResp)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(respBody); err != nil {
		return &provider.Error{
			Class:   provider.ClassTemporary,
			Message: "malformed upstream response",
			Cause:   err,
		}
	}

	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if !c.apiKey.IsEmpty() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey.Expose())
	}
}
