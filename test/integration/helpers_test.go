// Package integration exercises the full gateway stack end to end: a
// deterministic OpenAI-compatible upstream behind a real adapter,
// engine, auth chain, and HTTP transport.
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/auth"
	"github.com/llmcaller/llmcaller/pkg/auth/callertoken"
	"github.com/llmcaller/llmcaller/pkg/engine"
	"github.com/llmcaller/llmcaller/pkg/observability"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/provider/openai"
	"github.com/llmcaller/llmcaller/pkg/secrets"
	transporthttp "github.com/llmcaller/llmcaller/pkg/transport/http"
)

const (
	upstreamKey = "test-upstream-key"
	callerToken = "integration-token"
)

// newUpstream starts a deterministic OpenAI-compatible backend. The
// model name scripts failures: fail-429 is rate limited with a
// Retry-After hint, fail-500 always errors, flaky-once errors on the
// first call and recovers.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	var flakyCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+upstreamKey {
			writeUpstreamError(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		var req struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeUpstreamError(w, http.StatusBadRequest, "bad body")
			return
		}

		switch req.Model {
		case "fail-429":
			w.Header().Set("Retry-After", "7")
			writeUpstreamError(w, http.StatusTooManyRequests, "throttled")
			return
		case "fail-500":
			writeUpstreamError(w, http.StatusInternalServerError, "upstream exploded")
			return
		case "flaky-once":
			flakyCalls++
			if flakyCalls == 1 {
				writeUpstreamError(w, http.StatusInternalServerError, "transient")
				return
			}
		}

		if req.Stream {
			streamReply(w, req.Model)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "chatcmpl-itest",
			"object": "chat.completion",
			"model": %q,
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Paris"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 1, "total_tokens": 13}
		}`, req.Model)
	})

	mux.HandleFunc("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeUpstreamError(w, http.StatusBadRequest, "bad body")
			return
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float64{0.25, -0.5}}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": 4, "total_tokens": 4},
		})
	})

	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "data": [{"id": "gpt-base", "owned_by": "itest"}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func streamReply(w http.ResponseWriter, model string) {
	w.Header().Set("Content-Type", "text/event-stream")
	chunks := []string{
		`{"id":"s1","object":"chat.completion.chunk","model":"` + model + `","choices":[{"index":0,"delta":{"role":"assistant"},"finish_reason":null}]}`,
		`{"id":"s1","object":"chat.completion.chunk","model":"` + model + `","choices":[{"index":0,"delta":{"content":"Par"},"finish_reason":null}]}`,
		`{"id":"s1","object":"chat.completion.chunk","model":"` + model + `","choices":[{"index":0,"delta":{"content":"is"},"finish_reason":null}]}`,
		`{"id":"s1","object":"chat.completion.chunk","model":"` + model + `","choices":[{"index":0,"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":2,"total_tokens":14}}`,
	}
	for _, c := range chunks {
		fmt.Fprintf(w, "data: %s\n\n", c)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func writeUpstreamError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error": {"type": "upstream_error", "message": %q}}`, message)
}

// newGateway builds the full handler stack against the upstream.
func newGateway(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()

	adapter, err := openai.New(openai.Config{
		BaseURL: upstreamURL,
		Timeout: 5 * time.Second,
	}, secrets.Static{"OPENAI_API_KEY": upstreamKey})
	if err != nil {
		t.Fatal(err)
	}
	registry := provider.NewRegistry(adapter)
	t.Cleanup(func() { registry.Close() })

	specs := []engine.ProviderSpec{{
		Name:         "openai",
		DefaultModel: "gpt-base",
		Capabilities: []api.Capability{api.CapabilityChat, api.CapabilityChatStream, api.CapabilityEmbed},
		Defaults:     map[api.Capability]string{api.CapabilityEmbed: "embed-small"},
		Scores:       map[api.Capability]int{api.CapabilityChat: 80},
	}}

	promRegistry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promRegistry)

	eng, err := engine.New(specs, registry, engine.Config{MaxAttempts: 2, Metrics: metrics})
	if err != nil {
		t.Fatal(err)
	}

	chain := &auth.Chain{
		Authenticators: []auth.Authenticator{
			callertoken.New([]callertoken.RawEntry{{Token: callerToken, Caller: "itest"}}),
		},
		DefaultDecision: auth.No,
	}

	srv := transporthttp.NewServer(eng, chain, nil, metrics, promRegistry, transporthttp.DefaultServerConfig())
	return srv.Handler()
}

// doJSON performs an authenticated request and decodes the JSON response.
func doJSON(t *testing.T, handler http.Handler, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set(callertoken.HeaderName, callerToken)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil && rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return rec
}
