package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/secrets"
)

func TestClient_Chat(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected non-streaming request")
		}

		json.NewEncoder(w).Encode(ChatCompletionResponse{
			ID:    "chatcmpl-7",
			Model: req.Model,
			Choices: []ChatChoice{
				{Message: ChatMessage{Role: "assistant", Content: "pong"}, FinishReason: "stop"},
			},
			Usage: map[string]any{"prompt_tokens": 2, "completion_tokens": 1, "total_tokens": 3},
		})
	}))
	defer srv.Close()

	c := NewClient("openai", srv.URL, secrets.New("sk-test"), 5*time.Second)
	defer c.Close()

	result, err := c.Chat(context.Background(), &api.ChatRequest{
		Model:    "gpt-test",
		Messages: []api.Message{{Role: "user", Content: "ping"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer credential, got %q", gotAuth)
	}
	if result.Reply.Content != "pong" {
		t.Errorf("unexpected reply: %+v", result.Reply)
	}
	if result.TraceID != "chatcmpl-7" {
		t.Errorf("unexpected trace id %q", result.TraceID)
	}
}

func TestClient_NoCredentialOmitsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("credential-free client must not send Authorization")
		}
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []ChatChoice{{Message: ChatMessage{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer srv.Close()

	c := NewClient("lmstudio", srv.URL, secrets.New(""), 5*time.Second)
	defer c.Close()

	if _, err := c.Chat(context.Background(), &api.ChatRequest{
		Model:    "local",
		Messages: []api.Message{{Role: "user", Content: "hi"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		chunks := []string{
			`{"id":"s1","choices":[{"delta":{"role":"assistant","content":"a"}}]}`,
			`{"id":"s1","choices":[{"delta":{"content":"b"}}]}`,
			`{"id":"s1","choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`[DONE]`,
		}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
			fl.Flush()
		}
	}))
	defer srv.Close()

	c := NewClient("openai", srv.URL, secrets.New("k"), 5*time.Second)
	defer c.Close()

	ch, err := c.ChatStream(context.Background(), &api.ChatRequest{
		Model:    "m",
		Messages: []api.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events []api.StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[2].Type != api.EventCompletion || events[2].Message.Content != "ab" {
		t.Errorf("unexpected completion: %+v", events[2])
	}
}

func TestClient_ChatStream_UpstreamErrorBeforeFirstByte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
	}))
	defer srv.Close()

	c := NewClient("openai", srv.URL, secrets.New("k"), 5*time.Second)
	defer c.Close()

	_, err := c.ChatStream(context.Background(), &api.ChatRequest{
		Model:    "m",
		Messages: []api.Message{{Role: "user", Content: "hi"}},
	})

	var pe *provider.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected classified error, got %v", err)
	}
	if pe.Class != provider.ClassRateLimit {
		t.Errorf("expected RATE_LIMIT, got %s", pe.Class)
	}
}

func TestClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(EmbeddingsResponse{
			Model: "embed-model",
			Data:  []EmbeddingItem{{Index: 0, Embedding: []float64{0.1, 0.2}}},
			Usage: map[string]any{"prompt_tokens": 4, "total_tokens": 4},
		})
	}))
	defer srv.Close()

	c := NewClient("openai", srv.URL, secrets.New("k"), 5*time.Second)
	defer c.Close()

	result, err := c.Embed(context.Background(), &api.EmbedRequest{
		Model:  "embed-model",
		Inputs: []api.EmbedInput{{Text: "embed me"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vectors) != 1 || len(result.Vectors[0]) != 2 {
		t.Errorf("unexpected vectors: %v", result.Vectors)
	}
	if result.Usage.TotalTokens == nil || *result.Usage.TotalTokens != 4 {
		t.Errorf("unexpected usage: %+v", result.Usage)
	}
}

func TestClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ModelsResponse{
			Data: []Model{{ID: "m1", OwnedBy: "org"}, {ID: "m2"}},
		})
	}))
	defer srv.Close()

	c := NewClient("openai", srv.URL, secrets.New("k"), 5*time.Second)
	defer c.Close()

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0].ID != "m1" {
		t.Errorf("unexpected models: %+v", models)
	}
}

func TestClient_CheckHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ModelsResponse{})
	}))
	defer healthy.Close()

	c := NewClient("openai", healthy.URL, secrets.New(""), 5*time.Second)
	h, err := c.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != api.HealthOK {
		t.Errorf("expected ok, got %s", h.Status)
	}

	degraded := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer degraded.Close()

	c2 := NewClient("openai", degraded.URL, secrets.New(""), 5*time.Second)
	h, err = c2.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != api.HealthDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}

	unreachable := NewClient("openai", "http://127.0.0.1:1", secrets.New(""), time.Second)
	h, err = unreachable.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != api.HealthFailed {
		t.Errorf("expected failed, got %s", h.Status)
	}
}

func TestClient_NetworkErrorClassifiesTemporary(t *testing.T) {
	c := NewClient("openai", "http://127.0.0.1:1", secrets.New("k"), time.Second)

	_, err := c.Chat(context.Background(), &api.ChatRequest{
		Model:    "m",
		Messages: []api.Message{{Role: "user", Content: "hi"}},
	})

	var pe *provider.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected classified error, got %v", err)
	}
	if pe.Class != provider.ClassTemporary {
		t.Errorf("expected TEMPORARY, got %s", pe.Class)
	}
}
