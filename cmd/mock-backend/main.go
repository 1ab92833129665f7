// Command mock-backend runs a deterministic OpenAI-compatible upstream
// for manual gateway testing. It answers chat, streaming chat,
// embeddings, and model discovery with predictable output, and injects
// failures on request so every branch of the error taxonomy can be
// exercised without a real provider.
//
// Fault injection is keyed on the requested model name:
//
//	mock-429  - rate limited with a Retry-After header
//	mock-500  - internal server error
//	mock-401  - invalid credential
//	mock-flaky - fails with 500 on every other request
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("POST /v1/embeddings", handleEmbeddings)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type embedRequest struct {
	Model string `json:"model"`
	Input []any  `json:"input"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   usage        `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Fault injection ---

var flakyCounter atomic.Int64

// injectFault writes a scripted failure when the model name asks for
// one. Returns true if a response was written.
func injectFault(w http.ResponseWriter, model string) bool {
	switch model {
	case "mock-429":
		w.Header().Set("Retry-After", "2")
		writeError(w, http.StatusTooManyRequests, "rate_limit_error", "mock rate limit exceeded")
		return true
	case "mock-500":
		writeError(w, http.StatusInternalServerError, "server_error", "mock internal error")
		return true
	case "mock-401":
		writeError(w, http.StatusUnauthorized, "authentication_error", "mock invalid credential")
		return true
	case "mock-flaky":
		if flakyCounter.Add(1)%2 == 1 {
			writeError(w, http.StatusInternalServerError, "server_error", "mock transient failure")
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"type": errType, "message": message},
	})
}

// --- Chat ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body")
		return
	}
	if injectFault(w, req.Model) {
		return
	}

	model := req.Model
	if model == "" {
		model = "mock-model"
	}

	if req.Stream {
		handleStreaming(w, model, replyTokens(&req))
		return
	}

	reply := strings.Join(replyTokens(&req), "")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Model:  model,
		Choices: []chatChoice{{
			Index:        0,
			Message:      chatMsg{Role: "assistant", Content: reply},
			FinishReason: "stop",
		}},
		Usage: usage{PromptTokens: 10, CompletionTokens: len(replyTokens(&req)), TotalTokens: 10 + len(replyTokens(&req))},
	})
}

// replyTokens returns the deterministic reply, split into streaming
// chunks. Echo requests reflect the last user message back so routing
// and decoration can be verified end to end.
func replyTokens(req *chatRequest) []string {
	last := lastUserMessage(req)
	if strings.HasPrefix(strings.ToLower(last), "echo:") {
		return []string{strings.TrimSpace(last[len("echo:"):])}
	}
	if strings.Contains(strings.ToLower(last), "count from 1 to 5") {
		return []string{"1", ", ", "2", ", ", "3", ", ", "4", ", ", "5"}
	}
	return []string{"Hello", " from", " the", " mock", " backend", "."}
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}

// --- Streaming ---

func handleStreaming(w http.ResponseWriter, model string, tokens []string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeChunk(w, model, map[string]any{"role": "assistant"}, nil, nil)
	flusher.Flush()

	for _, token := range tokens {
		writeChunk(w, model, map[string]any{"content": token}, nil, nil)
		flusher.Flush()
	}

	stop := "stop"
	writeChunk(w, model, map[string]any{}, &stop, &usage{
		PromptTokens:     10,
		CompletionTokens: len(tokens),
		TotalTokens:      10 + len(tokens),
	})
	flusher.Flush()

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeChunk(w http.ResponseWriter, model string, delta map[string]any, finishReason *string, u *usage) {
	chunk := map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{map[string]any{
			"index":         0,
			"delta":         delta,
			"finish_reason": finishReason,
		}},
	}
	if u != nil {
		chunk["usage"] = u
	}

	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// --- Embeddings ---

func handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body")
		return
	}
	if injectFault(w, req.Model) {
		return
	}

	data := make([]map[string]any, len(req.Input))
	for i, input := range req.Input {
		data[i] = map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": deterministicVector(fmt.Sprint(input)),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
		"model":  req.Model,
		"usage":  usage{PromptTokens: 4 * len(req.Input), TotalTokens: 4 * len(req.Input)},
	})
}

// deterministicVector hashes the input into a small fixed vector so
// repeated requests for the same text embed identically.
func deterministicVector(input string) []float64 {
	h := fnv.New64a()
	h.Write([]byte(input))
	seed := h.Sum64()

	vec := make([]float64, 8)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(int64(seed>>33))/float64(1<<30) - 1
	}
	return vec
}

// --- Models ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-model", "object": "model", "owned_by": "llmcaller-mock"},
			{"id": "mock-embed", "object": "model", "owned_by": "llmcaller-mock"},
			{"id": "mock-flaky", "object": "model", "owned_by": "llmcaller-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
