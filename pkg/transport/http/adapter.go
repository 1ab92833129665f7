package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/auth"
	"github.com/llmcaller/llmcaller/pkg/transport"
)

// Config holds adapter-level settings.
type Config struct {
	// MaxBodySize bounds request bodies in bytes. Defaults to 10 MB.
	MaxBodySize int64

	// Logger receives handler logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Adapter binds the Dispatcher contract onto HTTP routes:
//
//	POST /mcp/chat        non-streaming chat
//	POST /mcp/chatStream  streaming chat (SSE)
//	POST /mcp/embed       embeddings
//	GET  /mcp/models      model discovery (?provider=)
//	GET  /health          gateway and provider health (?provider=)
type Adapter struct {
	dispatcher transport.Dispatcher
	cfg        Config
}

// NewAdapter creates the HTTP adapter.
func NewAdapter(dispatcher transport.Dispatcher, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 10 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Adapter{dispatcher: dispatcher, cfg: cfg}
}

// Handler returns the route mux without middleware applied.
func (a *Adapter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp/chat", a.handleChat)
	mux.HandleFunc("POST /mcp/chatStream", a.handleChatStream)
	mux.HandleFunc("POST /mcp/embed", a.handleEmbed)
	mux.HandleFunc("GET /mcp/models", a.handleModels)
	mux.HandleFunc("GET /health", a.handleHealth)
	return mux
}

// decodeBody parses the request body into dst with the configured size
// bound. Returns a local invalid-request error on malformed input.
func (a *Adapter) decodeBody(w http.ResponseWriter, r *http.Request, dst any) *api.Error {
	body := http.MaxBytesReader(w, r.Body, a.cfg.MaxBodySize)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return api.NewInvalidRequestError("", "request body too large")
		}
		return api.NewInvalidRequestError("", "failed to read request body")
	}
	if len(data) == 0 {
		return api.NewInvalidRequestError("", "request body is required")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return api.NewInvalidRequestError("", "request body is not valid JSON")
	}
	return nil
}

// completeChatRequest fills in server-assigned fields: a generated
// request ID when the caller omitted one, and the authenticated caller
// identity when callerTool is absent.
func completeChatRequest(r *http.Request, req *api.ChatRequest) {
	if req.RequestID == "" {
		req.RequestID = api.NewRequestID()
	}
	if req.CallerTool == "" {
		if id := auth.IdentityFromContext(r.Context()); id != nil {
			req.CallerTool = id.Caller
		}
	}
}

func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if aerr := a.decodeBody(w, r, &req); aerr != nil {
		transport.WriteError(w, aerr)
		return
	}
	completeChatRequest(r, &req)
	if aerr := api.ValidateChatRequest(&req); aerr != nil {
		transport.WriteError(w, aerr)
		return
	}

	result, err := a.dispatcher.DispatchChat(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *Adapter) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if aerr := a.decodeBody(w, r, &req); aerr != nil {
		transport.WriteError(w, aerr)
		return
	}
	completeChatRequest(r, &req)
	if aerr := api.ValidateChatRequest(&req); aerr != nil {
		transport.WriteError(w, aerr)
		return
	}

	// Failures before the first byte are plain JSON errors; once the
	// stream starts, failures become terminal SSE error frames.
	events, err := a.dispatcher.DispatchChatStream(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	sse := newSSEWriter(w)
	for event := range events {
		if err := sse.WriteEvent(event); err != nil {
			// Client gone or write fault: stop consuming and let
			// cancellation release the upstream connection.
			a.cfg.Logger.Debug("stream write failed", "error", err)
			return
		}
	}
}

func (a *Adapter) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req api.EmbedRequest
	if aerr := a.decodeBody(w, r, &req); aerr != nil {
		transport.WriteError(w, aerr)
		return
	}
	if req.RequestID == "" {
		req.RequestID = api.NewRequestID()
	}
	if req.CallerTool == "" {
		if id := auth.IdentityFromContext(r.Context()); id != nil {
			req.CallerTool = id.Caller
		}
	}
	if aerr := api.ValidateEmbedRequest(&req); aerr != nil {
		transport.WriteError(w, aerr)
		return
	}

	result, err := a.dispatcher.DispatchEmbed(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *Adapter) handleModels(w http.ResponseWriter, r *http.Request) {
	list, err := a.dispatcher.ListModels(r.Context(), r.URL.Query().Get("provider"))
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	providerName := r.URL.Query().Get("provider")
	if providerName == "" {
		// Gateway liveness, no upstream probe.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	health, err := a.dispatcher.CheckHealth(r.Context(), providerName)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
