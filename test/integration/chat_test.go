package integration

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/llmcaller/llmcaller/pkg/api"
)

func TestChatEndToEnd(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	var result api.ChatResult
	rec := doJSON(t, gw, "POST", "/mcp/chat",
		`{"callerTool":"itest","messages":[{"role":"user","content":"capital of France?"}]}`,
		&result)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if result.Reply.Content != "Paris" {
		t.Errorf("reply = %q", result.Reply.Content)
	}
	if result.Provider.Name != "openai" || result.Provider.Model != "gpt-base" {
		t.Errorf("provider = %+v", result.Provider)
	}
	if result.Provider.Routing == nil || result.Provider.Routing.Capability != api.CapabilityChat {
		t.Errorf("routing = %+v", result.Provider.Routing)
	}
	if result.Usage.InputTokens != 12 || result.Usage.OutputTokens != 1 {
		t.Errorf("usage = %+v", result.Usage)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts = %d", result.Attempts)
	}
}

func TestChatRetryRecovers(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	var result api.ChatResult
	rec := doJSON(t, gw, "POST", "/mcp/chat",
		`{"callerTool":"itest","model":"flaky-once","messages":[{"role":"user","content":"hi"}]}`,
		&result)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if result.Attempts != 2 {
		t.Errorf("attempts = %d, want 2 (one failure, one recovery)", result.Attempts)
	}
}

func TestChatCallerModelOverride(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	var result api.ChatResult
	rec := doJSON(t, gw, "POST", "/mcp/chat",
		`{"callerTool":"itest","provider":"openai","model":"gpt-large","messages":[{"role":"user","content":"hi"}]}`,
		&result)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if result.Provider.Model != "gpt-large" {
		t.Errorf("model = %q", result.Provider.Model)
	}
	if result.Provider.Routing.Strategy != api.StrategyCallerOverride {
		t.Errorf("strategy = %q", result.Provider.Routing.Strategy)
	}
}

func TestEmbedEndToEnd(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	var result api.EmbedResult
	rec := doJSON(t, gw, "POST", "/mcp/embed",
		`{"callerTool":"itest","inputs":["hello","world"]}`,
		&result)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(result.Vectors) != 2 {
		t.Fatalf("vectors = %d", len(result.Vectors))
	}
	if result.Provider.Model != "embed-small" {
		t.Errorf("model = %q, capability default not applied", result.Provider.Model)
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	req := httptest.NewRequest("POST", "/mcp/chat",
		strings.NewReader(`{"callerTool":"itest","messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	gw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
