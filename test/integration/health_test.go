package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/llmcaller/llmcaller/pkg/api"
)

func TestHealthLiveness(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	rec := doJSON(t, gw, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthProviderProbe(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	var h api.Health
	rec := doJSON(t, gw, "GET", "/health?provider=openai", "", &h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if h.Status != api.HealthOK {
		t.Errorf("health = %+v", h)
	}
	if h.Provider != "openai" {
		t.Errorf("provider = %q", h.Provider)
	}
}

func TestModelsDiscovery(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	var list api.ModelList
	rec := doJSON(t, gw, "GET", "/mcp/models", "", &list)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if list.Provider != "openai" {
		t.Errorf("provider = %q", list.Provider)
	}
	if len(list.Models) != 1 || list.Models[0].ID != "gpt-base" {
		t.Errorf("models = %+v", list.Models)
	}
	if list.Defaults[api.CapabilityEmbed] != "embed-small" {
		t.Errorf("routing enrichment missing: %+v", list.Defaults)
	}
}

func TestMetricsScrape(t *testing.T) {
	upstream := newUpstream(t)
	gw := newGateway(t, upstream.URL)

	doJSON(t, gw, "POST", "/mcp/chat",
		`{"callerTool":"itest","messages":[{"role":"user","content":"hi"}]}`, nil)

	rec := doJSON(t, gw, "GET", "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "llmcaller_requests_total") {
		t.Error("gateway request counter missing from scrape")
	}
}
