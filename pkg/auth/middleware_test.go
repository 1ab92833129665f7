package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llmcaller/llmcaller/pkg/observability"
)

func allowAll(caller string) *Chain {
	return &Chain{Authenticators: []Authenticator{
		&voter{result: Result{Decision: Yes, Identity: &Identity{Caller: caller, TokenHash: "hash-" + caller}}},
	}}
}

func denyAll() *Chain {
	return &Chain{DefaultDecision: No}
}

func TestMiddlewareRejectsUnauthenticated(t *testing.T) {
	handler := Middleware(denyAll(), nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/mcp/chat", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_request") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMiddlewareBypass(t *testing.T) {
	reached := false
	handler := Middleware(denyAll(), nil, nil, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))
	if !reached {
		t.Error("bypass endpoint was authenticated")
	}
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	var got *Identity
	handler := Middleware(allowAll("ci"), nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/mcp/chat", nil))
	if got == nil || got.Caller != "ci" {
		t.Errorf("identity = %+v", got)
	}
}

func TestMiddlewareRateLimit(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	limiter := NewFixedWindowLimiter(time.Minute, 1)
	handler := Middleware(allowAll("ci"), limiter, metrics, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest("POST", "/mcp/chat", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest("POST", "/mcp/chat", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
	if !strings.Contains(second.Body.String(), "too_many_requests") {
		t.Errorf("body = %q", second.Body.String())
	}
}

func TestMiddlewareEmptyCallerIsServerError(t *testing.T) {
	chain := &Chain{Authenticators: []Authenticator{
		&voter{result: Result{Decision: Yes, Identity: &Identity{}}},
	}}
	handler := Middleware(chain, nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with empty caller")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/mcp/chat", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
