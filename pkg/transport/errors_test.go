package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

func TestStatusFromClassification(t *testing.T) {
	tests := []struct {
		class provider.Classification
		want  int
	}{
		{provider.ClassRateLimit, http.StatusTooManyRequests},
		{provider.ClassAuth, http.StatusBadGateway},
		{provider.ClassPermanent, http.StatusUnprocessableEntity},
		{provider.ClassConfig, http.StatusInternalServerError},
		{provider.ClassTemporary, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if got := StatusFromClassification(tt.class); got != tt.want {
			t.Errorf("%s -> %d, want %d", tt.class, got, tt.want)
		}
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	return resp.Error
}

func TestWriteErrorProviderError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &provider.Error{
		Class:   provider.ClassRateLimit,
		Message: "upstream rate limit exceeded",
		Cause:   errors.New("upstream status 429: raw quota detail"),
	})

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Classification != "RATE_LIMIT" {
		t.Errorf("classification = %q", body.Classification)
	}
	if body.Message != "upstream rate limit exceeded" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestWriteErrorNeverLeaksCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &provider.Error{
		Class:   provider.ClassAuth,
		Message: "upstream rejected the provider credential",
		Cause:   errors.New("secret sk-live-12345 is invalid"),
	})

	if got := rec.Body.String(); strings.Contains(got, "sk-live-12345") {
		t.Errorf("cause leaked into response body: %q", got)
	}
}

func TestWriteErrorRetryAfterHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &provider.Error{
		Class:      provider.ClassRateLimit,
		Message:    "upstream rate limit exceeded",
		RetryAfter: 30 * time.Second,
	})

	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %q", got)
	}
}

func TestWriteErrorLocalError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, api.NewInvalidRequestError("messages", "at least one message is required"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Type != "invalid_request" || body.Param != "messages" {
		t.Errorf("body = %+v", body)
	}
	if body.Classification != "" {
		t.Errorf("local error carried a classification: %q", body.Classification)
	}
}

func TestWriteErrorNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, api.NewNotFoundError("provider \"nope\" is not configured"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestWriteErrorUnexpected(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("some internal detail"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Message != "internal server error" {
		t.Errorf("unexpected error detail leaked: %q", body.Message)
	}
}
