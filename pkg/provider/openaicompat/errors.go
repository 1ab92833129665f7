package openaicompat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/llmcaller/llmcaller/pkg/provider"
)

// MapHTTPError converts a non-2xx upstream response into a classified
// provider error. The caller-visible message is fixed per classification
// and free of provider names and upstream detail; the upstream error
// body is attached as diagnostic cause only.
func MapHTTPError(resp *http.Response) *provider.Error {
	err := provider.FromStatus(resp.StatusCode, safeMessage(resp.StatusCode))

	if detail := ExtractErrorMessage(resp.Body); detail != "" {
		err.Cause = fmt.Errorf("upstream status %d: %s", resp.StatusCode, detail)
	} else {
		err.Cause = fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	if ra := parseRetryAfter(resp.Header.Get("Retry-After")); ra > 0 {
		err.RetryAfter = ra
	}

	return err
}

// safeMessage returns the human-safe message for an upstream status.
func safeMessage(status int) string {
	switch {
	case status == 401 || status == 403:
		return "upstream rejected the provider credential"
	case status == 429:
		return "upstream rate limit exceeded"
	case status >= 500:
		return "upstream provider unavailable"
	case status >= 400:
		return "upstream rejected the request"
	default:
		return "unexpected upstream response"
	}
}

// ExtractErrorMessage tries to parse the response body as an
// ErrorResponse and returns the embedded message, if any. The body read
// is capped; upstream error bodies are diagnostic-only.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}

// parseRetryAfter parses a Retry-After header value in seconds.
// HTTP-date forms are ignored; a backoff hint is best-effort.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
