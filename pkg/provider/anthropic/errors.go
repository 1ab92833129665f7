package anthropic

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/llmcaller/llmcaller/pkg/provider"
)

// mapHTTPError converts a non-2xx Messages API response into a
// classified provider error via the shared status mapping. The upstream
// error body is diagnostic-only.
func mapHTTPError(resp *http.Response) *provider.Error {
	err := provider.FromStatus(resp.StatusCode, safeMessage(resp.StatusCode))

	if detail := extractErrorMessage(resp.Body); detail != "" {
		err.Cause = fmt.Errorf("upstream status %d: %s", resp.StatusCode, detail)
	} else {
		err.Cause = fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, parseErr := strconv.Atoi(v); parseErr == nil && secs > 0 {
			err.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	return err
}

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

// extractErrorMessage parses the Messages API error body.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != nil {
		return errResp.Error.Message
	}
	return ""
}
