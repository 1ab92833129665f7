package auth

import (
	"log/slog"
	"net/http"

	"github.com/llmcaller/llmcaller/pkg/observability"
)

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/health", "/metrics"}

// Middleware creates HTTP middleware from a Chain and optional
// RateLimiter. It checks the bypass list, runs authentication, injects
// the caller identity into the request context, and enforces the rate
// limit. Metrics may be nil.
func Middleware(chain *Chain, limiter RateLimiter, metrics *observability.Metrics, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision == No {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				writeJSONError(w, http.StatusUnauthorized, "invalid_request", "authentication required")
				return
			}

			if result.Decision != Yes || result.Identity == nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid_request", "authentication required")
				return
			}

			if result.Identity.Caller == "" {
				slog.Error("authenticator returned identity with empty caller")
				writeJSONError(w, http.StatusInternalServerError, "server_error", "internal authentication error")
				return
			}

			slog.Debug("authentication succeeded",
				"caller", result.Identity.Caller,
				"path", r.URL.Path,
			)

			if limiter != nil {
				if err := limiter.Allow(r.Context(), result.Identity); err != nil {
					slog.Warn("rate limit exceeded", "caller", result.Identity.Caller)
					if metrics != nil {
						metrics.RateLimitRejectedTotal.WithLabelValues(result.Identity.Caller).Inc()
					}
					writeJSONError(w, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
					return
				}
			}

			ctx := SetIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"type":"` + kind + `","message":"` + message + `"}}`))
}
