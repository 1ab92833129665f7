package observability

import (
	"net/http"
	"strconv"
	"time"
)

// Middleware wraps an HTTP handler to record request metrics.
//
// It captures:
//   - llmcaller_requests_total (counter): per request with method, status class, and operation labels
//   - llmcaller_request_duration_seconds (histogram): request duration
//   - llmcaller_streaming_connections_active (gauge): in-flight SSE streams
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		isStreaming := r.Header.Get("Accept") == "text/event-stream"
		if isStreaming {
			m.StreamingConnections.Inc()
			defer m.StreamingConnections.Dec()
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		operation := operationLabel(r.URL.Path)
		statusClass := strconv.Itoa(sw.status/100) + "xx"

		m.RequestsTotal.WithLabelValues(r.Method, statusClass, operation).Inc()
		m.RequestDuration.WithLabelValues(r.Method, operation).Observe(time.Since(start).Seconds())
	})
}

// operationLabel maps a request path to a bounded label value so path
// garbage cannot explode metric cardinality.
func operationLabel(path string) string {
	switch path {
	case "/mcp/chat", "/mcp/chatStream", "/mcp/embed", "/mcp/models", "/health", "/metrics":
		return path
	}
	return "other"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush delegates to the underlying writer if it implements
// http.Flusher. SSE streaming depends on this.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter, enabling
// http.ResponseController and similar utilities.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
