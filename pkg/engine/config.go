package engine

import (
	"log/slog"

	"github.com/llmcaller/llmcaller/pkg/observability"
)

// DefaultMaxAttempts bounds the chat/embed retry loop when the
// configuration does not say otherwise.
const DefaultMaxAttempts = 2

// Config holds engine-level settings.
type Config struct {
	// MaxAttempts is the dispatch attempt ceiling for chat and embed.
	// Streaming is never retried. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// Logger receives dispatch and retry logs. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics receives provider dispatch instrumentation. Nil disables it.
	Metrics *observability.Metrics
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
