package openai

import "time"

// Config holds configuration for the OpenAI adapter.
type Config struct {
	// Name is the provider key this adapter registers under.
	// Defaults to "openai".
	Name string

	// BaseURL is the backend URL (e.g., "https://api.openai.com").
	BaseURL string

	// APIKeyName is the secret name resolved through the secrets source.
	// Defaults to "OPENAI_API_KEY".
	APIKeyName string

	// Timeout bounds individual non-streaming HTTP requests.
	// Defaults to 120s.
	Timeout time.Duration
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.APIKeyName == "" {
		cfg.APIKeyName = "OPENAI_API_KEY"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return cfg
}
