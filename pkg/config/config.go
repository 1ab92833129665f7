// Package config provides unified configuration for the llmcaller gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (LLMCALLER_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"strings"
	"time"
)

// Config holds all configuration for the llmcaller gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	Providers     []ProviderConfig    `yaml:"providers"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 300s (streams)
}

// EngineConfig holds orchestration settings.
type EngineConfig struct {
	MaxAttempts int `yaml:"max_attempts"` // chat/embed retry ceiling, default: 2
}

// ProviderConfig describes one upstream provider. The list order in the
// YAML document is the declaration order used for routing tie-breaks,
// which is why providers are a list and not a map.
type ProviderConfig struct {
	Name         string            `yaml:"name"`          // unique provider key
	Type         string            `yaml:"type"`          // "openai", "anthropic", "lmstudio"
	BaseURL      string            `yaml:"base_url"`      // required
	DefaultModel string            `yaml:"default_model"` // required
	Capabilities []string          `yaml:"capabilities"`  // subset of chat/chatStream/embed
	Defaults     map[string]string `yaml:"defaults"`      // capability -> preferred model
	Scores       map[string]int    `yaml:"scores"`        // capability -> 0..100
	APIKeyEnv    string            `yaml:"api_key_env"`   // secret name, default derived from name
	APIKey       string            `yaml:"api_key"`       // inline secret (discouraged)
	APIKeyFile   string            `yaml:"api_key_file"`  // _file variant for api_key
	Timeout      time.Duration     `yaml:"timeout"`       // per-request bound, default: 120s
	Notes        string            `yaml:"notes"`         // free-form operator notes
}

// SecretName returns the name under which this provider's credential is
// looked up: the explicit api_key_env, else NAME_API_KEY derived from
// the provider key.
func (p ProviderConfig) SecretName() string {
	if p.APIKeyEnv != "" {
		return p.APIKeyEnv
	}
	return strings.ToUpper(strings.ReplaceAll(p.Name, "-", "_")) + "_API_KEY"
}

// AuthConfig holds caller authentication settings.
type AuthConfig struct {
	Type      string          `yaml:"type"`       // "none", "token", "jwt", default: "none"
	Tokens    []CallerToken   `yaml:"tokens"`     // for type=token
	JWT       JWTConfig       `yaml:"jwt"`        // for type=jwt
	RateLimit RateLimitConfig `yaml:"rate_limit"` // per-caller fixed window
}

// CallerToken is one shared-secret entry for token auth.
type CallerToken struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"` // _file variant for token
	Caller    string `yaml:"caller"`     // caller identity for logs and limits
}

// JWTConfig holds HMAC JWT verification settings.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`      // optional expected issuer
}

// RateLimitConfig holds the per-caller fixed-window limiter settings.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`      // default: false
	Window      time.Duration `yaml:"window"`       // default: 1m
	MaxRequests int           `yaml:"max_requests"` // default: 120
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "trace", "debug", "info", "warn", "error", default: "info"
	Format string `yaml:"format"` // "text" or "json", default: "text"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 300 * time.Second,
		},
		Engine: EngineConfig{
			MaxAttempts: 2,
		},
		Auth: AuthConfig{
			Type: "none",
			RateLimit: RateLimitConfig{
				Window:      time.Minute,
				MaxRequests: 120,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
