package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/llmcaller/llmcaller/pkg/api"
)

var providerTypes = []string{"openai", "anthropic", "lmstudio"}

// Validate checks the configuration for required fields and valid
// values. Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Engine.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_attempts must be > 0, got %d", c.Engine.MaxAttempts))
	}

	if len(c.Providers) == 0 {
		errs = append(errs, fmt.Errorf("at least one provider is required"))
	}

	seen := make(map[string]bool)
	for i, p := range c.Providers {
		path := fmt.Sprintf("providers[%d]", i)

		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", path))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("%s.name %q is duplicated", path, p.Name))
		}
		seen[p.Name] = true

		if !slices.Contains(providerTypes, p.Type) {
			errs = append(errs, fmt.Errorf("%s.type must be one of %v, got %q", path, providerTypes, p.Type))
		}
		if p.BaseURL == "" {
			errs = append(errs, fmt.Errorf("%s.base_url is required", path))
		}
		if p.DefaultModel == "" {
			errs = append(errs, fmt.Errorf("%s.default_model is required", path))
		}

		for _, cap := range p.Capabilities {
			if !routable(cap) {
				errs = append(errs, fmt.Errorf("%s.capabilities: %q is not a routable capability", path, cap))
			}
		}
		for cap := range p.Defaults {
			if !routable(cap) {
				errs = append(errs, fmt.Errorf("%s.defaults: %q is not a routable capability", path, cap))
			}
		}
		for cap, score := range p.Scores {
			if !routable(cap) {
				errs = append(errs, fmt.Errorf("%s.scores: %q is not a routable capability", path, cap))
			}
			if score < 0 || score > 100 {
				errs = append(errs, fmt.Errorf("%s.scores[%s] must be 0..100, got %d", path, cap, score))
			}
		}
	}

	switch c.Auth.Type {
	case "none", "token", "jwt":
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"token\", or \"jwt\", got %q", c.Auth.Type))
	}
	if c.Auth.Type == "token" && len(c.Auth.Tokens) == 0 {
		errs = append(errs, fmt.Errorf("auth.tokens is required when auth.type is \"token\""))
	}
	if c.Auth.Type == "jwt" && c.Auth.JWT.Secret == "" && c.Auth.JWT.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
	}
	if c.Auth.RateLimit.Enabled {
		if c.Auth.RateLimit.Window <= 0 {
			errs = append(errs, fmt.Errorf("auth.rate_limit.window must be > 0"))
		}
		if c.Auth.RateLimit.MaxRequests <= 0 {
			errs = append(errs, fmt.Errorf("auth.rate_limit.max_requests must be > 0"))
		}
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be \"trace\", \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func routable(cap string) bool {
	return slices.Contains(api.RoutableCapabilities, api.Capability(cap))
}
