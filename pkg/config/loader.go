package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, LLMCALLER_CONFIG env, ./config.yaml, /etc/llmcaller/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
//  1. Explicit configPath argument
//  2. LLMCALLER_CONFIG environment variable
//  3. ./config.yaml in the current directory
//  4. /etc/llmcaller/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("LLMCALLER_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/llmcaller/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLMCALLER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LLMCALLER_MAX_ATTEMPTS"); v != "" {
		if attempts, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxAttempts = attempts
		}
	}
	if v := os.Getenv("LLMCALLER_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := os.Getenv("LLMCALLER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LLMCALLER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// LLMCALLER_TOKENS: JSON array of caller token configs.
	if v := os.Getenv("LLMCALLER_TOKENS"); v != "" {
		var tokens []CallerToken
		if err := json.Unmarshal([]byte(v), &tokens); err == nil && len(tokens) > 0 {
			cfg.Auth.Tokens = tokens
		}
	}

	// LLMCALLER_PROVIDERS: JSON array of provider configs. Replaces the
	// whole list so declaration order stays explicit.
	if v := os.Getenv("LLMCALLER_PROVIDERS"); v != "" {
		var providers []ProviderConfig
		if err := json.Unmarshal([]byte(v), &providers); err == nil && len(providers) > 0 {
			cfg.Providers = providers
		}
	}
}

// resolveFileReferences reads _file fields and populates the
// corresponding value fields. For each field ending in _file, if the
// value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	for i := range cfg.Providers {
		if cfg.Providers[i].APIKeyFile != "" && cfg.Providers[i].APIKey == "" {
			val, err := readSecretFile(cfg.Providers[i].APIKeyFile)
			if err != nil {
				return fmt.Errorf("providers[%d].api_key_file: %w", i, err)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	for i := range cfg.Auth.Tokens {
		if cfg.Auth.Tokens[i].TokenFile != "" && cfg.Auth.Tokens[i].Token == "" {
			val, err := readSecretFile(cfg.Auth.Tokens[i].TokenFile)
			if err != nil {
				return fmt.Errorf("auth.tokens[%d].token_file: %w", i, err)
			}
			cfg.Auth.Tokens[i].Token = val
		}
	}

	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// StaticSecrets collects inline provider credentials keyed by their
// secret name, for layering ahead of the process environment.
func (c *Config) StaticSecrets() map[string]string {
	out := make(map[string]string)
	for _, p := range c.Providers {
		if p.APIKey != "" {
			out[p.SecretName()] = p.APIKey
		}
	}
	return out
}

// Save writes the configuration as YAML with restrictive permissions;
// the document may carry inline credentials.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
