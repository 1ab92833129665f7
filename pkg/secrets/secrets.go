// Package secrets provides the credential lookup abstraction used by
// provider adapters. Adapters never read process environment state
// directly; the indirection keeps credential rotation and testing
// tractable.
package secrets

import (
	"os"
	"strings"
)

// Source resolves a named secret. The second return value reports
// presence; adapters translate absence into a CONFIG-classified error
// rather than crashing.
type Source interface {
	Lookup(name string) (string, bool)
}

// Env resolves secrets from the process environment.
type Env struct{}

// Lookup returns the environment variable value, trimmed of surrounding
// whitespace. Empty values count as absent.
func (Env) Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Static resolves secrets from a fixed map. Intended for tests and for
// configuration-supplied credentials.
type Static map[string]string

// Lookup returns the mapped value. Empty values count as absent.
func (s Static) Lookup(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Chain resolves from the first source that has the secret.
type Chain []Source

// Lookup tries each source in order.
func (c Chain) Lookup(name string) (string, bool) {
	for _, src := range c {
		if v, ok := src.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}
