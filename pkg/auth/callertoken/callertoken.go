// Package callertoken provides an authenticator that validates the
// x-llm-caller-token header against a static token store using SHA-256
// hashing and constant-time comparison.
package callertoken

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/llmcaller/llmcaller/pkg/auth"
)

// HeaderName is the caller credential header.
const HeaderName = "x-llm-caller-token"

// Entry maps a token hash to a caller identity.
type Entry struct {
	TokenHash [32]byte
	Caller    string
}

// RawEntry is the configuration format for caller tokens.
type RawEntry struct {
	Token  string
	Caller string
}

// Authenticator validates caller tokens against a static store.
type Authenticator struct {
	entries []Entry
}

var _ auth.Authenticator = (*Authenticator)(nil)

// New creates a caller-token authenticator. Tokens are hashed
// immediately; plaintext tokens are not stored.
func New(raw []RawEntry) *Authenticator {
	a := &Authenticator{}
	for _, e := range raw {
		a.entries = append(a.entries, Entry{
			TokenHash: sha256.Sum256([]byte(e.Token)),
			Caller:    e.Caller,
		})
	}
	return a
}

// Authenticate extracts the caller token header and validates it.
// Returns Yes if valid, No if a token is present but invalid, Abstain
// if the header is absent.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	token := r.Header.Get(HeaderName)
	if token == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	tokenHash := sha256.Sum256([]byte(token))

	for _, entry := range a.entries {
		if subtle.ConstantTimeCompare(tokenHash[:], entry.TokenHash[:]) == 1 {
			return auth.Result{
				Decision: auth.Yes,
				Identity: &auth.Identity{
					Caller:    entry.Caller,
					TokenHash: hex.EncodeToString(tokenHash[:]),
				},
			}
		}
	}

	return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
}
