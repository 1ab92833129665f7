// Package jwt provides a JWT authenticator that validates HMAC-signed
// bearer tokens. The caller identity is taken from a configurable
// claim, "sub" by default.
package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/llmcaller/llmcaller/pkg/auth"
)

// Config holds the JWT authenticator configuration.
type Config struct {
	// Secret is the HMAC signing secret.
	Secret string

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// CallerClaim is the claim used as the caller identity. Default: "sub".
	CallerClaim string
}

// Authenticator validates HMAC-signed JWT bearer tokens.
type Authenticator struct {
	cfg Config
}

var _ auth.Authenticator = (*Authenticator)(nil)

// New creates a JWT authenticator.
func New(cfg Config) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret is required")
	}
	if cfg.CallerClaim == "" {
		cfg.CallerClaim = "sub"
	}
	return &Authenticator{cfg: cfg}, nil
}

// Authenticate extracts a Bearer token and verifies its signature and
// standard time claims. Returns Abstain when there is no bearer token,
// No when a token is present but invalid.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return auth.Result{Decision: auth.Abstain}
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" {
		return auth.Result{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwtlib.WithExpirationRequired(),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(a.cfg.Issuer))
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		return []byte(a.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return auth.Result{Decision: auth.No, Err: fmt.Errorf("invalid token: %w", err)}
	}

	caller, _ := claims[a.cfg.CallerClaim].(string)
	if caller == "" {
		return auth.Result{Decision: auth.No, Err: fmt.Errorf("token has no %s claim", a.cfg.CallerClaim)}
	}

	tokenHash := sha256.Sum256([]byte(raw))
	return auth.Result{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Caller:    caller,
			TokenHash: hex.EncodeToString(tokenHash[:]),
		},
	}
}
