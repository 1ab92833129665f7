// Package auth provides pluggable caller authentication for llmcaller.
//
// Authentication uses a chain-of-responsibility pattern with
// three-outcome voting: each authenticator returns Yes (identity
// found), No (credentials invalid), or Abstain (can't handle). A
// configurable default voter decides when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from
// engine logic. The middleware also enforces the per-caller
// fixed-window rate limit and injects the caller identity into the
// request context for logging and attribution.
package auth
