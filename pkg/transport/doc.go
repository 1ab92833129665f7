// Package transport defines the dispatcher contract and middleware chain
// for the llmcaller HTTP/SSE transport layer.
//
// The transport layer bridges caller tools and the orchestration engine.
// It deserializes incoming requests into the canonical types defined in
// pkg/api, dispatches them, and serializes responses back as JSON or SSE.
//
// # Dispatcher
//
// The Dispatcher interface is the contract between the transport and the
// engine: one method per gateway operation. The engine implements it;
// the HTTP adapter in transport/http consumes it.
//
// # Error translation
//
// Errors crossing the transport boundary are either classified provider
// errors or local api errors; WriteError maps each family onto its HTTP
// status and emits a structured body that never carries upstream detail.
//
// # Middleware
//
// HTTP middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog with credential
// redaction.
package transport
