// Package api defines the canonical, provider-agnostic request and
// response types exchanged between the transport, the orchestration
// engine, and the provider adapters.
//
// Every adapter normalizes its upstream wire protocol into these types;
// nothing outside the adapter packages ever sees a provider-specific
// payload.
package api
