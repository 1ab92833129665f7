// Package engine is the orchestration core: it selects a provider and
// model for each canonical request, dispatches through the registered
// adapter, retries per the classification policy, and stamps the result
// with routing provenance.
//
// Routing is a pure function of the request and the configured provider
// list; it performs no I/O and is recomputed on every dispatch. The
// engine is the only component permitted to retry, and only for the
// retryable classifications.
package engine
