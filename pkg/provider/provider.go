package provider

import (
	"context"

	"github.com/llmcaller/llmcaller/pkg/api"
)

// Adapter abstracts one upstream inference backend. Each adapter handles
// its own wire protocol, credential lookup, and HTTP client internally
// and normalizes results (and failures) into the canonical api types.
//
// Adapters return *Error for upstream faults and let nothing else
// escape: network-layer failures are wrapped as TEMPORARY. Calls a
// backend does not support return a CONFIG-classified error.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Adapter interface {
	// Name returns the provider key (e.g., "openai", "lmstudio").
	Name() string

	// Supports reports whether the adapter implements the capability.
	Supports(cap api.Capability) bool

	// Chat performs non-streaming inference.
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error)

	// ChatStream performs streaming inference. The returned channel
	// receives normalized stream events and is closed by the adapter when
	// the stream completes or fails. Cancelling ctx releases the
	// underlying connection promptly even if the consumer walks away.
	ChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error)

	// Embed computes embeddings for the request inputs.
	Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error)

	// ListModels returns the models the backend currently serves.
	ListModels(ctx context.Context) ([]api.ModelDescriptor, error)

	// CheckHealth probes the backend and reports coarse availability.
	CheckHealth(ctx context.Context) (*api.Health, error)

	// Close releases adapter resources (HTTP clients, connections).
	Close() error
}
