package transport

import (
	"context"

	"github.com/llmcaller/llmcaller/pkg/api"
)

// Dispatcher is the contract between the transport layer and the
// orchestration engine: one method per gateway operation. Requests
// handed to a Dispatcher are already validated and schema-conformant.
type Dispatcher interface {
	DispatchChat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error)
	DispatchChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error)
	DispatchEmbed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error)
	ListModels(ctx context.Context, provider string) (*api.ModelList, error)
	CheckHealth(ctx context.Context, provider string) (*api.Health, error)
}
