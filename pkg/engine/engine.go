package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/transport"
)

// Engine routes canonical requests to provider adapters. Dispatches
// share no mutable state: the provider list and registry are read-only
// after construction, so concurrent requests need no synchronization.
type Engine struct {
	providers []ProviderSpec
	registry  *provider.Registry
	cfg       Config
}

var _ transport.Dispatcher = (*Engine)(nil)

// New creates the engine. The provider list order is significant: it is
// the declaration order used for routing tie-breaks.
func New(providers []ProviderSpec, registry *provider.Registry, cfg Config) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine: registry must not be nil")
	}
	return &Engine{
		providers: providers,
		registry:  registry,
		cfg:       cfg.withDefaults(),
	}, nil
}

// DispatchChat routes and executes a non-streaming chat request.
func (e *Engine) DispatchChat(ctx context.Context, req *api.ChatRequest) (*api.ChatResult, error) {
	sel, err := Route(e.providers, api.CapabilityChat, req.Provider, req.Model)
	if err != nil {
		return nil, err
	}
	adapter, err := e.resolveAdapter(sel, api.CapabilityChat)
	if err != nil {
		return nil, err
	}

	resolved := *req
	resolved.Provider = sel.Provider
	resolved.Model = sel.Model

	var result *api.ChatResult
	var backoff time.Duration
	start := time.Now()
	attempts, err := withRetry(ctx, e.cfg.Logger, e.cfg.Metrics, sel.Provider, e.cfg.MaxAttempts, func(ctx context.Context) error {
		r, callErr := adapter.Chat(ctx, &resolved)
		if callErr != nil {
			var perr *provider.Error
			if errors.As(callErr, &perr) && perr.RetryAfter > 0 {
				backoff = perr.RetryAfter
			}
			return callErr
		}
		result = r
		return nil
	})
	if err != nil {
		e.recordDispatch(sel, start, nil, err)
		return nil, err
	}

	result.Attempts = attempts
	if result.TraceID == "" {
		result.TraceID = api.NewTraceID()
	}
	if backoff > 0 {
		// The call succeeded only after the upstream asked us to slow
		// down: surface the pacing hint so the caller can throttle.
		ms := int(backoff.Milliseconds())
		result.RetryAfterMS = &ms
	}
	e.decorate(&result.Provider, sel, api.CapabilityChat)
	e.recordDispatch(sel, start, &result.Usage, nil)
	return result, nil
}

// DispatchChatStream routes and executes a streaming chat request.
//
// Streaming is exempt from the retry loop: once the first byte has been
// delivered, replay would require buffering unbounded already-delivered
// output, so a mid-stream failure is terminal and the caller re-issues
// the whole request.
func (e *Engine) DispatchChatStream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamEvent, error) {
	sel, err := Route(e.providers, api.CapabilityChatStream, req.Provider, req.Model)
	if err != nil {
		return nil, err
	}
	adapter, err := e.resolveAdapter(sel, api.CapabilityChatStream)
	if err != nil {
		return nil, err
	}

	resolved := *req
	resolved.Provider = sel.Provider
	resolved.Model = sel.Model

	upstream, err := adapter.ChatStream(ctx, &resolved)
	if err != nil {
		return nil, err
	}

	out := make(chan api.StreamEvent, 16)
	go func() {
		defer close(out)
		for ev := range upstream {
			if ev.Type == api.EventCompletion && ev.Provider != nil {
				e.decorate(ev.Provider, sel, api.CapabilityChatStream)
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				// Drain so the adapter goroutine can close the body.
				for range upstream {
				}
				return
			}
		}
	}()
	return out, nil
}

// DispatchEmbed routes and executes an embedding request.
func (e *Engine) DispatchEmbed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResult, error) {
	sel, err := Route(e.providers, api.CapabilityEmbed, req.Provider, req.Model)
	if err != nil {
		return nil, err
	}
	adapter, err := e.resolveAdapter(sel, api.CapabilityEmbed)
	if err != nil {
		return nil, err
	}

	resolved := *req
	resolved.Provider = sel.Provider
	resolved.Model = sel.Model

	var result *api.EmbedResult
	start := time.Now()
	attempts, err := withRetry(ctx, e.cfg.Logger, e.cfg.Metrics, sel.Provider, e.cfg.MaxAttempts, func(ctx context.Context) error {
		r, callErr := adapter.Embed(ctx, &resolved)
		if callErr != nil {
			return callErr
		}
		result = r
		return nil
	})
	if err != nil {
		e.recordDispatch(sel, start, nil, err)
		return nil, err
	}

	result.Attempts = attempts
	if result.TraceID == "" {
		result.TraceID = api.NewTraceID()
	}
	e.decorate(&result.Provider, sel, api.CapabilityEmbed)
	e.recordDispatch(sel, start, &result.Usage, nil)
	return result, nil
}

// ListModels queries one provider's model catalog, enriched with the
// routing configuration so callers can audit selection behavior without
// making inference calls. An empty providerName means the first
// configured provider. Discovery bypasses routing selection.
func (e *Engine) ListModels(ctx context.Context, providerName string) (*api.ModelList, error) {
	spec, adapter, err := e.namedProvider(providerName)
	if err != nil {
		return nil, err
	}

	models, err := adapter.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	return &api.ModelList{
		Provider:     spec.Name,
		Models:       models,
		DefaultModel: spec.DefaultModel,
		Defaults:     spec.Defaults,
		Scores:       spec.Scores,
	}, nil
}

// CheckHealth probes one provider. An empty providerName means the
// first configured provider.
func (e *Engine) CheckHealth(ctx context.Context, providerName string) (*api.Health, error) {
	spec, adapter, err := e.namedProvider(providerName)
	if err != nil {
		return nil, err
	}

	health, err := adapter.CheckHealth(ctx)
	if err != nil {
		return nil, err
	}
	if health.Provider == "" {
		health.Provider = spec.Name
	}
	return health, nil
}

// Providers returns the configured provider names in declaration order.
func (e *Engine) Providers() []string {
	names := make([]string, 0, len(e.providers))
	for _, spec := range e.providers {
		names = append(names, spec.Name)
	}
	return names
}

// resolveAdapter looks up the adapter for a selection and verifies the
// capability on both sides of the contract. A declared capability with
// no registered adapter, or an adapter that does not advertise the
// capability, is local misconfiguration and is never retried. The
// configuration-declaration check is waived on the fallback path, where
// the selected provider by definition never declared the capability;
// the adapter remains the final authority.
func (e *Engine) resolveAdapter(sel Selection, cap api.Capability) (provider.Adapter, error) {
	adapter, ok := e.registry.Get(sel.Provider)
	if !ok {
		return nil, provider.NewError(provider.ClassConfig,
			fmt.Sprintf("provider %s is configured but no adapter is registered", sel.Provider))
	}
	if !adapter.Supports(cap) {
		return nil, provider.NewError(provider.ClassConfig,
			fmt.Sprintf("provider %s does not support %s", sel.Provider, cap))
	}
	if sel.Strategy != api.StrategyFallback {
		spec, ok := findSpec(e.providers, sel.Provider)
		if !ok || !spec.Declares(cap) {
			return nil, provider.NewError(provider.ClassConfig,
				fmt.Sprintf("provider %s does not declare %s", sel.Provider, cap))
		}
	}
	return adapter, nil
}

// namedProvider resolves a provider by name for the discovery
// operations, defaulting to the first configured provider.
func (e *Engine) namedProvider(name string) (ProviderSpec, provider.Adapter, error) {
	if len(e.providers) == 0 {
		return ProviderSpec{}, nil, provider.NewError(provider.ClassConfig, "no providers configured")
	}

	var spec ProviderSpec
	if name == "" {
		spec = e.providers[0]
	} else {
		found, ok := findSpec(e.providers, name)
		if !ok {
			return ProviderSpec{}, nil, api.NewNotFoundError(fmt.Sprintf("provider %q is not configured", name))
		}
		spec = found
	}

	adapter, ok := e.registry.Get(spec.Name)
	if !ok {
		return ProviderSpec{}, nil, provider.NewError(provider.ClassConfig,
			fmt.Sprintf("provider %s is configured but no adapter is registered", spec.Name))
	}
	return spec, adapter, nil
}

// recordDispatch feeds provider-level metrics for one dispatch.
func (e *Engine) recordDispatch(sel Selection, start time.Time, usage *api.Usage, err error) {
	m := e.cfg.Metrics
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ProviderRequestsTotal.WithLabelValues(sel.Provider, sel.Model, status).Inc()
	m.ProviderLatency.WithLabelValues(sel.Provider, sel.Model).Observe(time.Since(start).Seconds())
	if usage != nil {
		m.RecordUsage(sel.Provider, sel.Model, usage.InputTokens, usage.OutputTokens)
	}
}

// decorate stamps routing provenance onto provider info. Name and model
// are preserved when the adapter already reported them; the routing tag
// is always overwritten because it reflects what the engine actually
// did and is never caller-suppliable.
func (e *Engine) decorate(info *api.ProviderInfo, sel Selection, cap api.Capability) {
	if info.Name == "" {
		info.Name = sel.Provider
	}
	if info.Model == "" {
		info.Model = sel.Model
	}
	info.Routing = &api.RoutingInfo{Capability: cap, Strategy: sel.Strategy}
}
