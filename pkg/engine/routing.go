package engine

import (
	"fmt"
	"slices"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/debug"
	"github.com/llmcaller/llmcaller/pkg/provider"
)

// ProviderSpec is the routing-relevant slice of one provider's
// configuration. Order matters: tie-breaks and the fallback path use
// declaration order.
type ProviderSpec struct {
	Name         string
	DefaultModel string
	Capabilities []api.Capability
	Defaults     map[api.Capability]string
	Scores       map[api.Capability]int
}

// Declares reports whether the provider declares the capability in
// configuration.
func (p ProviderSpec) Declares(cap api.Capability) bool {
	return slices.Contains(p.Capabilities, cap)
}

// ModelFor resolves the model for a capability: the capability-specific
// default when declared, else the bare default.
func (p ProviderSpec) ModelFor(cap api.Capability) string {
	if m, ok := p.Defaults[cap]; ok && m != "" {
		return m
	}
	return p.DefaultModel
}

// Selection is the ephemeral outcome of routing one request. It is
// recomputed on every dispatch and never persisted.
type Selection struct {
	Provider string
	Model    string
	Strategy string
}

// Route selects a provider and model for a capability. It is a pure
// function of its inputs.
//
// A caller-supplied provider always wins; an unknown one is a local
// not-found error, never a classified provider error. Without an
// override, providers declaring the capability are ranked: any provider
// with a capability-specific default model outranks every provider
// without one, the score orders providers within each rank, and the
// earliest declared breaks ties. When no provider declares the
// capability at all, the first configured provider's bare default is
// selected so the system degrades instead of hard-failing.
func Route(providers []ProviderSpec, cap api.Capability, providerOverride, modelOverride string) (Selection, error) {
	if len(providers) == 0 {
		return Selection{}, provider.NewError(provider.ClassConfig, "no providers configured")
	}

	if providerOverride != "" {
		spec, ok := findSpec(providers, providerOverride)
		if !ok {
			return Selection{}, api.NewNotFoundError(fmt.Sprintf("provider %q is not configured", providerOverride))
		}
		model := modelOverride
		if model == "" {
			model = spec.ModelFor(cap)
		}
		return Selection{Provider: spec.Name, Model: model, Strategy: api.StrategyCallerOverride}, nil
	}

	best := -1
	bestScore := -1
	bestHasDefault := false
	for i, spec := range providers {
		if !spec.Declares(cap) {
			continue
		}
		hasDefault := spec.Defaults[cap] != ""
		score := spec.Scores[cap]
		if (hasDefault && !bestHasDefault) ||
			(hasDefault == bestHasDefault && score > bestScore) {
			best, bestScore, bestHasDefault = i, score, hasDefault
		}
	}

	if best < 0 {
		first := providers[0]
		model := modelOverride
		if model == "" {
			model = first.DefaultModel
		}
		return Selection{Provider: first.Name, Model: model, Strategy: api.StrategyFallback}, nil
	}

	winner := providers[best]
	strategy := api.StrategyFallback
	if bestHasDefault {
		strategy = api.StrategyCapabilityDefault
	}
	model := modelOverride
	if model == "" {
		model = winner.ModelFor(cap)
	}
	debug.Log("routing", "provider selected",
		"capability", cap, "provider", winner.Name, "model", model,
		"strategy", strategy, "score", bestScore)
	return Selection{Provider: winner.Name, Model: model, Strategy: strategy}, nil
}

func findSpec(providers []ProviderSpec, name string) (ProviderSpec, bool) {
	for _, spec := range providers {
		if spec.Name == name {
			return spec, true
		}
	}
	return ProviderSpec{}, false
}
