package cli

import (
	"testing"
	"time"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/auth"
	"github.com/llmcaller/llmcaller/pkg/config"
)

func TestProviderSpecsConversion(t *testing.T) {
	specs := providerSpecs([]config.ProviderConfig{
		{
			Name:         "openai",
			DefaultModel: "gpt-base",
			Capabilities: []string{"chat", "chatStream", "embed"},
			Defaults:     map[string]string{"embed": "embed-small"},
			Scores:       map[string]int{"chat": 80},
		},
		{
			Name:         "local",
			DefaultModel: "qwen",
		},
	})

	if len(specs) != 2 {
		t.Fatalf("specs = %d", len(specs))
	}
	if specs[0].Name != "openai" || specs[1].Name != "local" {
		t.Errorf("declaration order not preserved: %v, %v", specs[0].Name, specs[1].Name)
	}
	if !specs[0].Declares(api.CapabilityEmbed) {
		t.Error("embed capability lost in conversion")
	}
	if specs[0].Defaults[api.CapabilityEmbed] != "embed-small" {
		t.Errorf("defaults = %v", specs[0].Defaults)
	}
	if specs[0].Scores[api.CapabilityChat] != 80 {
		t.Errorf("scores = %v", specs[0].Scores)
	}
	if specs[1].Declares(api.CapabilityChat) {
		t.Error("bare provider should declare nothing")
	}
}

func TestBuildAdapterTypes(t *testing.T) {
	source := testSource{}

	for _, ptype := range []string{"openai", "anthropic", "lmstudio"} {
		adapter, err := buildAdapter(config.ProviderConfig{
			Name:         ptype,
			Type:         ptype,
			BaseURL:      "http://localhost:9999",
			DefaultModel: "m",
			Timeout:      time.Second,
		}, source)
		if err != nil {
			t.Fatalf("%s: %v", ptype, err)
		}
		if adapter.Name() != ptype {
			t.Errorf("%s: name = %q", ptype, adapter.Name())
		}
	}

	if _, err := buildAdapter(config.ProviderConfig{Name: "x", Type: "bedrock"}, source); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestBuildAuthChain(t *testing.T) {
	chain, err := buildAuthChain(config.AuthConfig{Type: "none"})
	if err != nil {
		t.Fatal(err)
	}
	if chain.DefaultDecision != auth.Yes {
		t.Error("none mode should default to allow")
	}

	chain, err = buildAuthChain(config.AuthConfig{
		Type:   "token",
		Tokens: []config.CallerToken{{Token: "tok", Caller: "cli"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if chain.DefaultDecision != auth.No {
		t.Error("token mode should default to deny")
	}

	if _, err := buildAuthChain(config.AuthConfig{Type: "jwt"}); err == nil {
		t.Error("jwt without secret accepted")
	}

	if _, err := buildAuthChain(config.AuthConfig{Type: "saml"}); err == nil {
		t.Error("unknown auth type accepted")
	}
}

type testSource struct{}

func (testSource) Lookup(string) (string, bool) { return "", false }
