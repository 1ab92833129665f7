package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/llmcaller/llmcaller/pkg/api"
	"github.com/llmcaller/llmcaller/pkg/auth"
	"github.com/llmcaller/llmcaller/pkg/auth/callertoken"
	"github.com/llmcaller/llmcaller/pkg/auth/jwt"
	"github.com/llmcaller/llmcaller/pkg/auth/noop"
	"github.com/llmcaller/llmcaller/pkg/config"
	"github.com/llmcaller/llmcaller/pkg/debug"
	"github.com/llmcaller/llmcaller/pkg/engine"
	"github.com/llmcaller/llmcaller/pkg/observability"
	"github.com/llmcaller/llmcaller/pkg/provider"
	"github.com/llmcaller/llmcaller/pkg/provider/anthropic"
	"github.com/llmcaller/llmcaller/pkg/provider/lmstudio"
	"github.com/llmcaller/llmcaller/pkg/provider/openai"
	"github.com/llmcaller/llmcaller/pkg/secrets"
	transporthttp "github.com/llmcaller/llmcaller/pkg/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	Long: `Run the gateway server.

Configuration is loaded from the --config file, falling back to
./config.yaml and /etc/llmcaller/config.yaml, with LLMCALLER_*
environment variables overriding file values.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := buildLogger(cfg.Logging)
	slog.SetDefault(logger)
	if cats := debug.Categories(); len(cats) > 0 {
		logger.Info("debug categories enabled", slog.Any("categories", cats))
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer registry.Close()

	promRegistry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.NewMetrics(promRegistry)
		metricsPath = cfg.Observability.Metrics.Path
	}

	eng, err := engine.New(providerSpecs(cfg.Providers), registry, engine.Config{
		MaxAttempts: cfg.Engine.MaxAttempts,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		return err
	}

	chain, err := buildAuthChain(cfg.Auth)
	if err != nil {
		return err
	}
	var limiter auth.RateLimiter
	if cfg.Auth.RateLimit.Enabled {
		limiter = auth.NewFixedWindowLimiter(cfg.Auth.RateLimit.Window, cfg.Auth.RateLimit.MaxRequests)
	}

	serverCfg := transporthttp.DefaultServerConfig()
	serverCfg.Addr = fmt.Sprintf(":%d", cfg.Server.Port)
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout
	serverCfg.MetricsPath = metricsPath
	serverCfg.Logger = logger

	srv := transporthttp.NewServer(eng, chain, limiter, metrics, promRegistry, serverCfg)

	logger.Info("gateway configured",
		slog.Int("providers", len(cfg.Providers)),
		slog.String("auth", cfg.Auth.Type),
		slog.Bool("metrics", cfg.Observability.Metrics.Enabled))
	return srv.ListenAndServe()
}

// buildLogger constructs the process logger from configuration.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "trace":
		level = debug.LevelTrace
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// buildRegistry constructs one adapter per configured provider.
// Credentials resolve through configuration-supplied secrets first,
// then the process environment, so an api_key_file entry and a plain
// environment variable both work.
func buildRegistry(cfg *config.Config) (*provider.Registry, error) {
	source := secrets.Chain{secrets.Static(cfg.StaticSecrets()), secrets.Env{}}

	adapters := make([]provider.Adapter, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		adapter, err := buildAdapter(p, source)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		adapters = append(adapters, adapter)
	}
	return provider.NewRegistry(adapters...), nil
}

func buildAdapter(p config.ProviderConfig, source secrets.Source) (provider.Adapter, error) {
	switch p.Type {
	case "openai":
		return openai.New(openai.Config{
			Name:       p.Name,
			BaseURL:    p.BaseURL,
			APIKeyName: p.SecretName(),
			Timeout:    p.Timeout,
		}, source)
	case "anthropic":
		return anthropic.New(anthropic.Config{
			Name:       p.Name,
			BaseURL:    p.BaseURL,
			APIKeyName: p.SecretName(),
			Timeout:    p.Timeout,
		}, source)
	case "lmstudio":
		return lmstudio.New(lmstudio.Config{
			Name:    p.Name,
			BaseURL: p.BaseURL,
			Timeout: p.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider type %q", p.Type)
	}
}

// providerSpecs converts configuration entries into routing specs,
// preserving declaration order.
func providerSpecs(providers []config.ProviderConfig) []engine.ProviderSpec {
	specs := make([]engine.ProviderSpec, 0, len(providers))
	for _, p := range providers {
		spec := engine.ProviderSpec{
			Name:         p.Name,
			DefaultModel: p.DefaultModel,
		}
		for _, c := range p.Capabilities {
			spec.Capabilities = append(spec.Capabilities, api.Capability(c))
		}
		if len(p.Defaults) > 0 {
			spec.Defaults = make(map[api.Capability]string, len(p.Defaults))
			for c, m := range p.Defaults {
				spec.Defaults[api.Capability(c)] = m
			}
		}
		if len(p.Scores) > 0 {
			spec.Scores = make(map[api.Capability]int, len(p.Scores))
			for c, s := range p.Scores {
				spec.Scores[api.Capability(c)] = s
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

// buildAuthChain maps the configured auth mode onto a voter chain.
// Token and JWT modes deny by default so an absent credential cannot
// slip through on an all-abstain vote.
func buildAuthChain(cfg config.AuthConfig) (*auth.Chain, error) {
	switch cfg.Type {
	case "", "none":
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{&noop.Authenticator{}},
			DefaultDecision: auth.Yes,
		}, nil
	case "token":
		entries := make([]callertoken.RawEntry, 0, len(cfg.Tokens))
		for _, t := range cfg.Tokens {
			entries = append(entries, callertoken.RawEntry{Token: t.Token, Caller: t.Caller})
		}
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{callertoken.New(entries)},
			DefaultDecision: auth.No,
		}, nil
	case "jwt":
		authn, err := jwt.New(jwt.Config{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		})
		if err != nil {
			return nil, err
		}
		return &auth.Chain{
			Authenticators:  []auth.Authenticator{authn},
			DefaultDecision: auth.No,
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Type)
	}
}
