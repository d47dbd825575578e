package embedding

import (
	"context"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/registry"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
)

// DefaultFallbacks maps LLM vendors without an embedding API to the vendor
// that serves their embeddings. It is compiled in; override a primary by
// re-registering its key in the embedding registry.
var DefaultFallbacks = map[string]string{
	"anthropic":  "openai",
	"google":     "openai",
	"openrouter": "openai",
}

// fallbackSep joins target and model in the name reported by a Fallback.
const fallbackSep = "-fallback-"

// FallbackConfig derives the configuration handed to the fallback provider.
// The primary's endpoint and key are dropped since they belong to another
// vendor; embedding_* keys and every unrelated key are kept.
func FallbackConfig(cfg config.ProviderConfig, fallbackKey string) config.ProviderConfig {
	out := cfg.Clone()
	delete(out, config.KeyBackendURL)
	delete(out, config.KeyAPIKey)
	out[config.KeyLLMProvider] = fallbackKey
	return out
}

// Fallback serves embeddings for primary through another provider.
type Fallback struct {
	primary string
	target  Provider
}

// NewFallback wraps target on behalf of primary.
func NewFallback(primary string, target Provider) *Fallback {
	return &Fallback{primary: primary, target: target}
}

// Name returns the primary key; callers asked for this vendor.
func (f *Fallback) Name() string { return f.primary }

// Target returns the provider doing the work.
func (f *Fallback) Target() Provider { return f.target }

// Embedding delegates to the target.
func (f *Fallback) Embedding(ctx context.Context, text string) ([]float64, error) {
	return f.target.Embedding(ctx, text)
}

// EmbeddingModelName reports "<target>-fallback-<model>".
func (f *Fallback) EmbeddingModelName() string {
	return f.target.Name() + fallbackSep + f.target.EmbeddingModelName()
}

// FallbackConstructor returns a constructor for primary that resolves
// fallbackKey from reg with the derived configuration.
func FallbackConstructor(reg *registry.Registry[Provider], primary, fallbackKey string) registry.Constructor[Provider] {
	return func(cfg config.ProviderConfig) (Provider, error) {
		target, err := reg.GetByKey(fallbackKey, FallbackConfig(cfg, fallbackKey))
		if err != nil {
			return nil, err
		}
		return NewFallback(registry.Normalize(primary), target), nil
	}
}

// Unsupported is returned for a provider with no embedding support and no
// fallback. Every call fails with UNSUPPORTED_CAPABILITY.
type Unsupported struct {
	provider string
}

// NewUnsupported returns the placeholder for provider.
func NewUnsupported(provider string) *Unsupported {
	return &Unsupported{provider: provider}
}

func (u *Unsupported) Name() string { return u.provider }

func (u *Unsupported) Embedding(context.Context, string) ([]float64, error) {
	return nil, types.UnsupportedCapability(u.provider, "embeddings")
}

func (u *Unsupported) EmbeddingModelName() string { return "" }

// Resolver picks the embedding provider for an LLM selection.
//
// Order: a registered embedding entry for the key (native or fallback),
// then the LLM product itself when it implements Provider, then Unsupported.
type Resolver struct {
	llms       *registry.Registry[llm.Provider]
	embeddings *registry.Registry[Provider]
	logger     *zap.Logger
}

// NewResolver creates a resolver over the two registries.
func NewResolver(llms *registry.Registry[llm.Provider], embeddings *registry.Registry[Provider], logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		llms:       llms,
		embeddings: embeddings,
		logger:     logger.With(zap.String("component", "embedding_resolver")),
	}
}

// Resolve returns the embedding provider for cfg's llm_provider selection.
func (r *Resolver) Resolve(cfg config.ProviderConfig) (Provider, error) {
	return r.ResolveKey(r.embeddings.KeyFor(cfg), cfg)
}

// ResolveKey returns the embedding provider for key.
func (r *Resolver) ResolveKey(key string, cfg config.ProviderConfig) (Provider, error) {
	key = registry.Normalize(key)
	if key == "" {
		key = r.embeddings.DefaultKey()
	}

	if r.embeddings.Has(key) {
		p, err := r.embeddings.GetByKey(key, cfg)
		if err != nil {
			return nil, err
		}
		if fb, ok := p.(*Fallback); ok {
			r.logger.Debug("embedding served by fallback",
				zap.String("provider", key),
				zap.String("fallback", fb.Target().Name()))
		}
		return p, nil
	}

	product, err := r.llms.GetByKey(key, cfg)
	if err != nil {
		return nil, err
	}
	if p, ok := product.(Provider); ok {
		return p, nil
	}

	r.logger.Debug("provider has no embedding support", zap.String("provider", key))
	return NewUnsupported(key), nil
}
