package factory

import (
	"fmt"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/data/finnhub"
	"github.com/mygamer123/tradingagents/data/redisstore"
	"github.com/mygamer123/tradingagents/data/sqlstore"
	"github.com/mygamer123/tradingagents/data/twelvedata"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/llm/embedding"
	"github.com/mygamer123/tradingagents/llm/providers/anthropic"
	"github.com/mygamer123/tradingagents/llm/providers/gemini"
	"github.com/mygamer123/tradingagents/llm/providers/ollama"
	"github.com/mygamer123/tradingagents/llm/providers/openai"
	"github.com/mygamer123/tradingagents/llm/providers/openrouter"
	"github.com/mygamer123/tradingagents/registry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Family names.
const (
	FamilyLLM       = "llm"
	FamilyEmbedding = "embedding"
	FamilyData      = "data"
)

// Default keys used when a configuration names no provider.
const (
	DefaultLLM  = openai.Name
	DefaultData = finnhub.Name
)

// LLMBuiltins lists the built-in LLM keys in registration order.
var LLMBuiltins = []string{openai.Name, anthropic.Name, gemini.Name, openrouter.Name, ollama.Name}

// DataBuiltins lists the built-in data keys in registration order.
var DataBuiltins = []string{finnhub.Name, twelvedata.Name, redisstore.Name, sqlstore.Name}

// Recorder receives resolution and capability-call observations.
type Recorder interface {
	registry.Recorder
	data.CallRecorder
}

// Option configures New.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	store    *config.Store
	recorder Recorder
	tracer   trace.TracerProvider
}

// WithLogger sets the logger passed to registries and adapters.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStore makes store the source of the process defaults.
func WithStore(store *config.Store) Option {
	return func(o *options) { o.store = store }
}

// WithRecorder reports resolutions and data calls to rec.
func WithRecorder(rec Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithTracerProvider runs every data call in a span from tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// Registries holds one registry per capability family plus the embedding
// resolver. Build it once at start-up and pass it by reference.
type Registries struct {
	LLM        *registry.Registry[llm.Provider]
	Embedding  *registry.Registry[embedding.Provider]
	Data       *registry.Registry[data.Provider]
	Embeddings *embedding.Resolver

	store    *config.Store
	recorder Recorder
	tracer   trace.TracerProvider
	logger   *zap.Logger
}

// New builds the registries and registers the built-ins. Without WithStore
// the process defaults are config.DefaultConfig().ProviderConfig().
func New(opts ...Option) (*Registries, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = config.NewStore(config.DefaultConfig().ProviderConfig())
	}

	regOpts := []registry.Option{
		registry.WithDefaults(o.store.Get),
		registry.WithLogger(o.logger),
	}
	if o.recorder != nil {
		regOpts = append(regOpts, registry.WithRecorder(o.recorder))
	}

	r := &Registries{
		LLM:       registry.New[llm.Provider](FamilyLLM, config.KeyLLMProvider, DefaultLLM, regOpts...),
		Embedding: registry.New[embedding.Provider](FamilyEmbedding, config.KeyLLMProvider, DefaultLLM, regOpts...),
		Data:      registry.New[data.Provider](FamilyData, config.KeyDataProvider, DefaultData, regOpts...),
		store:     o.store,
		recorder:  o.recorder,
		tracer:    o.tracer,
		logger:    o.logger,
	}
	r.Embeddings = embedding.NewResolver(r.LLM, r.Embedding, o.logger)

	if err := r.registerLLMs(); err != nil {
		return nil, err
	}
	if err := r.registerEmbeddings(); err != nil {
		return nil, err
	}
	if err := r.registerData(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registries) registerLLMs() error {
	logger := r.logger
	ctors := map[string]registry.Constructor[llm.Provider]{
		openai.Name: func(cfg config.ProviderConfig) (llm.Provider, error) { return openai.New(cfg, logger) },
		anthropic.Name: func(cfg config.ProviderConfig) (llm.Provider, error) {
			return anthropic.New(cfg, logger)
		},
		gemini.Name: func(cfg config.ProviderConfig) (llm.Provider, error) { return gemini.New(cfg, logger) },
		openrouter.Name: func(cfg config.ProviderConfig) (llm.Provider, error) {
			return openrouter.New(cfg, logger)
		},
		ollama.Name: func(cfg config.ProviderConfig) (llm.Provider, error) { return ollama.New(cfg, logger) },
	}
	return registerInOrder(r.LLM, LLMBuiltins, ctors)
}

// registerEmbeddings adds the native providers first; the fallback entries
// resolve their target from the same registry.
func (r *Registries) registerEmbeddings() error {
	logger := r.logger
	if err := r.Embedding.Register(openai.Name, func(cfg config.ProviderConfig) (embedding.Provider, error) {
		return embedding.NewOpenAIProvider(cfg, logger)
	}); err != nil {
		return err
	}

	for _, key := range LLMBuiltins {
		switch {
		case key == openai.Name:
		case key == ollama.Name:
			if err := r.Embedding.Register(key, func(cfg config.ProviderConfig) (embedding.Provider, error) {
				return embedding.NewOllamaProvider(cfg, logger)
			}); err != nil {
				return err
			}
		default:
			target, ok := embedding.DefaultFallbacks[key]
			if !ok {
				return fmt.Errorf("no embedding provider or fallback for built-in %q", key)
			}
			if err := r.Embedding.Register(key, embedding.FallbackConstructor(r.Embedding, key, target)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registries) registerData() error {
	logger := r.logger
	ctors := map[string]registry.Constructor[data.Provider]{
		finnhub.Name: func(cfg config.ProviderConfig) (data.Provider, error) { return finnhub.New(cfg, logger) },
		twelvedata.Name: func(cfg config.ProviderConfig) (data.Provider, error) {
			return twelvedata.New(cfg, logger)
		},
		redisstore.Name: func(cfg config.ProviderConfig) (data.Provider, error) {
			return redisstore.New(cfg, logger)
		},
		sqlstore.Name: func(cfg config.ProviderConfig) (data.Provider, error) { return sqlstore.New(cfg, logger) },
	}
	return registerInOrder(r.Data, DataBuiltins, ctors)
}

func registerInOrder[T any](reg *registry.Registry[T], order []string, ctors map[string]registry.Constructor[T]) error {
	for _, key := range order {
		if err := reg.Register(key, ctors[key]); err != nil {
			return err
		}
	}
	return nil
}

// Store returns the process defaults.
func (r *Registries) Store() *config.Store { return r.store }

// LLMProvider resolves the LLM provider selected by cfg.
func (r *Registries) LLMProvider(cfg config.ProviderConfig) (llm.Provider, error) {
	return r.LLM.Get(cfg)
}

// EmbeddingProvider resolves the embedding provider for cfg's LLM selection,
// applying the fallback policy.
func (r *Registries) EmbeddingProvider(cfg config.ProviderConfig) (embedding.Provider, error) {
	return r.Embeddings.Resolve(cfg)
}

// DataProvider resolves the data provider selected by cfg. With a tracer
// provider configured each call runs in a span; with a recorder it is timed.
func (r *Registries) DataProvider(cfg config.ProviderConfig) (data.Provider, error) {
	p, err := r.Data.Get(cfg)
	if err != nil {
		return nil, err
	}
	p = data.WithTracing(p, r.tracer)
	if r.recorder != nil {
		p = data.WithMetrics(p, r.recorder)
	}
	return p, nil
}
