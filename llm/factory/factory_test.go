package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/llm/embedding"
	"github.com/mygamer123/tradingagents/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func newRegistries(t *testing.T, opts ...Option) *Registries {
	t.Helper()
	r, err := New(append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	require.NoError(t, err)
	return r
}

func closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}

func TestNew_BuiltinOrder(t *testing.T) {
	r := newRegistries(t)

	assert.Equal(t, []string{"openai", "anthropic", "google", "openrouter", "ollama"}, r.LLM.List())
	assert.Equal(t, []string{"openai", "anthropic", "google", "openrouter", "ollama"}, r.Embedding.List())
	assert.Equal(t, []string{"finnhub", "twelvedata", "redis", "sql"}, r.Data.List())
}

func TestGet_EverySupportedKey(t *testing.T) {
	r := newRegistries(t)

	for _, key := range r.LLM.List() {
		t.Run("llm/"+key, func(t *testing.T) {
			p, err := r.LLM.GetByKey(key, nil)
			require.NoError(t, err)
			assert.Equal(t, key, p.Name())

			deep, err := p.DeepThinkingLLM()
			require.NoError(t, err)
			assert.NotEmpty(t, deep.ModelName())
			quick, err := p.QuickThinkingLLM()
			require.NoError(t, err)
			assert.NotEmpty(t, quick.ModelName())
			assert.Equal(t, key, quick.Provider())
		})
	}

	for _, key := range r.Embedding.List() {
		t.Run("embedding/"+key, func(t *testing.T) {
			p, err := r.Embeddings.ResolveKey(key, nil)
			require.NoError(t, err)
			assert.Equal(t, key, p.Name())
			assert.NotEmpty(t, p.EmbeddingModelName())
		})
	}

	for _, key := range r.Data.List() {
		t.Run("data/"+key, func(t *testing.T) {
			p, err := r.Data.GetByKey(key, nil)
			require.NoError(t, err)
			defer closeIfCloser(p)
			assert.Equal(t, key, p.Name())
			var _ data.Provider = p
		})
	}
}

func TestGet_UnknownKeyListsRegistered(t *testing.T) {
	r := newRegistries(t)

	tests := []struct {
		name string
		get  func() error
		list func() []string
	}{
		{"llm", func() error { _, err := r.LLM.GetByKey("mystery", nil); return err }, r.LLM.List},
		{"embedding", func() error { _, err := r.Embeddings.ResolveKey("mystery", nil); return err }, r.LLM.List},
		{"data", func() error {
			_, err := r.DataProvider(config.ProviderConfig{config.KeyDataProvider: "bloomberg"})
			return err
		}, r.Data.List},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get()
			e, ok := types.AsError(err)
			require.True(t, ok)
			assert.Equal(t, types.ErrUnknownProvider, e.Code)
			assert.Equal(t, tt.list(), e.Available)
		})
	}

	require.NoError(t, r.Data.Register("custom", func(cfg config.ProviderConfig) (data.Provider, error) {
		return newStaticData(), nil
	}))
	_, err := r.Data.GetByKey("bloomberg", nil)
	e, _ := types.AsError(err)
	assert.Equal(t, []string{"finnhub", "twelvedata", "redis", "sql", "custom"}, e.Available)
}

func TestGet_KeyNormalization(t *testing.T) {
	r := newRegistries(t)

	for _, key := range []string{"OpenAI", " openai ", "openai", "OPENAI\t"} {
		p, err := r.LLMProvider(config.ProviderConfig{config.KeyLLMProvider: key})
		require.NoError(t, err, key)
		assert.Equal(t, "openai", p.Name())
	}

	p, err := r.DataProvider(config.ProviderConfig{config.KeyDataProvider: " FinnHub"})
	require.NoError(t, err)
	assert.Equal(t, "finnhub", p.Name())
}

func TestGet_DefaultResolution(t *testing.T) {
	r := newRegistries(t)

	for _, cfg := range []config.ProviderConfig{nil, {}, {config.KeyLLMProvider: "  "}} {
		p, err := r.LLMProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, "openai", p.Name())

		e, err := r.EmbeddingProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, "openai", e.Name())
	}

	for _, cfg := range []config.ProviderConfig{nil, {}} {
		p, err := r.DataProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, "finnhub", p.Name())
	}
}

func TestGet_ProcessDefaultsFromStore(t *testing.T) {
	store := config.NewStore(config.DefaultConfig().ProviderConfig())
	r := newRegistries(t, WithStore(store))
	assert.Same(t, store, r.Store())

	store.Set(config.ProviderConfig{config.KeyLLMProvider: "anthropic", config.KeyDataProvider: "sql"})

	p, err := r.LLMProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	e, err := r.EmbeddingProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, "openai-fallback-text-embedding-3-small", e.EmbeddingModelName())

	d, err := r.DataProvider(nil)
	require.NoError(t, err)
	defer closeIfCloser(d)
	assert.Equal(t, "sql", d.Name())

	// a non-nil config without a selector means the family default, not the store's pick
	for _, cfg := range []config.ProviderConfig{
		{},
		{config.KeyDeepThinkLLM: "x"},
		{config.KeyLLMProvider: "  ", config.KeyDataProvider: ""},
	} {
		p, err := r.LLMProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, r.LLM.DefaultKey(), p.Name(), "%v", cfg)

		e, err := r.EmbeddingProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, r.Embedding.DefaultKey(), e.Name(), "%v", cfg)

		d, err := r.DataProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, r.Data.DefaultKey(), d.Name(), "%v", cfg)
		closeIfCloser(d)
	}

	store.Reset()
	p, err = r.LLMProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestEmbedding_FallbackMatchesOpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		n := float64(len(req.Input[0]))
		fmt.Fprintf(w, `{"data":[{"index":0,"embedding":[%g,%g,%g,%g]}],"model":%q}`, n, n+1, n+2, n+3, req.Model)
	}))
	t.Cleanup(server.Close)

	r := newRegistries(t)
	base := config.ProviderConfig{
		config.KeyEmbeddingBackendURL: server.URL + "/v1",
		config.KeyEmbeddingAPIKey:     "sk-embed",
	}

	direct, err := r.EmbeddingProvider(base.Merge(config.ProviderConfig{config.KeyLLMProvider: "openai"}))
	require.NoError(t, err)
	want, err := direct.Embedding(context.Background(), "NVDA guidance")
	require.NoError(t, err)

	for _, primary := range []string{"anthropic", "google", "openrouter"} {
		t.Run(primary, func(t *testing.T) {
			p, err := r.EmbeddingProvider(base.Merge(config.ProviderConfig{
				config.KeyLLMProvider: primary,
				config.KeyBackendURL:  "https://vendor.invalid",
				config.KeyAPIKey:      "vendor-key",
			}))
			require.NoError(t, err)
			assert.Equal(t, primary, p.Name())

			got, err := p.Embedding(context.Background(), "NVDA guidance")
			require.NoError(t, err)
			assert.Len(t, got, len(want))
			assert.Equal(t, want, got)
		})
	}
}

// chatOnly is a custom LLM vendor with no embedding support.
type chatOnly struct{}

func (chatOnly) Name() string                             { return "chatonly" }
func (chatOnly) DeepThinkingLLM() (llm.ChatModel, error)  { return nil, nil }
func (chatOnly) QuickThinkingLLM() (llm.ChatModel, error) { return nil, nil }

func TestEmbedding_CustomProviderUnsupported(t *testing.T) {
	r := newRegistries(t)
	require.NoError(t, r.LLM.Register("chatonly", func(config.ProviderConfig) (llm.Provider, error) {
		return chatOnly{}, nil
	}))

	p, err := r.EmbeddingProvider(config.ProviderConfig{config.KeyLLMProvider: "ChatOnly"})
	require.NoError(t, err)

	_, err = p.Embedding(context.Background(), "x")
	assert.True(t, types.IsCode(err, types.ErrUnsupportedCapability))
}

func TestEmbedding_ReRegistrationOverridesFallback(t *testing.T) {
	r := newRegistries(t)
	require.NoError(t, r.Embedding.Register("anthropic", func(cfg config.ProviderConfig) (embedding.Provider, error) {
		return embedding.NewUnsupported("anthropic"), nil
	}))
	assert.Equal(t, []string{"openai", "anthropic", "google", "openrouter", "ollama"}, r.Embedding.List())

	p, err := r.EmbeddingProvider(config.ProviderConfig{config.KeyLLMProvider: "anthropic"})
	require.NoError(t, err)
	_, isFallback := p.(*embedding.Fallback)
	assert.False(t, isFallback)
}

// missingFeed implements only two of the three data feeds.
type missingFeed struct{}

func (missingFeed) Name() string { return "partial" }
func (missingFeed) News(context.Context, string, string, string) (data.DateIndexed[data.NewsItem], error) {
	return nil, nil
}
func (missingFeed) InsiderSentiment(context.Context, string, string, string) (data.DateIndexed[data.InsiderSentiment], error) {
	return nil, nil
}

func TestRegister_ValidationLeavesRegistryUnchanged(t *testing.T) {
	r := newRegistries(t)
	before := r.Data.List()

	err := r.Data.RegisterFunc("partial", func(config.ProviderConfig) (any, error) { return missingFeed{}, nil })
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrInvalidProvider, e.Code)
	assert.Contains(t, e.Message, "InsiderTransactions")

	assert.Equal(t, before, r.Data.List())
	assert.False(t, r.Data.Has("partial"))
	_, err = r.Data.GetByKey("partial", nil)
	assert.True(t, types.IsCode(err, types.ErrUnknownProvider))
}

func writeFinnhubFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"news_data":     `{"2024-01-08": [{"headline": "Vision Pro date", "summary": "Feb 2"}], "2024-01-09": []}`,
		"insider_senti": `{"2024-01-01": [{"year": 2024, "month": 1, "change": 1200, "mspr": 14.2}]}`,
		"insider_trans": `{"2024-01-05": [{"filingDate": "2024-01-06", "name": "Maestri Luca", "change": -1500, "share": 100000, "transactionPrice": 181.2, "transactionCode": "S"}]}`,
	}
	for dir, body := range files {
		path := filepath.Join(root, "finnhub_data", dir)
		require.NoError(t, os.MkdirAll(path, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(path, "AAPL_data_formatted.json"), []byte(body), 0o644))
	}
	return root
}

func TestData_FinnhubIdempotent(t *testing.T) {
	r := newRegistries(t)
	cfg := config.ProviderConfig{config.KeyDataProvider: "finnhub", config.KeyDataDir: writeFinnhubFixture(t)}
	ctx := context.Background()

	fetch := func() *data.Snapshot {
		p, err := r.DataProvider(cfg)
		require.NoError(t, err)
		snap, err := data.FetchSnapshot(ctx, p, "AAPL", "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		return snap
	}

	first, second := fetch(), fetch()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.News.Count())
	assert.Equal(t, 1, first.InsiderSentiment.Count())
	assert.Equal(t, 1, first.InsiderTransactions.Count())
}

func TestData_EmptyWindow(t *testing.T) {
	r := newRegistries(t)
	mr := miniredis.RunT(t)
	base := config.ProviderConfig{
		config.KeyDataDir:           writeFinnhubFixture(t),
		config.KeyTwelveDataBaseURL: "http://unused.invalid",
		config.KeyRedisAddr:         mr.Addr(),
		config.KeySQLDSN:            filepath.Join(t.TempDir(), "empty.db"),
	}
	ctx := context.Background()

	for _, key := range r.Data.List() {
		t.Run(key, func(t *testing.T) {
			p, err := r.DataProvider(base.Merge(config.ProviderConfig{config.KeyDataProvider: key}))
			require.NoError(t, err)
			defer closeIfCloser(p)

			news, err := p.News(ctx, "AAPL", "2024-01-10", "2024-01-05")
			require.NoError(t, err)
			assert.NotNil(t, news)
			assert.Empty(t, news)

			sentiment, err := p.InsiderSentiment(ctx, "AAPL", "2024-01-10", "2024-01-05")
			require.NoError(t, err)
			assert.NotNil(t, sentiment)
			assert.Empty(t, sentiment)

			transactions, err := p.InsiderTransactions(ctx, "AAPL", "2024-01-10", "2024-01-05")
			require.NoError(t, err)
			assert.NotNil(t, transactions)
			assert.Empty(t, transactions)
		})
	}
}

// staticData serves one fixed record per feed.
type staticData struct{}

func newStaticData() *staticData { return &staticData{} }

func (*staticData) Name() string { return "custom" }
func (*staticData) News(context.Context, string, string, string) (data.DateIndexed[data.NewsItem], error) {
	return data.DateIndexed[data.NewsItem]{"2024-01-01": {{Headline: "h"}}}, nil
}
func (*staticData) InsiderSentiment(context.Context, string, string, string) (data.DateIndexed[data.InsiderSentiment], error) {
	return data.DateIndexed[data.InsiderSentiment]{}, nil
}
func (*staticData) InsiderTransactions(context.Context, string, string, string) (data.DateIndexed[data.InsiderTransaction], error) {
	return data.DateIndexed[data.InsiderTransaction]{}, nil
}

type recorder struct {
	mu          sync.Mutex
	resolutions []string
	calls       []string
}

func (r *recorder) RecordResolution(family, key, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions = append(r.resolutions, family+"/"+key+"/"+outcome)
}

func (r *recorder) RecordCapabilityCall(family, provider, op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.calls = append(r.calls, family+"/"+provider+"/"+op+"/"+status)
}

func TestWithRecorder(t *testing.T) {
	rec := &recorder{}
	r := newRegistries(t, WithRecorder(rec))

	require.NoError(t, r.Data.Register("custom", func(config.ProviderConfig) (data.Provider, error) {
		return newStaticData(), nil
	}))

	p, err := r.DataProvider(config.ProviderConfig{config.KeyDataProvider: "custom"})
	require.NoError(t, err)
	_, err = p.News(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	_, err = r.LLMProvider(config.ProviderConfig{config.KeyLLMProvider: "nope"})
	require.Error(t, err)

	assert.Contains(t, rec.resolutions, "data/custom/ok")
	assert.Contains(t, rec.resolutions, "llm/nope/unknown")
	assert.Equal(t, []string{"data/custom/news/ok"}, rec.calls)
}

func TestWithTracerProvider(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	rec := &recorder{}
	r := newRegistries(t, WithTracerProvider(tp), WithRecorder(rec))
	require.NoError(t, r.Data.Register("custom", func(config.ProviderConfig) (data.Provider, error) {
		return newStaticData(), nil
	}))

	p, err := r.DataProvider(config.ProviderConfig{config.KeyDataProvider: "custom"})
	require.NoError(t, err)
	_, err = p.InsiderSentiment(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "data.insider_sentiment", spans[0].Name())
	assert.Equal(t, []string{"data/custom/insider_sentiment/ok"}, rec.calls)
}

func TestConcurrentResolution(t *testing.T) {
	r := newRegistries(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := LLMBuiltins[i%len(LLMBuiltins)]
			p, err := r.LLMProvider(config.ProviderConfig{config.KeyLLMProvider: key})
			assert.NoError(t, err)
			assert.Equal(t, key, p.Name())

			_, err = r.EmbeddingProvider(config.ProviderConfig{config.KeyLLMProvider: key})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
