package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
)

// OpenAIProvider implements embeddings against an OpenAI-compatible /embeddings endpoint.
type OpenAIProvider struct {
	*BaseProvider
	cfg    OpenAIConfig
	logger *zap.Logger
}

// NewOpenAIProvider builds the hosted OpenAI embedding provider from cfg.
func NewOpenAIProvider(cfg config.ProviderConfig, logger *zap.Logger) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", openAIConfigFrom(cfg, DefaultOpenAIBaseURL, "OPENAI_API_KEY"), logger), nil
}

// NewOllamaProvider builds the local Ollama embedding provider from cfg.
// Ollama serves the OpenAI embeddings protocol, so no fallback is involved.
func NewOllamaProvider(cfg config.ProviderConfig, logger *zap.Logger) (*OpenAIProvider, error) {
	return newOpenAICompatible("ollama", openAIConfigFrom(cfg, DefaultOllamaBaseURL, ""), logger), nil
}

func newOpenAICompatible(name string, cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIProvider{
		BaseProvider: NewBaseProvider(BaseConfig{
			Name:    name,
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}),
		cfg:    cfg,
		logger: logger.With(zap.String("component", "embedding"), zap.String("provider", name)),
	}
}

type openAIEmbedRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed generates embeddings for every input.
func (p *OpenAIProvider) Embed(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error) {
	model := ChooseModel(req.Model, p.cfg.Model, DefaultOpenAIModel)

	var headers map[string]string
	if p.cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	}

	respBody, err := p.DoRequest(ctx, http.MethodPost, "/embeddings", openAIEmbedRequest{
		Input:          req.Input,
		Model:          model,
		EncodingFormat: "float",
	}, headers)
	if err != nil {
		p.logger.Debug("embedding request failed", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	var oaResp openAIEmbedResponse
	if err := json.Unmarshal(respBody, &oaResp); err != nil {
		return nil, types.AdapterFailure(p.Name(), types.ReasonDecode, "failed to decode embedding response").
			WithCause(err)
	}

	embeddings := make([]EmbeddingData, len(oaResp.Data))
	for i, d := range oaResp.Data {
		embeddings[i] = EmbeddingData{Index: d.Index, Embedding: d.Embedding}
	}

	return &EmbeddingResponse{
		Provider:   p.Name(),
		Model:      ChooseModel(oaResp.Model, model, ""),
		Embeddings: embeddings,
		Usage: EmbeddingUsage{
			PromptTokens: oaResp.Usage.PromptTokens,
			TotalTokens:  oaResp.Usage.TotalTokens,
		},
		CreatedAt: time.Now(),
	}, nil
}

// Embedding embeds a single text.
func (p *OpenAIProvider) Embedding(ctx context.Context, text string) ([]float64, error) {
	return p.EmbedQuery(ctx, text, p.Embed)
}

// BaseURL returns the endpoint root the provider calls.
func (p *OpenAIProvider) BaseURL() string { return p.cfg.BaseURL }
