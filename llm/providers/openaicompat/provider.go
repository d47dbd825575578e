// =============================================================================
// OpenAI-Compatible Provider Base
// =============================================================================
// Shared implementation for every OpenAI-compatible LLM vendor.
// openai, openrouter and ollama embed this and only override what differs
// (name, base URL, default models, headers).
// =============================================================================

package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mygamer123/tradingagents/internal/httpx"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/llm/providers"
	"go.uber.org/zap"
)

// Config holds the configuration for an OpenAI-compatible provider.
type Config struct {
	// ProviderName is the registry key reported by Name().
	ProviderName string

	// APIKey is sent as a Bearer token. Empty means no Authorization header.
	APIKey string

	// BaseURL is the API root including the version segment, e.g. "https://api.openai.com/v1".
	BaseURL string

	// DeepModel and QuickModel back the two model handles.
	DeepModel  string
	QuickModel string

	// Timeout is the HTTP client timeout.
	Timeout time.Duration

	// EndpointPath is the chat completions path. Defaults to "/chat/completions".
	EndpointPath string

	// ExtraHeaders are set on every request.
	ExtraHeaders map[string]string
}

// Provider is the base implementation for OpenAI-compatible vendors.
type Provider struct {
	Cfg    Config
	Client *http.Client
	Logger *zap.Logger
}

// New creates a provider. No network I/O happens here.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/chat/completions"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		Cfg:    cfg,
		Client: httpx.NewClient(cfg.Timeout),
		Logger: logger.With(zap.String("provider", cfg.ProviderName)),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.Cfg.ProviderName }

// DeepThinkingLLM returns the handle bound to the deep model.
func (p *Provider) DeepThinkingLLM() (llm.ChatModel, error) {
	return &ChatModel{p: p, model: p.Cfg.DeepModel}, nil
}

// QuickThinkingLLM returns the handle bound to the quick model.
func (p *Provider) QuickThinkingLLM() (llm.ChatModel, error) {
	return &ChatModel{p: p, model: p.Cfg.QuickModel}, nil
}

func (p *Provider) buildHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if p.Cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.Cfg.APIKey)
	}
	for k, v := range p.Cfg.ExtraHeaders {
		req.Header.Set(k, v)
	}
}

// Completion performs a non-streaming chat completion against model.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest, model string) (*llm.ChatResponse, error) {
	if req == nil {
		req = &llm.ChatRequest{}
	}
	llm.EnsureTraceID(req)
	model = providers.ChooseModel(req, model, p.Cfg.DeepModel)

	body := providers.OpenAICompatRequest{
		Model:       model,
		Messages:    providers.ConvertMessagesToOpenAI(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, providers.RequestError(p.Name(), "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		httpx.Endpoint(p.Cfg.BaseURL, p.Cfg.EndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, providers.RequestError(p.Name(), "failed to create request", err)
	}
	p.buildHeaders(httpReq)
	httpReq.Header.Set("X-Request-ID", req.TraceID)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, providers.TransportError(p.Name(), err)
	}
	defer httpx.CloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		p.Logger.Debug("completion failed",
			zap.String("trace_id", req.TraceID),
			zap.Int("status", resp.StatusCode),
			zap.String("model", model))
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var oaResp providers.OpenAICompatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaResp); err != nil {
		return nil, providers.DecodeError(p.Name(), err)
	}

	result := providers.ToLLMChatResponse(oaResp, p.Name())
	result.TraceID = req.TraceID
	if result.Model == "" {
		result.Model = model
	}
	return result, nil
}

// ChatModel is a handle bound to one model of an OpenAI-compatible provider.
type ChatModel struct {
	p     *Provider
	model string
}

// Completion sends req using the handle's model unless req.Model is set.
func (m *ChatModel) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return m.p.Completion(ctx, req, m.model)
}

// ModelName returns the bound model.
func (m *ChatModel) ModelName() string { return m.model }

// Provider returns the owning provider's name.
func (m *ChatModel) Provider() string { return m.p.Name() }
