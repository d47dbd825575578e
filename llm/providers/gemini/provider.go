package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/internal/httpx"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/llm/providers"
	"go.uber.org/zap"
)

// Name is the registry key. The vendor is Google; the product is Gemini.
const Name = "google"

// Defaults are Google's vendor defaults.
var Defaults = providers.Defaults{
	BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
	DeepModel:  "gemini-2.5-pro",
	QuickModel: "gemini-2.5-flash",
	APIKeyEnv:  "GOOGLE_API_KEY",
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"` // user, model
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32  `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string               `json:"modelVersion,omitempty"`
	ResponseID    string               `json:"responseId,omitempty"`
}

// Provider implements llm.Provider for Google Gemini.
// Authentication uses the x-goog-api-key header. Gemini embeddings are not
// wired; the embedding resolver falls back to openai for this key.
type Provider struct {
	cfg    providers.BaseProviderConfig
	client *http.Client
	logger *zap.Logger
}

// New builds the provider from cfg.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := providers.ResolveBase(cfg, Defaults)
	return &Provider{
		cfg:    base,
		client: httpx.NewClient(base.Timeout),
		logger: logger.With(zap.String("provider", Name)),
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) DeepThinkingLLM() (llm.ChatModel, error) {
	return &chatModel{p: p, model: p.cfg.DeepModel}, nil
}

func (p *Provider) QuickThinkingLLM() (llm.ChatModel, error) {
	return &chatModel{p: p, model: p.cfg.QuickModel}, nil
}

func convertMessages(msgs []llm.Message) (*geminiContent, []geminiContent) {
	var system *geminiContent
	out := make([]geminiContent, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			if system == nil {
				system = &geminiContent{}
			}
			system.Parts = append(system.Parts, geminiPart{Text: m.Content})
		case llm.RoleAssistant:
			out = append(out, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			out = append(out, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	return system, out
}

func (p *Provider) completion(ctx context.Context, req *llm.ChatRequest, model string) (*llm.ChatResponse, error) {
	if req == nil {
		req = &llm.ChatRequest{}
	}
	llm.EnsureTraceID(req)
	model = providers.ChooseModel(req, model, p.cfg.DeepModel)

	system, contents := convertMessages(req.Messages)
	body := geminiRequest{Contents: contents, SystemInstruction: system}
	if req.Temperature != 0 || req.MaxTokens > 0 || len(req.Stop) > 0 {
		body.GenerationConfig = &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
			StopSequences:   req.Stop,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, providers.RequestError(Name, "failed to marshal request", err)
	}

	endpoint := httpx.Endpoint(p.cfg.BaseURL, "/models/"+url.PathEscape(model)+":generateContent")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, providers.RequestError(Name, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, providers.TransportError(Name, err)
	}
	defer httpx.CloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		p.logger.Debug("completion failed",
			zap.String("trace_id", req.TraceID),
			zap.Int("status", resp.StatusCode))
		return nil, providers.MapHTTPError(resp.StatusCode, msg, Name)
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, providers.DecodeError(Name, err)
	}

	out := &llm.ChatResponse{
		ID:        gr.ResponseID,
		TraceID:   req.TraceID,
		Provider:  Name,
		Model:     model,
		CreatedAt: time.Now(),
	}
	if gr.ModelVersion != "" {
		out.Model = gr.ModelVersion
	}
	for _, c := range gr.Candidates {
		var text strings.Builder
		for _, part := range c.Content.Parts {
			text.WriteString(part.Text)
		}
		out.Choices = append(out.Choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: c.FinishReason,
			Message:      llm.Message{Role: llm.RoleAssistant, Content: text.String()},
		})
	}
	if gr.UsageMetadata != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     gr.UsageMetadata.PromptTokenCount,
			CompletionTokens: gr.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gr.UsageMetadata.TotalTokenCount,
		}
	}
	return out, nil
}

type chatModel struct {
	p     *Provider
	model string
}

func (m *chatModel) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return m.p.completion(ctx, req, m.model)
}

func (m *chatModel) ModelName() string { return m.model }

func (m *chatModel) Provider() string { return Name }
