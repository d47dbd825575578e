// Package anthropic adapts the Anthropic Messages API to llm.Provider.
//
// Differences from the OpenAI-compatible vendors:
//  1. Authentication uses the x-api-key header, not a Bearer token.
//  2. System messages travel in a separate "system" field.
//  3. max_tokens is mandatory.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/internal/httpx"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/llm/providers"
	"go.uber.org/zap"
)

// Name is the registry key.
const Name = "anthropic"

const (
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"
	defaultMaxTokens = 4096
)

// Defaults are Anthropic's vendor defaults.
var Defaults = providers.Defaults{
	BaseURL:    "https://api.anthropic.com",
	DeepModel:  "claude-sonnet-4-0",
	QuickModel: "claude-3-5-haiku-latest",
	APIKeyEnv:  "ANTHROPIC_API_KEY",
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type claudeMessage struct {
	Role    string          `json:"role"` // user or assistant
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature,omitempty"`
	StopSeq     []string        `json:"stop_sequences,omitempty"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      *claudeUsage    `json:"usage,omitempty"`
}

// Provider is the Anthropic LLM provider. Anthropic has no embedding API.
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

func convertMessages(msgs []llm.Message) (string, []claudeMessage) {
	var system []string
	out := make([]claudeMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == llm.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "assistant"
		}
		out = append(out, claudeMessage{
			Role:    role,
			Content: []claudeContent{{Type: "text", Text: m.Content}},
		})
	}
	return strings.Join(system, "\n\n"), out
}

func (p *Provider) completion(ctx context.Context, req *llm.ChatRequest, model string) (*llm.ChatResponse, error) {
	if req == nil {
		req = &llm.ChatRequest{}
	}
	llm.EnsureTraceID(req)
	model = providers.ChooseModel(req, model, p.cfg.DeepModel)

	system, messages := convertMessages(req.Messages)
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	payload, err := json.Marshal(claudeRequest{
		Model:       model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		StopSeq:     req.Stop,
	})
	if err != nil {
		return nil, providers.RequestError(Name, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		httpx.Endpoint(p.cfg.BaseURL, messagesPath), bytes.NewReader(payload))
	if err != nil {
		return nil, providers.RequestError(Name, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

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

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, providers.DecodeError(Name, err)
	}

	var text strings.Builder
	for _, c := range cr.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	out := &llm.ChatResponse{
		ID:       cr.ID,
		TraceID:  req.TraceID,
		Provider: Name,
		Model:    cr.Model,
		Choices: []llm.ChatChoice{{
			FinishReason: cr.StopReason,
			Message:      llm.Message{Role: llm.RoleAssistant, Content: text.String()},
		}},
		CreatedAt: time.Now(),
	}
	if out.Model == "" {
		out.Model = model
	}
	if cr.Usage != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     cr.Usage.InputTokens,
			CompletionTokens: cr.Usage.OutputTokens,
			TotalTokens:      cr.Usage.InputTokens + cr.Usage.OutputTokens,
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
