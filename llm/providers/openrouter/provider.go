package openrouter

import (
	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/llm/providers"
	"github.com/mygamer123/tradingagents/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// Name is the registry key.
const Name = "openrouter"

// Keys for OpenRouter's app attribution headers.
const (
	KeyReferer = "openrouter_referer"
	KeyTitle   = "openrouter_title"
)

// Defaults are OpenRouter's vendor defaults. Model ids carry the upstream vendor prefix.
var Defaults = providers.Defaults{
	BaseURL:    "https://openrouter.ai/api/v1",
	DeepModel:  "openai/o4-mini",
	QuickModel: "openai/gpt-4o-mini",
	APIKeyEnv:  "OPENROUTER_API_KEY",
}

// Provider is the OpenRouter LLM provider. OpenRouter has no embedding API.
type Provider struct {
	*openaicompat.Provider
}

// New builds the provider from cfg.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	base := providers.ResolveBase(cfg, Defaults)

	return &Provider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName: Name,
			APIKey:       base.APIKey,
			BaseURL:      base.BaseURL,
			DeepModel:    base.DeepModel,
			QuickModel:   base.QuickModel,
			Timeout:      base.Timeout,
			ExtraHeaders: map[string]string{
				"HTTP-Referer": cfg.String(KeyReferer, "https://github.com/mygamer123/tradingagents"),
				"X-Title":      cfg.String(KeyTitle, "TradingAgents"),
			},
		}, logger),
	}, nil
}
