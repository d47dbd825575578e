package openai

import (
	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/llm/providers"
	"github.com/mygamer123/tradingagents/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// Name is the registry key.
const Name = "openai"

// KeyOrganization optionally selects the OpenAI organization header.
const KeyOrganization = "openai_organization"

// Defaults are OpenAI's vendor defaults.
var Defaults = providers.Defaults{
	BaseURL:    "https://api.openai.com/v1",
	DeepModel:  "o4-mini",
	QuickModel: "gpt-4o-mini",
	APIKeyEnv:  "OPENAI_API_KEY",
}

// Provider is the OpenAI LLM provider.
type Provider struct {
	*openaicompat.Provider
}

// New builds the provider from cfg. It never fails on missing keys.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	base := providers.ResolveBase(cfg, Defaults)

	var headers map[string]string
	if org := cfg.String(KeyOrganization, ""); org != "" {
		headers = map[string]string{"OpenAI-Organization": org}
	}

	return &Provider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName: Name,
			APIKey:       base.APIKey,
			BaseURL:      base.BaseURL,
			DeepModel:    base.DeepModel,
			QuickModel:   base.QuickModel,
			Timeout:      base.Timeout,
			ExtraHeaders: headers,
		}, logger),
	}, nil
}
