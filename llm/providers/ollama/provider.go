package ollama

import (
	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/llm/providers"
	"github.com/mygamer123/tradingagents/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// Name is the registry key.
const Name = "ollama"

// DefaultBaseURL is the local Ollama OpenAI-compatible endpoint.
const DefaultBaseURL = "http://localhost:11434/v1"

// Defaults are the local Ollama defaults. No API key is needed.
var Defaults = providers.Defaults{
	BaseURL:    DefaultBaseURL,
	DeepModel:  "llama3.1",
	QuickModel: "llama3.2",
}

// Provider talks to a local Ollama server through its OpenAI-compatible API.
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
		}, logger),
	}, nil
}
