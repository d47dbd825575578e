package providers

import (
	"os"
	"time"

	"github.com/mygamer123/tradingagents/config"
)

// Defaults are the vendor values an adapter falls back to when a key is absent.
type Defaults struct {
	BaseURL    string
	DeepModel  string
	QuickModel string
	// APIKeyEnv is read when neither api_key nor the caller config carries a key.
	APIKeyEnv string
}

// BaseProviderConfig is the part of a ProviderConfig every LLM adapter reads.
type BaseProviderConfig struct {
	APIKey     string        `json:"api_key" yaml:"api_key"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	DeepModel  string        `json:"deep_think_llm" yaml:"deep_think_llm"`
	QuickModel string        `json:"quick_think_llm" yaml:"quick_think_llm"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ResolveBase reads the shared adapter keys from cfg. Missing keys never fail.
func ResolveBase(cfg config.ProviderConfig, d Defaults) BaseProviderConfig {
	apiKey := cfg.String(config.KeyAPIKey, "")
	if apiKey == "" && d.APIKeyEnv != "" {
		apiKey = os.Getenv(d.APIKeyEnv)
	}
	return BaseProviderConfig{
		APIKey:     apiKey,
		BaseURL:    cfg.String(config.KeyBackendURL, d.BaseURL),
		DeepModel:  cfg.String(config.KeyDeepThinkLLM, d.DeepModel),
		QuickModel: cfg.String(config.KeyQuickThinkLLM, d.QuickModel),
		Timeout:    cfg.Duration(config.KeyTimeout, 0),
	}
}
