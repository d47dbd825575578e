package embedding

import (
	"os"
	"time"

	"github.com/mygamer123/tradingagents/config"
)

const (
	// DefaultOpenAIBaseURL is the hosted OpenAI API root.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultOllamaBaseURL is the local Ollama OpenAI-compatible root.
	DefaultOllamaBaseURL = "http://localhost:11434/v1"

	// DefaultOpenAIModel is used against the hosted API.
	DefaultOpenAIModel = "text-embedding-3-small"
	// DefaultLocalModel is used against a local Ollama endpoint.
	DefaultLocalModel = "nomic-embed-text"
)

// OpenAIConfig configures an OpenAI-compatible embedding provider.
type OpenAIConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// openAIConfigFrom reads cfg. The embedding_* keys take precedence over the
// shared LLM keys so a caller can point embeddings elsewhere.
func openAIConfigFrom(cfg config.ProviderConfig, defaultBaseURL, apiKeyEnv string) OpenAIConfig {
	baseURL := cfg.String(config.KeyEmbeddingBackendURL, cfg.String(config.KeyBackendURL, defaultBaseURL))

	apiKey := cfg.String(config.KeyEmbeddingAPIKey, cfg.String(config.KeyAPIKey, ""))
	if apiKey == "" && apiKeyEnv != "" {
		apiKey = os.Getenv(apiKeyEnv)
	}

	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   cfg.String(config.KeyEmbeddingModel, defaultModelFor(baseURL)),
		Timeout: cfg.Duration(config.KeyTimeout, 0),
	}
}

// defaultModelFor picks the local model when baseURL is the Ollama endpoint.
func defaultModelFor(baseURL string) string {
	if baseURL == DefaultOllamaBaseURL {
		return DefaultLocalModel
	}
	return DefaultOpenAIModel
}
