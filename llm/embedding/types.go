// Package embedding provides the embedding capability family and its fallback resolver.
package embedding

import (
	"context"
	"time"
)

// EmbeddingRequest is a batch embedding request.
type EmbeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model,omitempty"` // overrides the provider model
}

// EmbeddingResponse is the response to an EmbeddingRequest.
type EmbeddingResponse struct {
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	Embeddings []EmbeddingData `json:"embeddings"`
	Usage      EmbeddingUsage  `json:"usage"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

// EmbeddingData is one embedding result.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingUsage is the token usage of an embedding request.
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Provider is the embedding capability family.
type Provider interface {
	// Name returns the provider's registry key.
	Name() string

	// Embedding returns the vector for text. Its length is fixed by the model.
	Embedding(ctx context.Context, text string) ([]float64, error)

	// EmbeddingModelName returns the model used by Embedding.
	EmbeddingModelName() string
}
