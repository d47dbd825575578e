package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/mygamer123/tradingagents/internal/httpx"
	"github.com/mygamer123/tradingagents/types"
)

// BaseProvider holds the HTTP plumbing shared by embedding providers.
type BaseProvider struct {
	name    string
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// BaseConfig is the common configuration of a BaseProvider.
type BaseConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewBaseProvider creates a base provider. No network I/O happens here.
func NewBaseProvider(cfg BaseConfig) *BaseProvider {
	return &BaseProvider{
		name:    cfg.Name,
		client:  httpx.NewClient(cfg.Timeout),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

func (p *BaseProvider) Name() string               { return p.name }
func (p *BaseProvider) EmbeddingModelName() string { return p.model }

// EmbedQuery embeds a single string through embedFn.
func (p *BaseProvider) EmbedQuery(ctx context.Context, query string, embedFn func(context.Context, *EmbeddingRequest) (*EmbeddingResponse, error)) ([]float64, error) {
	resp, err := embedFn(ctx, &EmbeddingRequest{Input: []string{query}})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, types.AdapterFailure(p.name, types.ReasonDecode, "no embeddings returned")
	}
	return resp.Embeddings[0].Embedding, nil
}

// DoRequest sends a JSON request and returns the body of a successful response.
// Failures come back as ADAPTER_FAILURE.
func (p *BaseProvider) DoRequest(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, types.AdapterFailure(p.name, types.ReasonInvalidRequest, "failed to marshal request").WithCause(err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, httpx.Endpoint(p.baseURL, path), reqBody)
	if err != nil {
		return nil, types.AdapterFailure(p.name, types.ReasonInvalidRequest, "failed to create request").WithCause(err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, types.FromTransport(p.name, err)
	}
	defer httpx.CloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		return nil, types.FromHTTPStatus(p.name, resp.StatusCode, httpx.ReadErrorMessage(resp.Body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.FromTransport(p.name, err)
	}
	return respBody, nil
}

// ChooseModel selects the request model, then the provider default, then fallback.
func ChooseModel(reqModel, defaultModel, fallback string) string {
	if reqModel != "" {
		return reqModel
	}
	if defaultModel != "" {
		return defaultModel
	}
	return fallback
}
