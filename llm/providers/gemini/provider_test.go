package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_VendorDefaults(t *testing.T) {
	p, err := New(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", p.cfg.BaseURL)

	deep, _ := p.DeepThinkingLLM()
	quick, _ := p.QuickThinkingLLM()
	assert.Equal(t, "gemini-2.5-pro", deep.ModelName())
	assert.Equal(t, "gemini-2.5-flash", quick.ModelName())
}

func TestProvider_Completion(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		fmt.Fprint(w, `{
			"responseId": "r-1",
			"modelVersion": "gemini-2.5-flash-001",
			"candidates": [{"index":0,"finishReason":"STOP","content":{"role":"model","parts":[{"text":"Neutral"}]}}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 1, "totalTokenCount": 4}
		}`)
	}))
	t.Cleanup(server.Close)

	p, err := New(config.ProviderConfig{
		config.KeyBackendURL: server.URL + "/v1beta",
		config.KeyAPIKey:     "g-key",
	}, nil)
	require.NoError(t, err)

	quick, _ := p.QuickThinkingLLM()
	resp, err := quick.Completion(context.Background(), &llm.ChatRequest{
		MaxTokens: 64,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Be terse."},
			{Role: llm.RoleUser, Content: "MSFT?"},
			{Role: llm.RoleAssistant, Content: "Hmm."},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "Be terse.", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 2)
	assert.Equal(t, "model", got.Contents[1].Role)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, 64, got.GenerationConfig.MaxOutputTokens)

	assert.Equal(t, "Neutral", resp.Text())
	assert.Equal(t, "gemini-2.5-flash-001", resp.Model)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
}

func TestProvider_Completion_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	}))
	t.Cleanup(server.Close)

	p, _ := New(config.ProviderConfig{config.KeyBackendURL: server.URL}, nil)
	deep, _ := p.DeepThinkingLLM()
	_, err := deep.Completion(context.Background(), nil)
	require.Error(t, err)

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ReasonForbidden, e.Reason)
	assert.Contains(t, e.Message, "API key not valid")
}
