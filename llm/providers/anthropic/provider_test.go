package anthropic

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
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	p, err := New(config.ProviderConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Name, p.Name())
	assert.Equal(t, "https://api.anthropic.com", p.cfg.BaseURL)
	assert.Equal(t, "env-key", p.cfg.APIKey)

	deep, _ := p.DeepThinkingLLM()
	quick, _ := p.QuickThinkingLLM()
	assert.Equal(t, "claude-sonnet-4-0", deep.ModelName())
	assert.Equal(t, "claude-3-5-haiku-latest", quick.ModelName())
	assert.Equal(t, Name, quick.Provider())
}

func TestProvider_Completion(t *testing.T) {
	var got claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ant-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		fmt.Fprint(w, `{
			"id": "msg_1",
			"role": "assistant",
			"model": "claude-sonnet-4-0",
			"stop_reason": "end_turn",
			"content": [{"type":"text","text":"Bullish "},{"type":"text","text":"on NVDA"}],
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`)
	}))
	t.Cleanup(server.Close)

	p, err := New(config.ProviderConfig{
		config.KeyBackendURL: server.URL,
		config.KeyAPIKey:     "ant-key",
	}, nil)
	require.NoError(t, err)

	deep, _ := p.DeepThinkingLLM()
	resp, err := deep.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are an analyst."},
			{Role: llm.RoleUser, Content: "NVDA?"},
			{Role: llm.RoleAssistant, Content: "Thinking."},
			{Role: llm.RoleUser, Content: "Well?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "You are an analyst.", got.System)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, "claude-sonnet-4-0", got.Model)

	assert.Equal(t, "Bullish on NVDA", resp.Text())
	assert.Equal(t, "end_turn", resp.Choices[0].FinishReason)
	assert.Equal(t, 14, resp.Usage.TotalTokens)
	assert.Equal(t, Name, resp.Provider)
}

func TestProvider_Completion_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason types.Reason
	}{
		{"unauthorized", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, types.ReasonUnauthorized},
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, types.ReasonModelOverloaded},
		{"credit", http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"Your credit balance is too low"}}`, types.ReasonQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			t.Cleanup(server.Close)

			p, _ := New(config.ProviderConfig{config.KeyBackendURL: server.URL}, nil)
			quick, _ := p.QuickThinkingLLM()
			_, err := quick.Completion(context.Background(), &llm.ChatRequest{})
			require.Error(t, err)

			e, ok := types.AsError(err)
			require.True(t, ok)
			assert.Equal(t, types.ErrAdapterFailure, e.Code)
			assert.Equal(t, tt.wantReason, e.Reason)
			assert.Equal(t, Name, e.Provider)
		})
	}
}
