package providers

import (
	"io"
	"time"

	"github.com/mygamer123/tradingagents/internal/httpx"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/types"
)

// MapHTTPError maps a vendor HTTP status to an ADAPTER_FAILURE.
// Shared by every LLM and embedding adapter.
func MapHTTPError(status int, msg string, provider string) *types.Error {
	return types.FromHTTPStatus(provider, status, msg)
}

// ReadErrorMessage reads the vendor error message from a response body.
func ReadErrorMessage(body io.Reader) string {
	return httpx.ReadErrorMessage(body)
}

// TransportError wraps a failed round trip.
func TransportError(provider string, err error) *types.Error {
	return types.FromTransport(provider, err)
}

// RequestError wraps a request that could not be encoded or built.
func RequestError(provider, msg string, err error) *types.Error {
	return types.AdapterFailure(provider, types.ReasonInvalidRequest, msg).WithCause(err)
}

// DecodeError wraps an undecodable vendor response.
func DecodeError(provider string, err error) *types.Error {
	return types.AdapterFailure(provider, types.ReasonDecode, "failed to decode response").
		WithCause(err)
}

// ChooseModel picks the request model, then the handle model, then fallback.
func ChooseModel(req *llm.ChatRequest, handleModel, fallbackModel string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	if handleModel != "" {
		return handleModel
	}
	return fallbackModel
}

// OpenAI-compatible wire types, shared by openai, openrouter and ollama.

type OpenAICompatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAICompatRequest struct {
	Model       string                `json:"model"`
	Messages    []OpenAICompatMessage `json:"messages"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
	Temperature float32               `json:"temperature,omitempty"`
	Stop        []string              `json:"stop,omitempty"`
	User        string                `json:"user,omitempty"`
}

type OpenAICompatChoice struct {
	Index        int                 `json:"index"`
	FinishReason string              `json:"finish_reason"`
	Message      OpenAICompatMessage `json:"message"`
}

type OpenAICompatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type OpenAICompatResponse struct {
	ID      string               `json:"id"`
	Model   string               `json:"model"`
	Choices []OpenAICompatChoice `json:"choices"`
	Usage   *OpenAICompatUsage   `json:"usage,omitempty"`
	Created int64                `json:"created,omitempty"`
}

// ConvertMessagesToOpenAI converts llm messages to the OpenAI wire format.
func ConvertMessagesToOpenAI(msgs []llm.Message) []OpenAICompatMessage {
	out := make([]OpenAICompatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, OpenAICompatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// ToLLMChatResponse converts an OpenAI-compatible response.
func ToLLMChatResponse(oa OpenAICompatResponse, provider string) *llm.ChatResponse {
	choices := make([]llm.ChatChoice, 0, len(oa.Choices))
	for _, c := range oa.Choices {
		choices = append(choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: c.FinishReason,
			Message:      llm.Message{Role: llm.RoleAssistant, Content: c.Message.Content},
		})
	}
	resp := &llm.ChatResponse{
		ID:       oa.ID,
		Provider: provider,
		Model:    oa.Model,
		Choices:  choices,
	}
	if oa.Usage != nil {
		resp.Usage = llm.ChatUsage{
			PromptTokens:     oa.Usage.PromptTokens,
			CompletionTokens: oa.Usage.CompletionTokens,
			TotalTokens:      oa.Usage.TotalTokens,
		}
	}
	if oa.Created != 0 {
		resp.CreatedAt = time.Unix(oa.Created, 0)
	}
	return resp
}
