package llm

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Tier selects one of the two model slots every LLM provider exposes.
type Tier string

const (
	TierDeep  Tier = "deep"
	TierQuick Tier = "quick"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	TraceID     string            `json:"trace_id"`
	Model       string            `json:"model,omitempty"` // overrides the handle's model
	Messages    []Message         `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float32           `json:"temperature,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

type ChatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason,omitempty"`
	Message      Message `json:"message"`
}

type ChatResponse struct {
	ID        string       `json:"id,omitempty"`
	TraceID   string       `json:"trace_id,omitempty"`
	Provider  string       `json:"provider,omitempty"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     ChatUsage    `json:"usage,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// Text returns the content of the first choice, or "".
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ChatModel is a chat handle bound to one model. Building a handle does no
// I/O; Completion is the only call that reaches the vendor.
type ChatModel interface {
	// Completion sends a non-streaming chat request.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ModelName returns the model identifier the handle is bound to.
	ModelName() string

	// Provider returns the name of the provider that built the handle.
	Provider() string
}

// Provider is the LLM capability family.
type Provider interface {
	// Name returns the provider's registry key.
	Name() string

	// DeepThinkingLLM returns the handle used for long-form reasoning.
	DeepThinkingLLM() (ChatModel, error)

	// QuickThinkingLLM returns the handle used for fast, cheap calls.
	QuickThinkingLLM() (ChatModel, error)
}

// ModelFor returns p's handle for tier.
func ModelFor(p Provider, tier Tier) (ChatModel, error) {
	if Tier(strings.ToLower(string(tier))) == TierQuick {
		return p.QuickThinkingLLM()
	}
	return p.DeepThinkingLLM()
}

// NewTraceID returns a fresh request trace id.
func NewTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID fills req.TraceID when it is empty.
func EnsureTraceID(req *ChatRequest) {
	if req != nil && req.TraceID == "" {
		req.TraceID = NewTraceID()
	}
}
