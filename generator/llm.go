package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProvider = errors.New("llm provider not supported")
	ErrMissingAPIKey   = errors.New("llm api key missing")
	ErrNoChoices       = errors.New("llm returned no choices")
)

// LLMClient abstracts the model provider so it can be swapped or mocked.
type LLMClient interface {
	// Complete issues one plain completion and returns the raw text.
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// Converse sends a conversation with callable tools and returns the model's next turn.
	Converse(ctx context.Context, conv Conversation, tools []ToolSpec) (Reply, error)
}

// Conversation is the running message list of an agent turn.
type Conversation struct {
	System   string
	Messages []Message
}

// Reply is one model turn. A reply with ToolCalls asks the caller to run them.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolSpec describes a callable function to the model. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// LLMSettings is the provider-independent configuration.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLM builds the client for settings.Provider.
func NewLLM(ctx context.Context, s LLMSettings) (LLMClient, error) {
	switch strings.ToLower(s.Provider) {
	case "", "gemini":
		return NewGeminiLLM(ctx, &s)
	case "openai":
		return NewOpenAILLMFromConfig(&s)
	case "deepseek":
		// DeepSeek speaks the OpenAI protocol but has no default endpoint in the SDK.
		if s.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLMFromConfig(&s)
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, s.Provider)
	}
}
