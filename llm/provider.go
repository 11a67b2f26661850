package llm

import (
	"context"
	"fmt"
)

// NewProviderError wraps an error with an operation label, matching the
// helper.NewError convention used throughout the rest of the engine without
// introducing a dependency from llm on helper.
func NewProviderError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewChatClient builds the configured chat backend.
func NewChatClient(ctx context.Context, cfg Config) (ChatClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "genai":
		return NewGenaiClient(ctx, cfg)
	case "":
		return nil, fmt.Errorf("llm chat provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm chat provider: %s", cfg.Provider)
	}
}

// NewEmbeddingClient builds the configured embedding backend. Anthropic has
// no embedding endpoint and is rejected here.
func NewEmbeddingClient(ctx context.Context, cfg Config) (EmbeddingClient, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "genai":
		return NewGenaiClient(ctx, cfg)
	case "hugot":
		return NewHugotEmbeddingClient(cfg)
	case "":
		return nil, fmt.Errorf("llm embedding provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm embedding provider: %s", cfg.Provider)
	}
}
