package llm

import (
	"context"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements ChatClient over the Anthropic Messages API.
// Anthropic has no first-party embedding endpoint, so it never satisfies
// EmbeddingClient.
type AnthropicClient struct {
	sdk   anthropic.Client
	model string
}

func NewAnthropicClient(cfg Config) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	return &AnthropicClient{
		sdk:   anthropic.NewClient(opts...),
		model: model,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string, history ...Turn) (string, error) {
	var out string
	err := withRetry(ctx, func() error {
		messages := make([]anthropic.MessageParam, 0, len(history)+1)
		for _, turn := range history {
			if turn.Role == RoleAssistant {
				messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
			} else {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
			}
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)))

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 4096,
			Messages:  messages,
		}
		if systemPrompt != "" {
			params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
		}
		resp, err := c.sdk.Messages.New(ctx, params)
		if err != nil {
			return err
		}
		var sb strings.Builder
		for _, block := range resp.Content {
			if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
				sb.WriteString(tb.Text)
			}
		}
		out = sb.String()
		return nil
	})
	return out, err
}
