package llm

import (
	"context"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient implements both ChatClient and EmbeddingClient over the
// OpenAI-compatible chat-completions and embeddings endpoints.
type OpenAIClient struct {
	sdk        openai.Client
	model      string
	embedModel string
	dimensions int
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIClient{
		sdk:        openai.NewClient(opts...),
		model:      model,
		embedModel: string(openai.EmbeddingModelTextEmbedding3Small),
		dimensions: 1536,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string, history ...Turn) (string, error) {
	var out string
	err := withRetry(ctx, func() error {
		messages := []openai.ChatCompletionMessageParamUnion{}
		if systemPrompt != "" {
			messages = append(messages, openai.SystemMessage(systemPrompt))
		}
		for _, turn := range history {
			if turn.Role == RoleAssistant {
				messages = append(messages, openai.AssistantMessage(turn.Content))
			} else {
				messages = append(messages, openai.UserMessage(turn.Content))
			}
		}
		messages = append(messages, openai.UserMessage(userPrompt))

		resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    c.model,
			Messages: messages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) > 0 {
			out = resp.Choices[0].Message.Content
		}
		return nil
	})
	return out, err
}

func (c *OpenAIClient) Dimensions() int { return c.dimensions }

func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := withRetry(ctx, func() error {
		resp, err := c.sdk.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: c.embedModel,
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		})
		if err != nil {
			return err
		}
		out = make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			vec := make([]float32, len(d.Embedding))
			for j, v := range d.Embedding {
				vec[j] = float32(v)
			}
			out[i] = vec
		}
		return nil
	})
	return out, err
}
