package llm

import (
	"context"
	"strings"

	genai "google.golang.org/genai"
)

// GenaiClient implements both ChatClient and EmbeddingClient over Google's
// Gemini API.
type GenaiClient struct {
	client     *genai.Client
	model      string
	embedModel string
	dimensions int
}

func NewGenaiClient(ctx context.Context, cfg Config) (*GenaiClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(base, "/") + "/"}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, NewProviderError("init genai client", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GenaiClient{
		client:     client,
		model:      model,
		embedModel: "text-embedding-004",
		dimensions: 768,
	}, nil
}

func (c *GenaiClient) Complete(ctx context.Context, systemPrompt, userPrompt string, history ...Turn) (string, error) {
	var out string
	err := withRetry(ctx, func() error {
		var config *genai.GenerateContentConfig
		if systemPrompt != "" {
			config = &genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			}
		}
		contents := make([]*genai.Content, 0, len(history)+1)
		for _, turn := range history {
			role := genai.RoleUser
			if turn.Role == RoleAssistant {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(turn.Content, role))
		}
		contents = append(contents, genai.NewContentFromText(userPrompt, genai.RoleUser))

		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			return err
		}
		out = resp.Text()
		return nil
	})
	return out, err
}

func (c *GenaiClient) Dimensions() int { return c.dimensions }

func (c *GenaiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := withRetry(ctx, func() error {
		contents := make([]*genai.Content, len(texts))
		for i, t := range texts {
			contents[i] = genai.NewContentFromText(t, genai.RoleUser)
		}
		resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, contents, nil)
		if err != nil {
			return err
		}
		out = make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			out[i] = e.Values
		}
		return nil
	})
	return out, err
}
