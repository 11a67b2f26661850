// Package llm provides the provider-agnostic chat and embedding contracts
// used by the extraction and retrieval pipelines, plus retry-wrapped
// implementations over Anthropic, OpenAI, and Gemini.
package llm

import "context"

// Role identifies which side of a conversation a Turn belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message in a multi-turn conversation, used to carry the
// "continue" gleaning passes forward with the context that produced them.
type Turn struct {
	Role    Role
	Content string
}

// ChatClient completes a prompt against a backing model, optionally
// continuing a prior conversation supplied as history (oldest first). It is
// the contract extract.Summarizer and the entity/relation extractors are
// built on; the gleaning loop relies on history so a "continue" turn
// actually continues the model's own prior output rather than starting
// fresh each pass.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, history ...Turn) (string, error)
}

// EmbeddingClient turns text into dense vectors for the vector store.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Config selects and parameterizes a provider-backed client.
type Config struct {
	Provider string // "anthropic", "openai", "genai", "hugot"
	Model    string
	APIKey   string
	BaseURL  string
}
