package helper

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ProviderConfiguration holds connection details for the chat and embedding
// backends, following the same env-var-driven shape as DatabaseConfiguration.
type ProviderConfiguration struct {
	ChatProvider string // "anthropic", "openai", "genai"
	ChatModel    string
	ChatAPIKey   string
	ChatBaseURL  string

	EmbeddingProvider string // "openai", "genai", "hugot"
	EmbeddingModel    string
	EmbeddingAPIKey   string
	EmbeddingBaseURL  string

	QueryTimeout time.Duration
}

// LoadDotEnv loads a .env file into the process environment if present.
// Missing files are not an error: production deployments set real env vars.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return NewError("load dotenv", godotenv.Load(path))
}

// NewProviderConfiguration reads ProviderConfiguration from the environment.
func NewProviderConfiguration() (*ProviderConfiguration, error) {
	chatProvider := os.Getenv("HIRAG_CHAT_PROVIDER")
	embeddingProvider := os.Getenv("HIRAG_EMBEDDING_PROVIDER")
	if chatProvider == "" || embeddingProvider == "" {
		return nil, NewError("new provider configuration", fmt.Errorf("missing one of HIRAG_CHAT_PROVIDER, HIRAG_EMBEDDING_PROVIDER"))
	}

	timeout := 30 * time.Second
	if raw := os.Getenv("HIRAG_QUERY_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewError("parse HIRAG_QUERY_TIMEOUT_SECONDS", err)
		}
		timeout = time.Duration(secs) * time.Second
	}

	return &ProviderConfiguration{
		ChatProvider: chatProvider,
		ChatModel:    os.Getenv("HIRAG_CHAT_MODEL"),
		ChatAPIKey:   os.Getenv("HIRAG_CHAT_API_KEY"),
		ChatBaseURL:  os.Getenv("HIRAG_CHAT_BASE_URL"),

		EmbeddingProvider: embeddingProvider,
		EmbeddingModel:    os.Getenv("HIRAG_EMBEDDING_MODEL"),
		EmbeddingAPIKey:   os.Getenv("HIRAG_EMBEDDING_API_KEY"),
		EmbeddingBaseURL:  os.Getenv("HIRAG_EMBEDDING_BASE_URL"),

		QueryTimeout: timeout,
	}, nil
}
