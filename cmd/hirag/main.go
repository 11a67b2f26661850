// Command hirag wires the engine's collaborators together and exposes the
// tool server over stdin/stdout.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/liuyuqiaoe/local-hirag/chunker"
	"github.com/liuyuqiaoe/local-hirag/extract"
	"github.com/liuyuqiaoe/local-hirag/graph"
	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/llm"
	"github.com/liuyuqiaoe/local-hirag/loader"
	"github.com/liuyuqiaoe/local-hirag/orchestrator"
	"github.com/liuyuqiaoe/local-hirag/toolserver"
	"github.com/liuyuqiaoe/local-hirag/vectorstore"
)

const (
	defaultGraphPath      = "kb/hirag.gpickle"
	defaultChunkSize      = 1200
	defaultChunkOverlap   = 200
	defaultTopK           = 10
	defaultConversionBase = "" // set via HIRAG_CONVERSION_BASE_URL
)

func main() {
	log := slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))

	if err := run(log); err != nil {
		log.Error("hirag exited with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	if err := helper.LoadDotEnv(""); err != nil {
		return err
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return err
	}
	providerConfig, err := helper.NewProviderConfiguration()
	if err != nil {
		return err
	}

	db := helper.NewDatabase("hirag", dbConfig, log)

	ctx := context.Background()

	chatClient, err := llm.NewChatClient(ctx, llm.Config{
		Provider: providerConfig.ChatProvider,
		Model:    providerConfig.ChatModel,
		APIKey:   providerConfig.ChatAPIKey,
		BaseURL:  providerConfig.ChatBaseURL,
	})
	if err != nil {
		return helper.NewError("build chat client", err)
	}

	embeddingClient, err := llm.NewEmbeddingClient(ctx, llm.Config{
		Provider: providerConfig.EmbeddingProvider,
		Model:    providerConfig.EmbeddingModel,
		APIKey:   providerConfig.EmbeddingAPIKey,
		BaseURL:  providerConfig.EmbeddingBaseURL,
	})
	if err != nil {
		return helper.NewError("build embedding client", err)
	}

	vectors := vectorstore.New(db, embeddingClient, nil)

	graphPath := envOr("HIRAG_GRAPH_PATH", defaultGraphPath)
	g, err := graph.Load(graphPath)
	if err != nil {
		return helper.NewError("load graph", err)
	}

	entityX := extract.NewEntityExtractor(chatClient, nil, 0)
	relationX := extract.NewRelationExtractor(chatClient, 0, log)
	summarizer := extract.NewSummarizer(chatClient)
	pipeline := extract.NewPipeline(entityX, relationX, summarizer)

	c, err := chunker.New(defaultChunkSize, defaultChunkOverlap, nil)
	if err != nil {
		return helper.NewError("build chunker", err)
	}

	conversionClient := loader.NewConversionClient(envOr("HIRAG_CONVERSION_BASE_URL", defaultConversionBase))
	registry := loader.NewRegistry(conversionClient)

	cfg := orchestrator.DefaultConfig(graphPath)
	orch := orchestrator.New(registry, c, vectors, g, pipeline, cfg, log)

	server := toolserver.New(orch, defaultTopK)
	return toolserver.Serve(ctx, server, os.Stdin, os.Stdout, log)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
