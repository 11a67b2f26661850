package llm

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"

	"github.com/liuyuqiaoe/local-hirag/helper"
)

// HugotEmbeddingClient runs a local sentence-transformer ONNX model for
// embeddings, avoiding a hosted-provider dependency when one isn't wanted.
type HugotEmbeddingClient struct {
	session  *hugot.Session
	pipeline *hugot.FeatureExtractionPipeline
	dims     int
}

const defaultHugotModel = "sentence-transformers/all-MiniLM-L6-v2"

func NewHugotEmbeddingClient(cfg Config) (*HugotEmbeddingClient, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultHugotModel
	}
	modelPath, err := helper.PrepareModel(modelName, "")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create hugot session", err)
	}

	pipelineConfig := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "hirag-embedder",
	}
	pipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		_ = session.Destroy()
		return nil, helper.NewError("create feature extraction pipeline", err)
	}

	return &HugotEmbeddingClient{session: session, pipeline: pipeline, dims: 384}, nil
}

func (c *HugotEmbeddingClient) Dimensions() int { return c.dims }

func (c *HugotEmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, helper.NewError("run hugot embedding pipeline", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, helper.NewError("run hugot embedding pipeline", fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings)))
	}
	return result.Embeddings, nil
}

// Close releases the underlying ONNX session.
func (c *HugotEmbeddingClient) Close() error {
	return c.session.Destroy()
}
