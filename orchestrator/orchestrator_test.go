package orchestrator

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/liuyuqiaoe/local-hirag/chunker"
	"github.com/liuyuqiaoe/local-hirag/extract"
	"github.com/liuyuqiaoe/local-hirag/graph"
	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/llm"
	"github.com/liuyuqiaoe/local-hirag/loader"
	"github.com/liuyuqiaoe/local-hirag/model"
	"github.com/liuyuqiaoe/local-hirag/vectorstore"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

type stubEmbedder struct{ dims int }

func (s stubEmbedder) Dimensions() int { return s.dims }

func (s stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, s.dims)
		for j := range vec {
			vec[j] = float32(len(t)+j) / 100
		}
		out[i] = vec
	}
	return out, nil
}

// fixedChat always emits one entity and one relation for any chunk it sees,
// regardless of prompt content, so insert tests don't depend on wording.
type fixedChat struct{}

func (fixedChat) Complete(_ context.Context, systemPrompt, _ string, _ ...llm.Turn) (string, error) {
	if containsSub(systemPrompt, "relationship") {
		return `("relationship"<|>ACME<|>WILE E<|>ACME sells anvils to Wile E<|>0.9)<|COMPLETE|>`, nil
	}
	return `("entity"<|>ACME<|>ORG<|>A maker of anvils)##` +
		`("entity"<|>WILE E<|>PERSON<|>A persistent customer)<|COMPLETE|>`, nil
}

func containsSub(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)
	db := helper.NewTestDatabase(dbConfig)

	store := vectorstore.New(db, stubEmbedder{dims: 8}, nil)
	g := graph.New()

	chat := fixedChat{}
	entityX := extract.NewEntityExtractor(chat, nil, 0)
	relationX := extract.NewRelationExtractor(chat, 0, nil)
	summarizer := extract.NewSummarizer(chat)
	pipeline := extract.NewPipeline(entityX, relationX, summarizer)

	c, err := chunker.New(1000, 0, nil)
	require.NoError(t, err)

	reg := loader.NewRegistry(loader.NewConversionClient("http://unused.invalid"))

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "graph.gob"))
	return New(reg, c, store, g, pipeline, cfg, slog.New(slog.DiscardHandler))
}

func TestInsert_IndexesChunksAndGraph(t *testing.T) {
	o := newTestOrchestrator(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "acme.txt")
	require.NoError(t, os.WriteFile(path, []byte("ACME sells anvils to Wile E Coyote."), 0o644))

	err := o.Insert(context.Background(), path, model.ContentTypeTXT, nil, true)
	require.NoError(t, err)

	assert.Equal(t, 2, o.Graph.NodeCount())

	acmeID := model.ContentID(model.EntityPrefix, "ACME")
	node, ok := o.Graph.QueryNode(acmeID)
	require.True(t, ok)
	assert.Equal(t, "A maker of anvils", node.Description())

	neighbors, relations := o.Graph.QueryOneHop(acmeID)
	require.Len(t, neighbors, 1)
	require.Len(t, relations, 1)
	assert.Equal(t, "WILE E", neighbors[0].PageContent)

	_, err = os.Stat(o.Cfg.GraphPath)
	assert.NoError(t, err)
}

func TestQueryAll_ReturnsFourRankedLists(t *testing.T) {
	o := newTestOrchestrator(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "acme.txt")
	require.NoError(t, os.WriteFile(path, []byte("ACME sells anvils to Wile E Coyote."), 0o644))
	require.NoError(t, o.Insert(context.Background(), path, model.ContentTypeTXT, nil, true))

	result, err := o.QueryAll(context.Background(), "anvils", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Chunks)
	assert.NotEmpty(t, result.Entities)
}
