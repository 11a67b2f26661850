package vectorstore

import (
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/liuyuqiaoe/local-hirag/helper"
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

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)
	return helper.NewTestDatabase(dbConfig)
}

// stubEmbedder deterministically embeds text by its length, so queries for
// "similar" strings land near each other without a real provider.
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

func TestUpsertAndQuery_Chunks(t *testing.T) {
	db := initDB(t)
	store := New(db, stubEmbedder{dims: 8}, nil)
	ctx := context.Background()

	err := store.UpsertText(ctx, "alpha bravo charlie", "chunk-aaa", map[string]interface{}{
		"type": "text", "filename": "a.txt", "private": false, "chunk_idx": 0, "document_id": "doc-1",
	}, "chunks", ModeAppend)
	require.NoError(t, err)

	err = store.UpsertText(ctx, "delta echo foxtrot golf hotel", "chunk-bbb", map[string]interface{}{
		"type": "text", "filename": "b.txt", "private": true, "chunk_idx": 1, "document_id": "doc-1",
	}, "chunks", ModeAppend)
	require.NoError(t, err)

	hits, err := store.Query(ctx, "alpha bravo charlie", "chunks", QueryParams{
		TopK:              10,
		DistanceThreshold: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "chunk-aaa", hits[0].DocumentKey)
}

func TestUpsertText_OverwriteReplacesRow(t *testing.T) {
	db := initDB(t)
	store := New(db, stubEmbedder{dims: 8}, nil)
	ctx := context.Background()

	props := map[string]interface{}{
		"type": "text", "filename": "c.txt", "private": false, "chunk_idx": 0, "document_id": "doc-2",
	}
	require.NoError(t, store.UpsertText(ctx, "first version", "chunk-ccc", props, "chunks", ModeAppend))
	require.NoError(t, store.UpsertText(ctx, "second version", "chunk-ccc", props, "chunks", ModeOverwrite))

	hits, err := store.Query(ctx, "second version", "chunks", QueryParams{TopK: 10, DistanceThreshold: 100, DocumentList: []string{"chunk-ccc"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "second version", hits[0].Columns["text"])
}

func TestQuery_AccessFilter(t *testing.T) {
	db := initDB(t)
	store := New(db, stubEmbedder{dims: 8}, nil)
	ctx := context.Background()

	require.NoError(t, store.UpsertText(ctx, "public entry", "chunk-ddd", map[string]interface{}{
		"type": "text", "filename": "d.txt", "private": false, "chunk_idx": 0, "document_id": "doc-3",
	}, "chunks", ModeAppend))
	require.NoError(t, store.UpsertText(ctx, "private entry", "chunk-eee", map[string]interface{}{
		"type": "text", "filename": "e.txt", "private": true, "chunk_idx": 0, "document_id": "doc-3",
	}, "chunks", ModeAppend))

	hits, err := store.Query(ctx, "public entry", "chunks", QueryParams{
		TopK: 10, DistanceThreshold: 100, RequireAccess: "private",
	})
	require.NoError(t, err)
	for _, h := range hits {
		assert.Equal(t, "chunk-eee", h.DocumentKey)
	}
}
