package graph

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuyuqiaoe/local-hirag/model"
)

// stubSummarizer deterministically folds descriptions by sorting and joining
// them, so concurrent-merge outcomes are exactly reproducible in assertions.
type stubSummarizer struct {
	calls atomic.Int32
}

func (s *stubSummarizer) SummarizeEntity(_ context.Context, _ string, descriptions []string) (string, error) {
	s.calls.Add(1)
	unique := map[string]bool{}
	var out []string
	for _, d := range descriptions {
		if !unique[d] {
			unique[d] = true
			out = append(out, d)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j] < out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return strings.Join(out, "+"), nil
}

func newEntity(id, name, description string) model.Entity {
	return model.Entity{
		ID:          id,
		PageContent: name,
		Metadata: model.Metadata{
			"entity_type": "ORG",
			"description": description,
			"chunk_ids":   []string{},
		},
	}
}

func TestUpsertNode_NewNode(t *testing.T) {
	g := New()
	sum := &stubSummarizer{}
	e := newEntity("ent-1", "ACME", "A")

	err := g.UpsertNode(context.Background(), e, sum)
	require.NoError(t, err)

	stored, ok := g.QueryNode("ent-1")
	require.True(t, ok)
	assert.Equal(t, "A", stored.Description())
	assert.Equal(t, int32(0), sum.calls.Load())
}

func TestUpsertNode_ConcurrentMergeIsDeterministic(t *testing.T) {
	g := New()
	sum := &stubSummarizer{}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = g.UpsertNode(context.Background(), newEntity("ent-k", "ACME", "D1"), sum)
	}()
	go func() {
		defer wg.Done()
		_ = g.UpsertNode(context.Background(), newEntity("ent-k", "ACME", "D2"), sum)
	}()
	wg.Wait()

	stored, ok := g.QueryNode("ent-k")
	require.True(t, ok)
	assert.Equal(t, "D1+D2", stored.Description())
	assert.LessOrEqual(t, sum.calls.Load(), int32(2))
}

func TestUpsertRelation_EndpointsAlwaysPresent(t *testing.T) {
	g := New()
	sum := &stubSummarizer{}

	source := newEntity("ent-u", "U", "desc-u")
	target := newEntity("ent-h", "H", "desc-h")
	rel, ok := model.NewRelation(source, target, "relates to", 1.0, "chunk-1")
	require.True(t, ok)

	require.NoError(t, g.UpsertRelation(context.Background(), *rel, sum))

	for _, id := range []string{"ent-u", "ent-h"} {
		n, ok := g.QueryNode(id)
		require.True(t, ok)
		assert.NotEmpty(t, n.Description())
	}
}

func TestUpsertRelation_SelfLoopRejectedUpstream(t *testing.T) {
	e := newEntity("ent-x", "X", "desc")
	_, ok := model.NewRelation(e, e, "self", 1.0, "chunk-1")
	assert.False(t, ok)
}

// TestQueryOneHop_UnionOfInAndOutEdges builds the fixture graph
// {(U,H),(H,I),(U,I),(I,P),(P,U)} and checks that query_one_hop("P") returns
// the union of outgoing targets and incoming sources, each edge once.
func TestQueryOneHop_UnionOfInAndOutEdges(t *testing.T) {
	g := New()
	sum := &stubSummarizer{}
	ctx := context.Background()

	u := newEntity("ent-u", "U", "u")
	h := newEntity("ent-h", "H", "h")
	i := newEntity("ent-i", "I", "i")
	p := newEntity("ent-p", "P", "p")

	edges := [][2]model.Entity{{u, h}, {h, i}, {u, i}, {i, p}, {p, u}}
	for _, pair := range edges {
		rel, ok := model.NewRelation(pair[0], pair[1], "edge", 1.0, "chunk-1")
		require.True(t, ok)
		require.NoError(t, g.UpsertRelation(ctx, *rel, sum))
	}

	neighbors, relations := g.QueryOneHop("ent-p")

	var neighborIDs []string
	for _, n := range neighbors {
		neighborIDs = append(neighborIDs, n.ID)
	}
	// P -> U (outgoing) and I -> P (incoming) => neighbors {U, I}
	assert.ElementsMatch(t, []string{"ent-u", "ent-i"}, neighborIDs)
	assert.Len(t, relations, 2)
}

func TestDumpLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/graph.gob"

	g := New()
	sum := &stubSummarizer{}
	ctx := context.Background()

	rel, ok := model.NewRelation(newEntity("ent-a", "A", "desc-a"), newEntity("ent-b", "B", "desc-b"), "rel", 2.0, "chunk-1")
	require.True(t, ok)
	require.NoError(t, g.UpsertRelation(ctx, *rel, sum))
	require.NoError(t, g.Dump(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, g.AllNodeIDs(), loaded.AllNodeIDs())
	neighborsBefore, relationsBefore := g.QueryOneHop("ent-a")
	neighborsAfter, relationsAfter := loaded.QueryOneHop("ent-a")
	assert.Equal(t, neighborsBefore, neighborsAfter)
	assert.Equal(t, relationsBefore, relationsAfter)
}

func TestLoad_MissingPathReturnsEmptyGraph(t *testing.T) {
	g, err := Load("/nonexistent/path/graph.gob")
	require.NoError(t, err)
	assert.Equal(t, 0, g.NodeCount())
}
