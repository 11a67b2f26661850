package extract

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuyuqiaoe/local-hirag/llm"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// perChunkChat routes Complete calls by which chunk's extraction prompt is
// active, so a pipeline test can script different records per chunk without
// depending on goroutine scheduling order.
type perChunkChat struct {
	entityResponses   map[string]string // keyed by chunk page content
	relationResponses map[string]string
}

func (c *perChunkChat) Complete(_ context.Context, systemPrompt string, userPrompt string, _ ...llm.Turn) (string, error) {
	responses := c.entityResponses
	if containsText(systemPrompt, "relationship") {
		responses = c.relationResponses
	}
	for text, resp := range responses {
		if containsText(userPrompt, text) {
			return resp, nil
		}
	}
	return "", nil
}

func containsText(haystack, needle string) bool {
	return len(needle) > 0 && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// stubSummarizer deterministically folds descriptions so merge output is
// exactly reproducible in assertions.
type stubSummarizer struct{ calls int }

func (s *stubSummarizer) SummarizeEntity(_ context.Context, _ string, descriptions []string) (string, error) {
	s.calls++
	sorted := append([]string(nil), descriptions...)
	sort.Strings(sorted)
	out := sorted[0]
	for _, d := range sorted[1:] {
		out += "+" + d
	}
	return out, nil
}

func TestPipeline_EntityDedupAcrossChunks(t *testing.T) {
	file := model.NewFile("doc", model.ContentTypeText, "f.txt", "file:///f.txt", false)
	c1 := model.NewChunk("chunk one acme", 0, file.ID, file.Metadata)
	c2 := model.NewChunk("chunk two acme", 1, file.ID, file.Metadata)

	chat := &perChunkChat{
		entityResponses: map[string]string{
			"chunk one acme": `("entity"<|>ACME<|>ORG<|>A)<|COMPLETE|>`,
			"chunk two acme": `("entity"<|>ACME<|>ORG<|>B)<|COMPLETE|>`,
		},
	}
	entityX := NewEntityExtractor(chat, nil, 0)
	relationX := NewRelationExtractor(chat, 0, nil)
	summarizer := &stubSummarizer{}
	p := NewPipeline(entityX, relationX, summarizer)

	entities, _, err := p.Run(context.Background(), []*model.Chunk{c1, c2})
	require.NoError(t, err)
	require.Len(t, entities, 1)

	merged := entities[0]
	assert.Equal(t, "ACME", merged.PageContent)
	assert.ElementsMatch(t, []string{c1.ID, c2.ID}, merged.ChunkIDs())
	assert.Equal(t, "A+B", merged.Description())
	assert.Equal(t, 1, summarizer.calls)
}

func TestPipeline_RelationEndpointResolution(t *testing.T) {
	file := model.NewFile("doc", model.ContentTypeText, "f.txt", "file:///f.txt", false)
	c1 := model.NewChunk("chunk with x and y", 0, file.ID, file.Metadata)

	chat := &perChunkChat{
		entityResponses: map[string]string{
			"chunk with x and y": `("entity"<|>X<|>ORG<|>desc x)##("entity"<|>Y<|>ORG<|>desc y)<|COMPLETE|>`,
		},
		relationResponses: map[string]string{
			"chunk with x and y": `("relationship"<|>X<|>Z<|>a relation to Z)<|COMPLETE|>`,
		},
	}
	entityX := NewEntityExtractor(chat, nil, 0)
	relationX := NewRelationExtractor(chat, 0, nil)
	p := NewPipeline(entityX, relationX, &stubSummarizer{})

	entities, relations, err := p.Run(context.Background(), []*model.Chunk{c1})
	require.NoError(t, err)
	assert.Len(t, entities, 2)
	assert.Empty(t, relations)
}
