package extract

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/liuyuqiaoe/local-hirag/graph"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// Concurrency caps per §4.5/§5. Configurable; these are the defaults that
// are part of the contract for reproducibility of ordering under fixed seeds.
const (
	DefaultEntityExtractConcurrency   = 4
	DefaultEntityMergeConcurrency     = 2
	DefaultRelationExtractConcurrency = 5
)

// Pipeline runs entity extraction, relation extraction, and cross-chunk
// entity merge over a document's chunks with the bounded fan-out §4.5/§5
// require.
type Pipeline struct {
	Entities  *EntityExtractor
	Relations *RelationExtractor
	Summarize graph.Summarizer

	EntityExtractConcurrency   int
	EntityMergeConcurrency     int
	RelationExtractConcurrency int
}

// NewPipeline builds a Pipeline with the default concurrency caps.
func NewPipeline(entities *EntityExtractor, relations *RelationExtractor, summarizer graph.Summarizer) *Pipeline {
	return &Pipeline{
		Entities:                   entities,
		Relations:                  relations,
		Summarize:                  summarizer,
		EntityExtractConcurrency:   DefaultEntityExtractConcurrency,
		EntityMergeConcurrency:     DefaultEntityMergeConcurrency,
		RelationExtractConcurrency: DefaultRelationExtractConcurrency,
	}
}

// chunkExtraction holds one chunk's raw (pre-merge) entities; Run builds the
// chunk's canonical-name dictionary from them for relation extraction.
type chunkExtraction struct {
	chunk    *model.Chunk
	entities []*model.Entity
}

// Run extracts entities for every chunk (bounded by EntityExtractConcurrency),
// then relations for every chunk using that chunk's own entity dictionary
// (bounded by RelationExtractConcurrency), then merges entities sharing a
// canonical name across chunks (bounded by EntityMergeConcurrency).
//
// Per §5's ordering guarantee, a document's chunks are independent of one
// another here; the caller is responsible for sequencing chunk-upsert before
// this runs and this output's upserts before the document is considered done.
func (p *Pipeline) Run(ctx context.Context, chunks []*model.Chunk) ([]*model.Entity, []*model.Relation, error) {
	extractions := make([]chunkExtraction, len(chunks))

	{
		eg, gctx := errgroup.WithContext(ctx)
		sem := make(chan struct{}, p.EntityExtractConcurrency)
		for i, chunk := range chunks {
			i, chunk := i, chunk
			eg.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()

				entities, err := p.Entities.Extract(gctx, chunk)
				if err != nil {
					return err
				}
				extractions[i] = chunkExtraction{chunk: chunk, entities: entities}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, nil, err
		}
	}

	relationsPerChunk := make([][]*model.Relation, len(chunks))
	{
		eg, gctx := errgroup.WithContext(ctx)
		sem := make(chan struct{}, p.RelationExtractConcurrency)
		for i, ex := range extractions {
			i, ex := i, ex
			eg.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()

				byName := make(map[string]*model.Entity, len(ex.entities))
				for _, e := range ex.entities {
					byName[e.PageContent] = e
				}
				relations, err := p.Relations.Extract(gctx, ex.chunk, byName)
				if err != nil {
					return err
				}
				relationsPerChunk[i] = relations
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, nil, err
		}
	}

	var allRelations []*model.Relation
	for _, rs := range relationsPerChunk {
		allRelations = append(allRelations, rs...)
	}

	var allEntities []*model.Entity
	for _, ex := range extractions {
		allEntities = append(allEntities, ex.entities...)
	}

	merged, err := p.mergeEntities(ctx, allEntities)
	if err != nil {
		return nil, nil, err
	}

	return merged, allRelations, nil
}

// mergeEntities groups extracted entities by canonical name. Singleton
// groups pass through unchanged; groups of size >= 2 merge their
// descriptions via the summarizer, union their chunk_ids, and pick the
// mode entity_type (ties broken by first occurrence), bounded by
// EntityMergeConcurrency.
func (p *Pipeline) mergeEntities(ctx context.Context, entities []*model.Entity) ([]*model.Entity, error) {
	groups := make(map[string][]*model.Entity)
	var order []string
	for _, e := range entities {
		if _, ok := groups[e.PageContent]; !ok {
			order = append(order, e.PageContent)
		}
		groups[e.PageContent] = append(groups[e.PageContent], e)
	}

	results := make([]*model.Entity, len(order))
	eg, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.EntityMergeConcurrency)

	for i, name := range order {
		i, name := i, name
		group := groups[name]
		if len(group) == 1 {
			results[i] = group[0]
			continue
		}

		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			merged, err := mergeGroup(gctx, name, group, p.Summarize)
			if err != nil {
				return err
			}
			results[i] = merged
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func mergeGroup(ctx context.Context, name string, group []*model.Entity, summarizer graph.Summarizer) (*model.Entity, error) {
	descSeen := make(map[string]bool)
	var descriptions []string
	var chunkIDs []string
	typeCounts := make(map[string]int)
	var typeOrder []string

	for _, e := range group {
		desc := e.Description()
		if desc != "" && !descSeen[desc] {
			descSeen[desc] = true
			descriptions = append(descriptions, desc)
		}
		chunkIDs = append(chunkIDs, e.ChunkIDs()...)
		typ := e.EntityType()
		if _, ok := typeCounts[typ]; !ok {
			typeOrder = append(typeOrder, typ)
		}
		typeCounts[typ]++
	}

	description := descriptions[0]
	if len(descriptions) > 1 {
		summary, err := summarizer.SummarizeEntity(ctx, name, descriptions)
		if err != nil {
			return nil, err
		}
		description = summary
	}

	entityType := modeType(typeOrder, typeCounts)
	merged := model.NewEntity(name, entityType, description, chunkIDs...)
	return merged, nil
}

func modeType(order []string, counts map[string]int) string {
	best := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

