package orchestrator

import (
	"context"
	"fmt"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
	"github.com/liuyuqiaoe/local-hirag/vectorstore"
)

// noCutoff is the distance_threshold §4.6 specifies for query_chunks and
// query_entities: large enough that nothing is excluded by distance alone,
// leaving ranking to topk and the pluggable reranker.
const noCutoff = 100

// QueryChunks runs a k-NN search over the chunks table and returns the raw
// chunk text of each hit, ranked by distance.
func (o *Orchestrator) QueryChunks(ctx context.Context, query string, topk int) ([]string, error) {
	hits, err := o.Vectors.Query(ctx, query, "chunks", vectorstore.QueryParams{TopK: topk, DistanceThreshold: noCutoff})
	if err != nil {
		return nil, helper.NewError("query chunks", err)
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if text, ok := h.Columns["text"].(string); ok {
			out = append(out, text)
		}
	}
	return out, nil
}

// QueryEntities runs a k-NN search over the entities table and returns the
// raw hits (callers format or resolve them further, e.g. QueryRelations).
func (o *Orchestrator) QueryEntities(ctx context.Context, query string, topk int) ([]vectorstore.Row, error) {
	hits, err := o.Vectors.Query(ctx, query, "entities", vectorstore.QueryParams{TopK: topk, DistanceThreshold: noCutoff})
	if err != nil {
		return nil, helper.NewError("query entities", err)
	}
	return hits, nil
}

// QueryRelations finds the topk nearest entities, then expands each one
// hop in the graph, concatenating every neighbour and edge encountered.
func (o *Orchestrator) QueryRelations(ctx context.Context, query string, topk int) ([]model.Entity, []model.Relation, error) {
	hits, err := o.QueryEntities(ctx, query, topk)
	if err != nil {
		return nil, nil, err
	}

	var neighbors []model.Entity
	var relations []model.Relation
	for _, h := range hits {
		n, r := o.Graph.QueryOneHop(h.DocumentKey)
		neighbors = append(neighbors, n...)
		relations = append(relations, r...)
	}
	return neighbors, relations, nil
}

// QueryAll fuses chunk recall, entity recall, and one-hop graph expansion
// into the four ranked lists §4.6/P5 require. Entities and neighbors are
// formatted "<name>: <description>"; relations as "<src> -> <tgt>: <description>".
func (o *Orchestrator) QueryAll(ctx context.Context, query string, topk int) (*model.QueryAllResult, error) {
	chunks, err := o.QueryChunks(ctx, query, topk)
	if err != nil {
		return nil, err
	}

	entityHits, err := o.QueryEntities(ctx, query, topk)
	if err != nil {
		return nil, err
	}

	var entities []string
	for _, h := range entityHits {
		name, _ := h.Columns["text"].(string)
		desc, _ := h.Columns["description"].(string)
		entities = append(entities, fmt.Sprintf("%s: %s", name, desc))
	}

	var neighbors []string
	var relations []string
	for _, h := range entityHits {
		n, r := o.Graph.QueryOneHop(h.DocumentKey)
		for _, e := range n {
			neighbors = append(neighbors, fmt.Sprintf("%s: %s", e.PageContent, e.Description()))
		}
		for _, rel := range r {
			relations = append(relations, fmt.Sprintf("%s -> %s: %s", rel.Source.PageContent, rel.Target.PageContent, rel.Properties.Description))
		}
	}

	return &model.QueryAllResult{
		Chunks:    chunks,
		Entities:  entities,
		Neighbors: neighbors,
		Relations: relations,
	}, nil
}
