// Package graph implements the in-memory directed multigraph of entities and
// relations, including the concurrent compare-and-merge node-upsert protocol.
package graph

import (
	"context"
	"sort"
	"sync"

	"github.com/liuyuqiaoe/local-hirag/model"
)

// Summarizer folds multiple descriptions of the same entity into one. It is
// the graph's only call out to an LLM.
type Summarizer interface {
	SummarizeEntity(ctx context.Context, name string, descriptions []string) (string, error)
}

type edge struct {
	relation model.Relation
}

// Graph is a directed multigraph: edges run source -> target, and a pair of
// nodes may be connected by more than one edge. All mutation serializes
// through mu, which plays the role of the per-node lock the upsert protocol
// requires -- the graph is expected to stay small enough (one process's
// worth of entities) that a single mutex is not a bottleneck.
type Graph struct {
	mu       sync.Mutex
	nodes    map[string]model.Entity
	order    []string
	outEdges map[string][]edge
	inEdges  map[string][]edge
}

// New builds an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]model.Entity),
		outEdges: make(map[string][]edge),
		inEdges:  make(map[string][]edge),
	}
}

// UpsertNode runs the read-latest/merge/retry protocol from the node-upsert
// contract: if the node is new it is inserted outright; if it exists and the
// caller's last merge attempt now matches the stored description, the commit
// succeeds; otherwise the caller re-merges against whatever is currently
// stored and tries again. No description is ever lost across concurrent
// callers, and at most one summarizer call is made per contended retry.
func (g *Graph) UpsertNode(ctx context.Context, node model.Entity, summarizer Summarizer) error {
	current := node
	var recordDescription *string

	for {
		latest, err := g.tryUpsertNode(current, recordDescription)
		if err != nil {
			return err
		}
		if latest == nil {
			return nil
		}
		merged, err := mergeNode(ctx, current, *latest, summarizer)
		if err != nil {
			return err
		}
		current = merged
		recordDescription = latest
	}
}

// tryUpsertNode performs one critical-section attempt. A non-nil return
// value is the description currently stored under the node's id; the caller
// must merge against it and retry.
func (g *Graph) tryUpsertNode(node model.Entity, recordDescription *string) (*string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.nodes[node.ID]
	if !ok {
		g.nodes[node.ID] = node
		g.order = append(g.order, node.ID)
		return nil, nil
	}

	latest := existing.Description()

	if recordDescription != nil && *recordDescription == latest {
		g.nodes[node.ID] = node
		return nil, nil
	}

	if recordDescription == nil {
		if node.Description() == latest {
			return nil, nil
		}
		return &latest, nil
	}

	return &latest, nil
}

// mergeNode asks the summarizer to fold the proposing node's description
// together with whatever is currently stored, per the merge contract
// (permutation-invariant up to the summarizer itself).
func mergeNode(ctx context.Context, node model.Entity, latestDescription string, summarizer Summarizer) (model.Entity, error) {
	summary, err := summarizer.SummarizeEntity(ctx, node.PageContent, []string{node.Description(), latestDescription})
	if err != nil {
		return model.Entity{}, err
	}
	meta := model.Metadata{}
	for k, v := range node.Metadata {
		meta[k] = v
	}
	meta["description"] = summary
	return model.Entity{ID: node.ID, PageContent: node.PageContent, Metadata: meta}, nil
}

// UpsertRelation upserts both endpoints, then appends an edge carrying the
// relation's properties. Multi-edges between the same pair are allowed.
func (g *Graph) UpsertRelation(ctx context.Context, relation model.Relation, summarizer Summarizer) error {
	if err := g.UpsertNode(ctx, relation.Source, summarizer); err != nil {
		return err
	}
	if err := g.UpsertNode(ctx, relation.Target, summarizer); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	e := edge{relation: relation}
	g.outEdges[relation.Source.ID] = append(g.outEdges[relation.Source.ID], e)
	g.inEdges[relation.Target.ID] = append(g.inEdges[relation.Target.ID], e)
	return nil
}

// QueryNode returns the current stored entity for id.
func (g *Graph) QueryNode(id string) (model.Entity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// QueryOneHop returns the union of outgoing-edge targets and incoming-edge
// sources (each neighbour reported once, in first-seen insertion order), and
// the union of outgoing and incoming edges (each edge reported once).
func (g *Graph) QueryOneHop(id string) ([]model.Entity, []model.Relation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen := make(map[string]bool)
	var neighbors []model.Entity
	addNeighbor := func(nodeID string) {
		if seen[nodeID] {
			return
		}
		seen[nodeID] = true
		if n, ok := g.nodes[nodeID]; ok {
			neighbors = append(neighbors, n)
		}
	}

	var relations []model.Relation
	for _, e := range g.outEdges[id] {
		addNeighbor(e.relation.Target.ID)
		relations = append(relations, e.relation)
	}
	for _, e := range g.inEdges[id] {
		addNeighbor(e.relation.Source.ID)
		relations = append(relations, e.relation)
	}

	return neighbors, relations
}

// NodeCount returns the number of entities currently in the graph.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// AllNodeIDs returns every node id in lexical order, mainly for tests. Dump
// persists the insertion-ordered list itself, not this sorted copy.
func (g *Graph) AllNodeIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	sort.Strings(out)
	return out
}
