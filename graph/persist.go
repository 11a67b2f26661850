package graph

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// snapshot is the serialized form dump/load round-trips. No pack dependency
// offers in-memory graph persistence, so this is authored on encoding/gob --
// the standard library's own binary codec, justified in DESIGN.md.
type snapshot struct {
	Order    []string
	Nodes    map[string]model.Entity
	OutEdges map[string][]model.Relation
	InEdges  map[string][]model.Relation
}

// Load rehydrates a graph from path. If path does not exist, an empty graph
// is returned, matching the construct-time contract.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, helper.NewError("open graph snapshot", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, helper.NewError("decode graph snapshot", err)
	}

	g := New()
	g.order = snap.Order
	g.nodes = snap.Nodes
	if g.nodes == nil {
		g.nodes = make(map[string]model.Entity)
	}
	g.outEdges = make(map[string][]edge, len(snap.OutEdges))
	for id, rels := range snap.OutEdges {
		for _, r := range rels {
			g.outEdges[id] = append(g.outEdges[id], edge{relation: r})
		}
	}
	g.inEdges = make(map[string][]edge, len(snap.InEdges))
	for id, rels := range snap.InEdges {
		for _, r := range rels {
			g.inEdges[id] = append(g.inEdges[id], edge{relation: r})
		}
	}
	return g, nil
}

// Dump writes the entire graph to path as a single blob, creating parent
// directories as needed.
func (g *Graph) Dump(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return helper.NewError("create graph snapshot directory", err)
	}

	snap := snapshot{
		Order:    append([]string(nil), g.order...),
		Nodes:    g.nodes,
		OutEdges: make(map[string][]model.Relation, len(g.outEdges)),
		InEdges:  make(map[string][]model.Relation, len(g.inEdges)),
	}
	for id, edges := range g.outEdges {
		for _, e := range edges {
			snap.OutEdges[id] = append(snap.OutEdges[id], e.relation)
		}
	}
	for id, edges := range g.inEdges {
		for _, e := range edges {
			snap.InEdges[id] = append(snap.InEdges[id], e.relation)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return helper.NewError("create graph snapshot file", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return helper.NewError("encode graph snapshot", err)
	}
	return nil
}
