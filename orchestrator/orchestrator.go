// Package orchestrator wires the loader, chunker, vector store, graph store
// and extraction pipeline into the engine's two public operations: insert
// and the query_* family.
package orchestrator

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/liuyuqiaoe/local-hirag/chunker"
	"github.com/liuyuqiaoe/local-hirag/extract"
	"github.com/liuyuqiaoe/local-hirag/graph"
	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/loader"
	"github.com/liuyuqiaoe/local-hirag/model"
	"github.com/liuyuqiaoe/local-hirag/vectorstore"
)

// Config holds the bounded fan-out caps and persisted paths from §5/§6.
type Config struct {
	ChunkUpsertConcurrency    int
	EntityUpsertConcurrency   int
	RelationUpsertConcurrency int
	GraphPath                 string
}

// DefaultConfig returns the spec's default concurrency caps.
func DefaultConfig(graphPath string) Config {
	return Config{
		ChunkUpsertConcurrency:    4,
		EntityUpsertConcurrency:   4,
		RelationUpsertConcurrency: 2,
		GraphPath:                 graphPath,
	}
}

// Orchestrator is the engine instance: it owns the loader registry, chunker,
// vector store, graph, and extraction pipeline for the lifetime of one
// process (§9's "explicit Services value" rather than package globals).
type Orchestrator struct {
	Loaders  *loader.Registry
	Chunker  *chunker.Chunker
	Vectors  *vectorstore.Store
	Graph    *graph.Graph
	Pipeline *extract.Pipeline
	Cfg      Config
	log      *slog.Logger
}

// New wires the engine's collaborators. log must not be nil; pass
// slog.New(slog.DiscardHandler) in tests that don't care about output.
func New(loaders *loader.Registry, c *chunker.Chunker, vectors *vectorstore.Store, g *graph.Graph, pipeline *extract.Pipeline, cfg Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{Loaders: loaders, Chunker: c, Vectors: vectors, Graph: g, Pipeline: pipeline, Cfg: cfg, log: log}
}

// Insert ingests one document end to end: load, chunk, upsert chunks, and
// -- when withGraph is set -- extract and upsert entities then relations,
// in that order, before persisting the graph. documentMeta is merged over
// the loader-derived file metadata (filename, uri, type, private stay
// authoritative; callers add domain tags like a source system name).
func (o *Orchestrator) Insert(ctx context.Context, documentPath string, contentType model.ContentType, documentMeta map[string]interface{}, withGraph bool) error {
	file, err := o.Loaders.Load(ctx, documentPath, contentType)
	if err != nil {
		return helper.NewError("load document", err)
	}
	for k, v := range documentMeta {
		switch k {
		case "filename", "uri", "type", "private":
			continue
		}
		file.Metadata[k] = v
	}

	chunks, err := o.splitOffloaded(file)
	if err != nil {
		return err
	}

	if err := o.upsertChunks(ctx, chunks); err != nil {
		return err
	}

	if withGraph && len(chunks) > 0 {
		entities, relations, err := o.Pipeline.Run(ctx, chunks)
		if err != nil {
			return helper.NewError("extract entities and relations", err)
		}
		if err := o.upsertEntities(ctx, entities); err != nil {
			return err
		}
		if err := o.upsertRelations(ctx, relations); err != nil {
			return err
		}
	}

	if err := o.Graph.Dump(o.Cfg.GraphPath); err != nil {
		return helper.NewError("dump graph", err)
	}
	return nil
}

// splitOffloaded runs the chunker on a separate goroutine so the CPU-bound
// split never blocks the caller's scheduler, per §5's worker-pool rule for
// local parsing work; completion is awaited here on the caller's goroutine.
func (o *Orchestrator) splitOffloaded(file *model.File) ([]*model.Chunk, error) {
	result := make(chan []*model.Chunk, 1)
	go func() { result <- o.Chunker.Split(file) }()
	return <-result, nil
}

func (o *Orchestrator) upsertChunks(ctx context.Context, chunks []*model.Chunk) error {
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.Cfg.ChunkUpsertConcurrency)

	for _, c := range chunks {
		c := c
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			props := chunkProperties(c)
			return o.Vectors.UpsertText(ctx, c.PageContent, c.ID, props, "chunks", vectorstore.ModeOverwrite)
		})
	}
	if err := g.Wait(); err != nil {
		return helper.NewError("upsert chunks", err)
	}
	return nil
}

func chunkProperties(c *model.Chunk) map[string]interface{} {
	props := map[string]interface{}{
		"chunk_idx":   c.ChunkIdx(),
		"document_id": c.DocumentID(),
	}
	for _, key := range []string{"type", "filename", "page_number", "uri", "private"} {
		if v, ok := c.Metadata[key]; ok {
			props[key] = v
		}
	}
	return props
}

func (o *Orchestrator) upsertEntities(ctx context.Context, entities []*model.Entity) error {
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.Cfg.EntityUpsertConcurrency)

	for _, e := range entities {
		e := e
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			props := map[string]interface{}{
				"entity_type": e.EntityType(),
				"description": e.Description(),
				"chunk_ids":   e.ChunkIDs(),
			}
			if err := o.Vectors.UpsertText(ctx, e.PageContent, e.ID, props, "entities", vectorstore.ModeOverwrite); err != nil {
				return err
			}
			return o.Graph.UpsertNode(ctx, *e, o.Pipeline.Summarize)
		})
	}
	if err := g.Wait(); err != nil {
		return helper.NewError("upsert entities", err)
	}
	return nil
}

func (o *Orchestrator) upsertRelations(ctx context.Context, relations []*model.Relation) error {
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, o.Cfg.RelationUpsertConcurrency)

	for _, r := range relations {
		r := r
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			return o.Graph.UpsertRelation(ctx, *r, o.Pipeline.Summarize)
		})
	}
	if err := g.Wait(); err != nil {
		return helper.NewError("upsert relations", err)
	}
	return nil
}
