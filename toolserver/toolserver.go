// Package toolserver exposes the engine's two retrieval tools, naive_search
// and hi_search, over a transport-agnostic Server; stdio.go wires them to a
// line-delimited JSON protocol.
package toolserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liuyuqiaoe/local-hirag/orchestrator"
)

const hiSearchTimeout = 100 * time.Second

const emptyQueryError = "Error: Query cannot be empty"

// Server adapts an Orchestrator to the §6 tool contract.
type Server struct {
	orch *orchestrator.Orchestrator
	topK int
}

// New builds a Server. topk governs how many hits each underlying query
// retrieves before formatting.
func New(orch *orchestrator.Orchestrator, topk int) *Server {
	return &Server{orch: orch, topK: topk}
}

// NaiveSearch returns query_chunks hits as a list of maps, or a
// human-readable error string for an empty query -- never invoking a
// provider in that case (P6).
func (s *Server) NaiveSearch(ctx context.Context, query string) interface{} {
	if strings.TrimSpace(query) == "" {
		return emptyQueryError
	}

	chunks, err := s.orch.QueryChunks(ctx, query, s.topK)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	results := make([]map[string]interface{}, len(chunks))
	for i, c := range chunks {
		results[i] = map[string]interface{}{"text": c}
	}
	return results
}

// HiSearch returns query_all's fused result as a map, bounded by a 100s
// timeout; on timeout or any other failure it returns a human-readable
// string rather than a partial result.
func (s *Server) HiSearch(ctx context.Context, query string) interface{} {
	if strings.TrimSpace(query) == "" {
		return emptyQueryError
	}

	ctx, cancel := context.WithTimeout(ctx, hiSearchTimeout)
	defer cancel()

	result, err := s.orch.QueryAll(ctx, query, s.topK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Sprintf("Error: hi_search timed out after %s", hiSearchTimeout)
		}
		return fmt.Sprintf("Error: %v", err)
	}

	return map[string]interface{}{
		"chunks":    result.Chunks,
		"entities":  result.Entities,
		"neighbors": result.Neighbors,
		"relations": result.Relations,
	}
}
