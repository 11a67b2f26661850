package model

import (
	"sort"
	"strings"
)

// Entity is a named, typed node extracted from one or more chunks.
type Entity struct {
	ID          string   `json:"id"`
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// NewEntity canonicalizes name (uppercased) and derives the content-addressed id
// from the canonical name, per (I-nothing named, but) §3: id = prefix + hex(md5(page_content)).
func NewEntity(name, entityType, description string, chunkIDs ...string) *Entity {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	return &Entity{
		ID:          ContentID(EntityPrefix, canonical),
		PageContent: canonical,
		Metadata: Metadata{
			"entity_type": entityType,
			"description": description,
			"chunk_ids":   dedupSorted(chunkIDs),
		},
	}
}

// EntityType returns the entity's type label.
func (e *Entity) EntityType() string {
	v, _ := e.Metadata["entity_type"].(string)
	return v
}

// Description returns the entity's aggregated description.
func (e *Entity) Description() string {
	v, _ := e.Metadata["description"].(string)
	return v
}

// ChunkIDs returns the set of chunks that mention this entity, sorted for determinism.
func (e *Entity) ChunkIDs() []string {
	switch v := e.Metadata["chunk_ids"].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return dedupSorted(out)
	default:
		return nil
	}
}

// WithChunkIDs returns a shallow copy of the entity with chunk_ids replaced.
func (e *Entity) WithChunkIDs(ids []string) *Entity {
	clone := *e
	clone.Metadata = Metadata{}
	for k, v := range e.Metadata {
		clone.Metadata[k] = v
	}
	clone.Metadata["chunk_ids"] = dedupSorted(ids)
	return &clone
}

func dedupSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
