package model

// Chunk is an immutable, overlapping window of a File's page_content.
type Chunk struct {
	ID          string   `json:"id"`
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// NewChunk derives the content-addressed id from pageContent and stamps the
// chunk with its position within the originating document. fileMeta is the
// parent File's metadata; its scalar fields are inherited (type, filename,
// page_number, uri, private) before chunk-specific fields are added.
func NewChunk(pageContent string, chunkIdx int, documentID string, fileMeta Metadata) *Chunk {
	meta := Metadata{}
	for k, v := range fileMeta {
		meta[k] = v
	}
	meta["chunk_idx"] = chunkIdx
	meta["document_id"] = documentID

	return &Chunk{
		ID:          ContentID(ChunkPrefix, pageContent),
		PageContent: pageContent,
		Metadata:    meta,
	}
}

// DocumentID returns the parent file id this chunk belongs to.
func (c *Chunk) DocumentID() string {
	if v, ok := c.Metadata["document_id"].(string); ok {
		return v
	}
	return ""
}

// ChunkIdx returns the chunk's position within its document.
func (c *Chunk) ChunkIdx() int {
	switch v := c.Metadata["chunk_idx"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return -1
	}
}
