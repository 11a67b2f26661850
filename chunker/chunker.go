// Package chunker splits a File's page content into overlapping fixed-size
// token windows.
package chunker

import (
	"fmt"

	"github.com/liuyuqiaoe/local-hirag/model"
)

// Tokenizer turns text into a token sequence and back. The default
// CharTokenizer treats each character as one token, a deliberate
// simplification -- real deployments inject a model-specific tokenizer.
type Tokenizer interface {
	Tokenize(text string) []string
	Join(tokens []string) string
}

// CharTokenizer is the default per-character Tokenizer.
type CharTokenizer struct{}

func (CharTokenizer) Tokenize(text string) []string {
	runes := []rune(text)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func (CharTokenizer) Join(tokens []string) string {
	var sb []rune
	for _, t := range tokens {
		sb = append(sb, []rune(t)...)
	}
	return string(sb)
}

// Chunker splits File.PageContent into overlapping windows.
type Chunker struct {
	tokenizer    Tokenizer
	chunkSize    int
	chunkOverlap int
}

// New builds a Chunker. chunkOverlap must satisfy 0 <= chunkOverlap < chunkSize.
// A nil tokenizer defaults to CharTokenizer.
func New(chunkSize, chunkOverlap int, tokenizer Tokenizer) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive")
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < chunk size")
	}
	if tokenizer == nil {
		tokenizer = CharTokenizer{}
	}
	return &Chunker{tokenizer: tokenizer, chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Split produces an ordered Chunk sequence from file. Empty input yields an
// empty sequence.
func (c *Chunker) Split(file *model.File) []*model.Chunk {
	tokens := c.tokenizer.Tokenize(file.PageContent)
	if len(tokens) == 0 {
		return nil
	}

	step := c.chunkSize - c.chunkOverlap
	var chunks []*model.Chunk
	idx := 0
	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		content := c.tokenizer.Join(tokens[start:end])
		chunks = append(chunks, model.NewChunk(content, idx, file.ID, file.Metadata))
		idx++
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
