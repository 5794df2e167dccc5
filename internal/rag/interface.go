// Package rag defines the shared data types and collaborator interfaces for
// the retrieval-augmented answering pipeline: corpus chunks, retrieval
// results, and the embedding backend. Concrete implementations live in
// internal/index and internal/embedder so the agent layer never depends on a
// specific backend.
package rag

import (
	"context"
	"fmt"
	"strings"
)

// Chunk is the atomic unit of retrieval: a bounded slice of one document
// page's cleaned text. Chunks are created once at index-build time and are
// immutable thereafter.
type Chunk struct {
	// Source is the document identifier, typically the PDF filename.
	Source string

	// Page is the 1-based page number the chunk was extracted from.
	Page int

	// Text is the cleaned chunk content.
	Text string
}

// Retrieved is a chunk paired with the similarity score assigned during
// retrieval. Scores are cosine similarities in [-1, 1].
type Retrieved struct {
	Chunk

	// Score is the cosine similarity between the query and this chunk.
	Score float32
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must return one vector per input text, all with the same
// dimension, and must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used by the agent to fetch relevant
// context for a query. It returns both the formatted context block handed to
// the LLM and the structured retrieval results used by the citation guard.
type Retriever interface {
	// Retrieve returns the formatted context and the top-k most similar
	// chunks for the query, ordered by descending similarity.
	Retrieve(ctx context.Context, query string, topK int) (string, []Retrieved, error)
}

// FormatContext renders retrieved chunks into the single text block the LLM
// sees: each chunk as a labeled excerpt "[source p.page]" followed by its
// text, blocks separated by blank lines, in retrieval order.
func FormatContext(retrieved []Retrieved) string {
	blocks := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		blocks = append(blocks, fmt.Sprintf("[%s p.%d]\n%s", r.Source, r.Page, r.Text))
	}
	return strings.Join(blocks, "\n\n")
}
