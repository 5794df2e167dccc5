// Package index provides the in-memory cosine-similarity vector index over
// corpus chunks. The index is built exactly once per process from the
// ingested chunk list and is read-only afterwards; retrieval is exact
// brute-force inner product over L2-normalized vectors, so scores are
// bit-reproducible given identical embeddings.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ebzlo/paperqa-go/internal/rag"
)

// ErrNotBuilt is returned when Retrieve is called before Build. This is a
// sequencing error in the caller, not a retryable condition.
var ErrNotBuilt = errors.New("index: not built — call Build first")

// embedBatchSize bounds the number of chunk texts sent to the embedder per
// request, keeping request payloads within typical API limits.
const embedBatchSize = 64

// Index embeds chunks once at build time and answers exact top-k
// nearest-neighbor queries. It is not safe for concurrent use during Build;
// after Build returns it is read-only and safe for concurrent Retrieve calls.
type Index struct {
	// embedder converts chunk and query text into dense vectors.
	embedder rag.Embedder

	// vectors holds one L2-normalized embedding per chunk, index-aligned
	// with chunks.
	vectors [][]float32

	// chunks holds the metadata for every indexed chunk.
	chunks []rag.Chunk

	// dim is the embedding dimension, fixed by the first vector seen.
	dim int
}

// New constructs an empty Index over the given embedder.
func New(embedder rag.Embedder) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("index: embedder must not be nil")
	}
	return &Index{embedder: embedder}, nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int { return len(ix.chunks) }

// Build embeds every chunk's text in batches, L2-normalizes the vectors, and
// stores them alongside the chunk metadata. It must be called exactly once
// before any Retrieve call.
func (ix *Index) Build(ctx context.Context, chunks []rag.Chunk) error {
	if len(ix.chunks) > 0 {
		return fmt.Errorf("index: already built with %d chunks", len(ix.chunks))
	}
	if len(chunks) == 0 {
		return fmt.Errorf("index: refusing to build over zero chunks")
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("index: embedding chunks %d-%d failed: %w", start, end-1, err)
		}
		if len(batch) != len(texts) {
			return fmt.Errorf("index: expected %d embeddings, got %d", len(texts), len(batch))
		}
		vectors = append(vectors, batch...)
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("index: vector %d has dimension %d, want %d", i, len(v), dim)
		}
		normalize(v)
	}

	ix.vectors = vectors
	ix.chunks = chunks
	ix.dim = dim
	return nil
}

// Retrieve embeds and normalizes the query, scores it against every indexed
// vector by inner product (cosine similarity, since all vectors are unit
// length), and returns the formatted context block plus the topK most
// similar chunks in descending score order. If fewer than topK chunks exist,
// all of them are returned.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) (string, []rag.Retrieved, error) {
	if len(ix.chunks) == 0 {
		return "", nil, ErrNotBuilt
	}
	if topK <= 0 {
		return "", nil, fmt.Errorf("index: topK must be positive, got %d", topK)
	}

	embeddings, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", nil, fmt.Errorf("index: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) != ix.dim {
		return "", nil, fmt.Errorf("index: query embedding has wrong shape")
	}
	qvec := embeddings[0]
	normalize(qvec)

	order := make([]int, len(ix.vectors))
	scores := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		order[i] = i
		scores[i] = dot(qvec, v)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	k := min(topK, len(order))
	retrieved := make([]rag.Retrieved, 0, k)
	for _, i := range order[:k] {
		retrieved = append(retrieved, rag.Retrieved{Chunk: ix.chunks[i], Score: scores[i]})
	}

	return rag.FormatContext(retrieved), retrieved, nil
}

// normalize scales v to unit L2 length in place. Zero vectors are left
// untouched so they score zero against everything instead of producing NaN.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
