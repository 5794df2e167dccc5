package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/ebzlo/paperqa-go/internal/rag"
)

// keywordEmbedder maps each text to a vector with one axis per keyword, so
// similarity is controllable per test. Unknown texts get a constant vector.
type keywordEmbedder struct {
	keywords []string
}

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, len(e.keywords)+1)
		v[len(e.keywords)] = 0.1 // keeps vectors nonzero
		for j, kw := range e.keywords {
			if strings.Contains(text, kw) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func buildTestIndex(t *testing.T, chunks []rag.Chunk) *Index {
	t.Helper()
	ix, err := New(&keywordEmbedder{keywords: []string{"attention", "tokenizer", "dataset"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func corpusChunks() []rag.Chunk {
	return []rag.Chunk{
		{Source: "attention.pdf", Page: 2, Text: "attention weighs token relevance"},
		{Source: "bpe.pdf", Page: 5, Text: "the tokenizer splits words into subwords"},
		{Source: "data.pdf", Page: 1, Text: "the dataset covers five languages"},
	}
}

func Test_Retrieve_MostSimilarFirst(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())

	_, got, err := ix.Retrieve(context.Background(), "how does attention work", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 results, got %d", len(got))
	}
	if got[0].Source != "attention.pdf" {
		t.Errorf("top result: got %q, want attention.pdf", got[0].Source)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
}

func Test_Retrieve_IdenticalTextScoresNearOne(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())

	// Query embedding identical to the indexed chunk's: cosine must be ~1.
	_, got, err := ix.Retrieve(context.Background(), "attention weighs token relevance", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if math.Abs(float64(got[0].Score)-1.0) > 1e-5 {
		t.Errorf("self-similarity: got %v, want ~1.0", got[0].Score)
	}
}

func Test_Retrieve_TopKBoundedByCorpusSize(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())

	_, got, err := ix.Retrieve(context.Background(), "tokenizer", 50)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("want all 3 chunks, got %d", len(got))
	}
}

func Test_Retrieve_BeforeBuildIsErrNotBuilt(t *testing.T) {
	t.Parallel()
	ix, err := New(&keywordEmbedder{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _, err = ix.Retrieve(context.Background(), "anything", 3)
	if !errors.Is(err, ErrNotBuilt) {
		t.Errorf("want ErrNotBuilt, got %v", err)
	}
}

func Test_Retrieve_NonPositiveTopKRejected(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())
	if _, _, err := ix.Retrieve(context.Background(), "x", 0); err == nil {
		t.Error("want error for topK=0")
	}
}

func Test_Retrieve_FormatsContextBlocks(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())

	contextBlock, got, err := ix.Retrieve(context.Background(), "dataset languages", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	header := fmt.Sprintf("[%s p.%d]", got[0].Source, got[0].Page)
	if !strings.Contains(contextBlock, header) {
		t.Errorf("context block missing header %q:\n%s", header, contextBlock)
	}
	if !strings.Contains(contextBlock, got[0].Text) {
		t.Errorf("context block missing chunk text")
	}
}

func Test_Build_Twice(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())
	if err := ix.Build(context.Background(), corpusChunks()); err == nil {
		t.Error("second Build should fail")
	}
}

func Test_Build_ZeroChunksRejected(t *testing.T) {
	t.Parallel()
	ix, err := New(&keywordEmbedder{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ix.Build(context.Background(), nil); err == nil {
		t.Error("Build over zero chunks should fail")
	}
}

func Test_Build_EmbedderFailurePropagates(t *testing.T) {
	t.Parallel()
	ix, err := New(failingEmbedder{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ix.Build(context.Background(), corpusChunks()); err == nil {
		t.Error("embedder failure should propagate")
	}
}

func Test_Retrieve_Deterministic(t *testing.T) {
	t.Parallel()
	ix := buildTestIndex(t, corpusChunks())

	_, a, err := ix.Retrieve(context.Background(), "tokenizer subwords", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	_, b, err := ix.Retrieve(context.Background(), "tokenizer subwords", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for i := range a {
		if a[i].Source != b[i].Source || a[i].Score != b[i].Score {
			t.Errorf("result %d differs between identical queries", i)
		}
	}
}
