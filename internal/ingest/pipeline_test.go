package ingest

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeExtractor returns scripted pages per file basename.
type fakeExtractor struct {
	pages map[string][]Page
	err   error
}

func (f *fakeExtractor) Pages(path string) ([]Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[filepath.Base(path)], nil
}

// writeCorpus creates a temp dir containing empty files with the given names.
// The fake extractor supplies the content, so the files just need to exist.
func writeCorpus(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func pageText(n int) string {
	return strings.Repeat("sentence about transformers ", n)
}

func newTestPipeline(t *testing.T, ext Extractor) *Pipeline {
	t.Helper()
	p, err := NewPipeline(ext, &Config{ChunkSize: 200, ChunkOverlap: 40}, slog.Default())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func Test_Ingest_TagsChunksWithSourceAndPage(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, "attention.pdf")

	ext := &fakeExtractor{pages: map[string][]Page{
		"attention.pdf": {
			{Number: 1, Text: pageText(20)},
			{Number: 3, Text: pageText(20)},
		},
	}}

	chunks, err := newTestPipeline(t, ext).Ingest(dir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	seenPages := map[int]bool{}
	for _, c := range chunks {
		if c.Source != "attention.pdf" {
			t.Errorf("chunk source: got %q", c.Source)
		}
		seenPages[c.Page] = true
	}
	if !seenPages[1] || !seenPages[3] {
		t.Errorf("expected chunks from pages 1 and 3, got %v", seenPages)
	}
}

func Test_Ingest_MissingDirIsConfigError(t *testing.T) {
	t.Parallel()
	_, err := newTestPipeline(t, &fakeExtractor{}).Ingest("/nonexistent/papers")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want *ConfigError, got %v", err)
	}
}

func Test_Ingest_NoPDFsIsConfigError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestPipeline(t, &fakeExtractor{}).Ingest(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want *ConfigError, got %v", err)
	}
}

func Test_Ingest_ZeroChunksIsConfigError(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, "scanned.pdf")

	// File exists, extractor finds no text: skipped, leaving zero chunks.
	ext := &fakeExtractor{pages: map[string][]Page{}}

	_, err := newTestPipeline(t, ext).Ingest(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want *ConfigError, got %v", err)
	}
}

func Test_Ingest_SkipsEmptyFileContinuesWithRest(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, "scanned.pdf", "text.pdf")

	ext := &fakeExtractor{pages: map[string][]Page{
		"text.pdf": {{Number: 1, Text: pageText(20)}},
	}}

	chunks, err := newTestPipeline(t, ext).Ingest(dir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	for _, c := range chunks {
		if c.Source != "text.pdf" {
			t.Errorf("unexpected chunk from %q", c.Source)
		}
	}
	if len(chunks) == 0 {
		t.Error("expected chunks from the text-bearing file")
	}
}

func Test_Ingest_CaseInsensitivePDFExtension(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, "UPPER.PDF")

	ext := &fakeExtractor{pages: map[string][]Page{
		"UPPER.PDF": {{Number: 1, Text: pageText(20)}},
	}}

	chunks, err := newTestPipeline(t, ext).Ingest(dir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(chunks) == 0 {
		t.Error("expected chunks from .PDF file")
	}
}

func Test_NewPipeline_OverlapClampedBelowChunkSize(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(&fakeExtractor{}, &Config{ChunkSize: 100, ChunkOverlap: 500}, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p.cfg.ChunkOverlap >= p.cfg.ChunkSize {
		t.Errorf("overlap %d not clamped below chunk size %d", p.cfg.ChunkOverlap, p.cfg.ChunkSize)
	}
}

func Test_NewPipeline_NilExtractorRejected(t *testing.T) {
	t.Parallel()
	if _, err := NewPipeline(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil extractor")
	}
}
