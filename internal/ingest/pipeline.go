// Package ingest implements the corpus ingestion pipeline. It walks a
// directory of PDF papers, extracts per-page text through an Extractor
// collaborator, splits each page into overlapping chunks, and produces the
// flat chunk list the vector index is built from.
package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebzlo/paperqa-go/internal/rag"
)

// ConfigError reports an unusable corpus configuration: a missing papers
// directory, a directory with no matching documents, or a corpus that yields
// zero indexable chunks. It is fatal to index construction.
type ConfigError struct {
	msg string
}

// Error implements the error interface.
func (e *ConfigError) Error() string { return "ingest: " + e.msg }

// Config holds the chunking parameters for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk.
	// Defaults to 1100 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters shared between consecutive
	// chunks. Defaults to 200 if zero; clamped below ChunkSize.
	ChunkOverlap int
}

// Pipeline turns a directory of papers into index-ready chunks.
type Pipeline struct {
	// extractor produces per-page text for each document file.
	extractor Extractor

	// cfg holds the resolved chunking configuration.
	cfg *Config

	// log is the structured logger for ingestion progress and warnings.
	log *slog.Logger
}

// NewPipeline constructs a Pipeline from the provided extractor and config.
func NewPipeline(extractor Extractor, cfg *Config, log *slog.Logger) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("ingest: extractor must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1100
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{extractor: extractor, cfg: cfg, log: log}, nil
}

// Ingest enumerates the .pdf files in dir (case-insensitive extension match),
// extracts and chunks every page, and returns the aggregate chunk list, each
// chunk tagged with its source filename and page number.
//
// A file yielding zero pages is skipped with a warning — the run continues
// with the rest of the corpus. A missing directory, an empty match set, or a
// corpus producing zero chunks returns a *ConfigError: an unusable index
// must not be built.
func (p *Pipeline) Ingest(dir string) ([]rag.Chunk, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &ConfigError{msg: fmt.Sprintf("papers directory not found: %s", dir)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: read dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, &ConfigError{msg: fmt.Sprintf("no PDF files found in %s", dir)}
	}

	var chunks []rag.Chunk
	for _, name := range files {
		pages, err := p.extractor.Pages(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("ingest: extract %s: %w", name, err)
		}

		// Scanned or protected PDFs have no extractable text.
		if len(pages) == 0 {
			p.log.Warn("ingest: no extractable text, skipping file",
				slog.String("file", name),
			)
			continue
		}

		before := len(chunks)
		for _, page := range pages {
			for _, text := range ChunkText(page.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap) {
				chunks = append(chunks, rag.Chunk{
					Source: name,
					Page:   page.Number,
					Text:   text,
				})
			}
		}
		p.log.Info("ingest: chunked file",
			slog.String("file", name),
			slog.Int("pages", len(pages)),
			slog.Int("chunks", len(chunks)-before),
		)
	}

	if len(chunks) == 0 {
		return nil, &ConfigError{msg: "no chunks extracted — use text-based PDFs, not scanned images"}
	}

	return chunks, nil
}
