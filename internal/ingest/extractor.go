package ingest

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted document text.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the cleaned page text. Pages with no extractable text are
	// omitted from extraction results rather than returned empty.
	Text string
}

// Extractor produces per-page text for a document file. A document yielding
// zero pages (e.g. a scanned or image-only PDF) is a valid, non-fatal
// outcome — callers skip such files and continue.
type Extractor interface {
	// Pages returns the ordered non-empty pages of the document at path.
	Pages(path string) ([]Page, error)
}

// PDFExtractor implements Extractor for text-based PDF files.
type PDFExtractor struct{}

// NewPDFExtractor constructs a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Pages opens the PDF at path and extracts the plain text of every page,
// cleaned of whitespace runs. Pages that are null or yield no text are
// skipped; per-page extraction errors skip the page rather than failing the
// whole document, since partial text is still useful retrieval signal.
func (e *PDFExtractor) Pages(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = CleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}
