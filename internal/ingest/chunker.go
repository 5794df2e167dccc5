package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minChunkChars is the minimum length of a chunk worth indexing, in runes.
// Windows shorter than this are dropped entirely — they are noise, not signal.
const minChunkChars = 80

// whitespaceRun matches any run of whitespace, including newlines, so page
// text can be collapsed to single spaces before chunking.
var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses all whitespace runs in s to single spaces and trims
// leading/trailing whitespace.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ChunkText splits cleaned text into overlapping fixed-size windows.
// A window of chunkSize characters slides over the text; after each window
// the start advances to end-overlap (never negative), so consecutive chunks
// share overlap characters. Windows shorter than minChunkChars are dropped.
// All sizes count runes, never bytes — extracted paper text carries accented
// names, ligatures, and math symbols, and a window boundary must not split
// a multi-byte rune. chunkSize must be > 0 and overlap must satisfy
// 0 <= overlap < chunkSize, otherwise progress toward the end of the text
// is not guaranteed.
//
// The function is pure: identical inputs always produce identical output.
func ChunkText(text string, chunkSize, overlap int) []string {
	var chunks []string
	runes := []rune(text)
	n := len(runes)
	start := 0
	for start < n {
		end := min(start+chunkSize, n)
		chunk := strings.TrimSpace(string(runes[start:end]))
		if utf8.RuneCountInString(chunk) >= minChunkChars {
			chunks = append(chunks, chunk)
		}
		if end == n {
			break
		}
		start = max(0, end-overlap)
	}
	return chunks
}
