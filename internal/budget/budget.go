// Package budget provides token budget estimation and context trimming for
// the answer loop. Because the system supports multiple LLM backends with
// different tokenizers, it uses a conservative character-based heuristic:
// 1 token ≈ 4 characters of English prose. This deliberately under-estimates
// so there is headroom for model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"

	"github.com/ebzlo/paperqa-go/internal/rag"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget. It fits
	// comfortably within 8k-context models while leaving room for output.
	DefaultMaxContextTokens = 6000

	// excerptOverheadTokens is the estimated cost of the "[source p.N]"
	// label and blank-line separator around each excerpt.
	excerptOverheadTokens = 12
)

// Estimate returns a rough token count for s using the character heuristic.
// Non-empty strings estimate to at least 1 token.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// chat messages, including a small per-message overhead.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimExcerpts drops retrieved excerpts from the tail of the list (the
// lowest-similarity results) until fixedTokens plus the estimated excerpt
// tokens fit within maxTokens. The highest-ranked excerpt is always kept so
// the model never sees an empty context when retrieval found something.
func TrimExcerpts(fixedTokens int, retrieved []rag.Retrieved, maxTokens int) []rag.Retrieved {
	for len(retrieved) > 1 {
		total := fixedTokens
		for _, r := range retrieved {
			total += Estimate(r.Text) + excerptOverheadTokens
		}
		if total <= maxTokens {
			break
		}
		retrieved = retrieved[:len(retrieved)-1]
	}
	return retrieved
}
