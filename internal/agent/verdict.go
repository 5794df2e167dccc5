package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verdict values the checker may return.
const (
	VerdictAccept = "accept"
	VerdictRevise = "revise"
)

// Verdict is the structured output of the checker: whether the draft is
// acceptable, what is wrong with it, how to fix it, and optionally a better
// retrieval query for the next round.
type Verdict struct {
	// Verdict is "accept" or "revise".
	Verdict string `json:"verdict"`
	// Critique is the ordered list of issues found in the draft.
	Critique []string `json:"critique"`
	// RevisionInstructions describes how the reviser should improve the draft.
	RevisionInstructions string `json:"revision_instructions"`
	// QueryRefinement, when non-empty, replaces the retrieval query for the
	// next round. Empty means "keep the current query".
	QueryRefinement string `json:"query_refinement"`
}

// ParseError reports a checker response that could not be parsed as a
// Verdict. It is a hard failure of that loop iteration: the design never
// silently downgrades an unparsable critique to accept or revise, so the
// caller knows generation quality is uncertain.
type ParseError struct {
	// Raw is the unparsable model output, kept for diagnostics.
	Raw string
	// Err is the underlying parse or validation failure.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("agent: checker returned unparsable verdict: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// parseVerdict decodes the checker's response into a Verdict. Markdown code
// fences around the JSON are tolerated since some models add them despite
// instructions; anything else malformed, or a verdict field outside
// {accept, revise}, produces a *ParseError.
func parseVerdict(raw string) (*Verdict, error) {
	text := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))

	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if v.Verdict != VerdictAccept && v.Verdict != VerdictRevise {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("verdict %q is neither %q nor %q", v.Verdict, VerdictAccept, VerdictRevise)}
	}
	return &v, nil
}
