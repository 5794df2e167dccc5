package agent

import (
	"regexp"
	"strings"

	"github.com/ebzlo/paperqa-go/internal/rag"
)

// VerifyFailedMessage replaces the whole answer when any cited source is not
// among the retrieved documents. A single bad citation invalidates the whole
// response — partial trust in a fabricated source is unsafe.
const VerifyFailedMessage = "I found relevant text, but I couldn't verify some citations " +
	"against the retrieved papers. Please retry or add more PDFs to the corpus."

// NoCitationsMessage replaces an answer carrying zero citations despite
// available context. An uncited answer in the presence of retrieved evidence
// is treated as ungrounded by policy, regardless of its textual content.
const NoCitationsMessage = "Insufficient evidence in the provided papers to answer " +
	"confidently with citations. Try adding more papers or refining the question."

// citationToken matches every bracketed token in an answer, e.g.
// "[Paper.pdf p.3]". Source extraction happens afterwards on the token body.
var citationToken = regexp.MustCompile(`\[([^\]]+)\]`)

// guardOutput verifies that every source cited in the answer appears among
// the retrieved documents. Answers citing an unknown source, or citing
// nothing at all while retrieval returned evidence, are replaced by a fixed
// safe message; everything else passes through unchanged.
func guardOutput(answer string, retrieved []rag.Retrieved) string {
	allowed := make(map[string]bool, len(retrieved))
	for _, r := range retrieved {
		allowed[r.Source] = true
	}

	cited := make(map[string]bool)
	for _, m := range citationToken.FindAllStringSubmatch(answer, -1) {
		token := m[1]
		// Citations look like "Paper.pdf p.X"; other bracketed text is not
		// a citation and is ignored.
		source, _, ok := strings.Cut(token, " p.")
		if !ok {
			continue
		}
		cited[strings.TrimSpace(source)] = true
	}

	for source := range cited {
		if !allowed[source] {
			return VerifyFailedMessage
		}
	}

	if len(cited) == 0 && len(retrieved) > 0 {
		return NoCitationsMessage
	}

	return answer
}
