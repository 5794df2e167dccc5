// Package safety validates user questions and retrieval parameters before
// they reach retrieval or generation. Question screening is intentionally
// conservative: substring/regex matching against known prompt-injection
// signatures, where false positives are acceptable and false negatives are
// the risk being mitigated.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxTopK is the upper bound retrieval requests are clamped to when
// the caller does not specify one. Clamping rather than failing protects
// cost and latency without rejecting an otherwise reasonable request.
const DefaultMaxTopK = 10

// minQuestionChars is the minimum length of a usable question after trimming.
const minQuestionChars = 5

// ValidationError reports a malformed, oversized, undersized, or
// injection-matching question, or an invalid top-k. It is fatal to the
// single answer call; the caller may retry with corrected input.
type ValidationError struct {
	msg string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return "safety: " + e.msg }

// injectionPatterns are the prompt-injection signatures a question must not
// match. Matching is case-insensitive against the lower-cased question.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ignore (all|previous) instructions`),
	regexp.MustCompile(`reveal (the )?system prompt`),
	regexp.MustCompile(`developer message`),
	regexp.MustCompile(`system prompt`),
}

// ValidateQuestion trims the question and rejects it when it is shorter than
// 5 characters, longer than maxLen, or matches a prompt-injection signature.
// The cleaned question is returned otherwise.
func ValidateQuestion(q string, maxLen int) (string, error) {
	q = strings.TrimSpace(q)
	if len(q) < minQuestionChars {
		return "", &ValidationError{msg: "question is too short"}
	}
	if len(q) > maxLen {
		return "", &ValidationError{msg: fmt.Sprintf("question is too long (max %d characters)", maxLen)}
	}

	low := strings.ToLower(q)
	for _, p := range injectionPatterns {
		if p.MatchString(low) {
			return "", &ValidationError{msg: "potential prompt injection detected"}
		}
	}

	return q, nil
}

// ValidateTopK rejects non-positive top-k values and clamps values above
// maxK down to maxK. maxK defaults to DefaultMaxTopK when non-positive.
func ValidateTopK(topK, maxK int) (int, error) {
	if maxK <= 0 {
		maxK = DefaultMaxTopK
	}
	if topK <= 0 {
		return 0, &ValidationError{msg: "top_k must be a positive integer"}
	}
	if topK > maxK {
		return maxK, nil
	}
	return topK, nil
}
