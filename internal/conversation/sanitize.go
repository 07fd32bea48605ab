package conversation

import (
	"regexp"
	"strings"
)

// injectionPatterns match known prompt-injection phrasings. Matching is
// fail-closed: any hit rejects the input before it reaches an LLM
// prompt. The set errs toward false positives; a legitimate answer to a
// scoping question has no reason to contain these phrases.
//
//nolint:gochecknoglobals // Read-only compiled pattern set
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+|any\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(?:all\s+|any\s+)?(?:previous|prior)\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+everything`),
	regexp.MustCompile(`(?i)you\s+are\s+now\b`),
	regexp.MustCompile(`(?i)\bnew\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)\bsystem\s+prompt\b`),
	regexp.MustCompile(`(?i)\boverride\b`),
	regexp.MustCompile(`(?i)act\s+as\s+if\s+you\s+(?:are|were)\b`),
}

// tripleQuoteRun matches runs of triple quotes (backtick, double, or
// single) that could break out of a quoted block in a prompt.
//
//nolint:gochecknoglobals // Read-only compiled pattern
var tripleQuoteRun = regexp.MustCompile("```+|\"\"\"+|'''+")

// whitespaceRun collapses any whitespace run to a single space.
//
//nolint:gochecknoglobals // Read-only compiled pattern
var whitespaceRun = regexp.MustCompile(`\s+`)

// maxSanitizedLength bounds text quoted into a follow-up-generation
// prompt. Long answers past this point add cost, not signal.
const maxSanitizedLength = 2000

// DetectInjection reports whether the input matches a known
// prompt-injection pattern.
func DetectInjection(input string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

// SanitizeForPrompt prepares user text for embedding inside an LLM
// prompt: triple-quote runs are stripped, whitespace is normalized, and
// the result is truncated. This defends against second-order injection
// through quoted user content.
func SanitizeForPrompt(input string) string {
	s := tripleQuoteRun.ReplaceAllString(input, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxSanitizedLength {
		s = s[:maxSanitizedLength]
	}
	return s
}
