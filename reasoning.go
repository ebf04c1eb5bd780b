package artefact

import "strings"

// Reasoning block delimiters. Every provider's system prompt instructs the
// model to emit its reasoning between these markers before the final
// content.
const (
	reasoningStart = "<think>"
	reasoningEnd   = "</think>"
)

// SplitReasoning splits a raw model response into its delimited reasoning
// segment and the remaining content.
//
// If the response carries no reasoning block, or the block is unterminated,
// the full text is returned as content with empty reasoning. Whitespace
// around both segments is trimmed.
func SplitReasoning(text string) (reasoning, content string) {
	start := strings.Index(text, reasoningStart)
	if start < 0 {
		return "", strings.TrimSpace(text)
	}

	rest := text[start+len(reasoningStart):]
	end := strings.Index(rest, reasoningEnd)
	if end < 0 {
		// Unterminated block: treat the whole response as content rather
		// than guessing where the reasoning stops.
		return "", strings.TrimSpace(text)
	}

	reasoning = strings.TrimSpace(rest[:end])
	content = strings.TrimSpace(text[:start] + rest[end+len(reasoningEnd):])
	return reasoning, content
}
