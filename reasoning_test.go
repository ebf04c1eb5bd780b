package artefact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReasoning(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantReasoning string
		wantContent   string
	}{
		{
			name:          "reasoning then content",
			input:         "<think>\nThe article should open with the flood.\n</think>\n\n# Riverside Gazette\n\nBody text.",
			wantReasoning: "The article should open with the flood.",
			wantContent:   "# Riverside Gazette\n\nBody text.",
		},
		{
			name:          "no reasoning block",
			input:         "# Riverside Gazette\n\nBody text.",
			wantReasoning: "",
			wantContent:   "# Riverside Gazette\n\nBody text.",
		},
		{
			name:          "unterminated block treated as content",
			input:         "<think>\nStill thinking about the ending",
			wantReasoning: "",
			wantContent:   "<think>\nStill thinking about the ending",
		},
		{
			name:          "content before and after the block",
			input:         "Preamble. <think>plan</think> Conclusion.",
			wantReasoning: "plan",
			wantContent:   "Preamble.  Conclusion.",
		},
		{
			name:          "empty input",
			input:         "",
			wantReasoning: "",
			wantContent:   "",
		},
		{
			name:          "surrounding whitespace trimmed",
			input:         "  \n<think> why </think>\n  result  \n",
			wantReasoning: "why",
			wantContent:   "result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasoning, content := SplitReasoning(tt.input)
			assert.Equal(t, tt.wantReasoning, reasoning)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}
